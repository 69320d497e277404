package tracing

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestTracingFile(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "span_test.txt")

	if err := Init("onboard", "0.0.1", fname); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	ctx, span := StartSpan(context.Background(), "engine.Activate test", "INTERNAL")
	span.WithAttributes(map[string]string{"process.id": "p-1"})
	EndSpan(span, nil)
	_ = ctx

	_, errSpan := StartSpan(context.Background(), "callback.ResolveDocument test", "SERVER")
	EndSpan(errSpan, errors.New("correlation mismatch"))

	data, err := os.ReadFile(fname)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("no data written to trace file")
	}
}
