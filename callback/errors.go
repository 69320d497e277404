package callback

import "fmt"

// CorrelationMismatchError rejects an external event whose submitted id
// does not equal the correlation id recorded on the process. No state
// change accompanies it; spoofed or stale callbacks must not move the
// state machine.
type CorrelationMismatchError struct {
	ProcessID string
	Field     string
}

func (e *CorrelationMismatchError) Error() string {
	return fmt.Sprintf("process %s: submitted id does not match recorded %s", e.ProcessID, e.Field)
}
