package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/talentops/onboard/service/dao"
)

type entity struct {
	ID   string
	Name string
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore[string, entity](func(e *entity) string { return e.ID })
	ctx := context.Background()

	e := &entity{ID: "e1", Name: "first"}
	assert.NoError(t, s.Save(ctx, e))

	loaded, err := s.Load(ctx, "e1")
	assert.NoError(t, err)
	assert.Equal(t, e, loaded)

	_, err = s.Load(ctx, "e2")
	assert.ErrorIs(t, err, dao.ErrNotFound)

	list, err := s.List(ctx)
	assert.NoError(t, err)
	assert.Len(t, list, 1)

	assert.NoError(t, s.Delete(ctx, "e1"))
	_, err = s.Load(ctx, "e1")
	assert.ErrorIs(t, err, dao.ErrNotFound)

	assert.ErrorIs(t, s.Save(ctx, nil), dao.ErrNilEntity)
}
