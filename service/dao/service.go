package dao

import (
	"context"
)

// Service is a generic persistence contract. Implementations must be safe
// for concurrent use; the activation engine relies on them only for durable
// read/write, all transition ordering is enforced above this layer.
type Service[K comparable, T any] interface {
	Save(ctx context.Context, t *T) error

	// Load returns the entity or ErrNotFound.
	Load(ctx context.Context, id K) (*T, error)

	Delete(ctx context.Context, id K) error

	List(ctx context.Context, parameters ...*Parameter) ([]*T, error)
}
