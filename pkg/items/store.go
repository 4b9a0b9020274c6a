package items

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a Store when no item has the requested ID.
var ErrNotFound = errors.New("item not found")

// Store persists items.
//
// Errors other than ErrNotFound are *apperr.Error values of kind Database,
// DatabaseIntegrity or Unexpected.
type Store interface {
	Create(ctx context.Context, in Input) (*Item, error)
	Get(ctx context.Context, id int64) (*Item, error)
	Update(ctx context.Context, id int64, in Input) (*Item, error)
	Delete(ctx context.Context, id int64) error

	// Ping checks that the store answers queries.
	Ping(ctx context.Context) error

	Close() error
}
