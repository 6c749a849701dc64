package repositories

import (
	"context"
	"errors"
)

// ErrStoreClosed is returned by stores used after Close
var ErrStoreClosed = errors.New("key-value store is closed")

// KeyValueRepository defines the persistent client state interface.
// Get reports ok=false for a missing key; Delete of a missing key is not an error.
type KeyValueRepository interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}
