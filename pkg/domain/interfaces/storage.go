package interfaces

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
)

// ErrKeyNotFound is wrapped by every backend when a key is absent
var ErrKeyNotFound = goerr.New("key not found")

// Storage is the key/value persistence contract consumed by the store.
// Implementations must treat values as opaque strings. Get returns an
// error wrapping ErrKeyNotFound when the key is absent.
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Close() error
}
