package preference

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a visitor has no value stored under a key.
var ErrNotFound = errors.New("preference not found")

// Store is a per-visitor key-value store for client preferences.
type Store interface {
	Get(ctx context.Context, visitorID, key string) (string, error)
	Put(ctx context.Context, visitorID, key, value string) error
}
