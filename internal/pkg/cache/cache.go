// Package cache provides a small key/value abstraction with TTL semantics,
// backed by Redis in production.
//
// The SetNX operation is the backend's native conditional set; callers rely on
// it being atomic per key (check-then-write races are the backend's problem,
// not ours).
package cache

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrNotFound indicates the key does not exist or has expired.
var ErrNotFound = errors.New("cache: key not found")

// Cache is a key/value store with per-key TTL expiry.
type Cache interface {
	io.Closer

	// Get returns the value for key, or ErrNotFound when absent/expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set writes the value with a TTL, replacing any existing value.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// SetNX writes the value with a TTL only if the key does not exist.
	// It returns true when the write happened. The operation is atomic.
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)

	// Delete removes the key and reports whether anything was removed.
	Delete(ctx context.Context, key string) (bool, error)
}
