package cache

import (
	"context"
	"time"
)

// Cache is the contract for the read-side cache layer. Implementations
// must treat a miss as (false, nil), leaving dest untouched.
type Cache interface {
	// Get fetches a key and unmarshals it into dest. Returns whether the
	// key was present.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set stores a value with a TTL.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Delete removes keys.
	Delete(ctx context.Context, keys ...string) error

	// DeletePattern removes all keys matching a glob pattern.
	DeletePattern(ctx context.Context, pattern string) error

	// Ping checks the connection.
	Ping(ctx context.Context) error
}

// Noop is a Cache that stores nothing. Used when Redis is unavailable so
// callers never have to nil-check.
type Noop struct{}

func (Noop) Get(ctx context.Context, key string, dest interface{}) (bool, error) { return false, nil }
func (Noop) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}
func (Noop) Delete(ctx context.Context, keys ...string) error        { return nil }
func (Noop) DeletePattern(ctx context.Context, pattern string) error { return nil }
func (Noop) Ping(ctx context.Context) error                          { return nil }
