package port

import (
	"context"
	"time"
)

// Cache is the key-value cache behind the conversation-metadata reads.
// Implementations must be concurrency-safe and context-aware so callers can
// impose their own timeouts.
//
// Values are plain strings; callers own serialization (conversation metadata
// is stored as JSON). This keeps the port free of encoding concerns.
type Cache interface {
	// Get fetches the value for key. A missing key is reported as ("", ErrMiss)
	// so callers can fall through to the repository; a non-nil error other than
	// ErrMiss means a transport or server failure.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value at key with the provided TTL. Zero or negative TTL means
	// no expiration (persist until evicted).
	Set(ctx context.Context, key string, value string, ttl time.Duration) error

	// Del removes one or more keys (used to invalidate cached conversation
	// metadata after a request verdict) and returns the number removed.
	Del(ctx context.Context, keys ...string) (int64, error)

	// Ping verifies connectivity with the cache backend.
	Ping(ctx context.Context) error

	// Close releases any resources held by the cache.
	Close() error
}

// ErrMiss signals a cache miss in a typed way, distinguishing it from
// transport errors.
var ErrMiss = errMiss{}

type errMiss struct{}

func (e errMiss) Error() string { return "cache: miss" }
