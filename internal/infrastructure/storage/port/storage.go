package port

import (
	"context"
	"io"
)

// ObjectStore is the minimal contract for durable media storage. Put streams
// body under key and returns a publicly reachable URL for the stored object.
// Implementations must be concurrency-safe.
type ObjectStore interface {
	Put(ctx context.Context, key string, contentType string, body io.Reader) (url string, err error)
}
