// Package staging holds extraction results between the upload step and the
// confirm step. Values are serialized as JSON text; expiry is the store's own
// responsibility so the in-process fallback cannot leak sessions nobody
// confirms. Ownership checks belong to the caller, not the store.
package staging

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get for missing and expired keys alike.
var ErrNotFound = errors.New("staging: key not found")

// Store is the key/value contract the ingestion pipeline depends on.
type Store interface {
	// Set serializes value as JSON and stores it under key with the given TTL.
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	// Get deserializes the stored value into dest; ErrNotFound on miss/expiry.
	Get(ctx context.Context, key string, dest any) error
	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Exists reports whether the key is present and unexpired.
	Exists(ctx context.Context, key string) (bool, error)
}
