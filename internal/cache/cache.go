// Package cache provides the injected TTL cache used for carrier address
// codes. It is an explicit dependency, never a package-level global, so
// tests can swap in the bounded in-memory implementation or bypass caching
// entirely.
package cache

import (
	"context"
	"time"
)

type Cache interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Get returns "" with a nil error on a cache miss.
	Get(ctx context.Context, key string) (string, error)
}

// Key builds a namespaced cache key.
func Key(namespace, operation, key string) string {
	return namespace + ":" + operation + ":" + key
}
