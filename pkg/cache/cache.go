// Package cache provides response caching for upstream ledger pages.
//
// Fetching a page costs scarce rate budget, so the blockchain client
// consults a Cache before going through the rate governor. Three
// backends are provided:
//   - FileCache: on-disk cache for CLI usage
//   - RedisCache: shared cache for multi-instance server deployments
//   - NullCache: disables caching (tests, --refresh)
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Cache stores raw response bytes under string keys with a TTL.
type Cache interface {
	// Get retrieves a value. The second return is false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A non-positive ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// PageKey builds the cache key for one address transaction page.
// The key covers everything that changes the upstream response.
func PageKey(addr string, limit, offset int) string {
	return fmt.Sprintf("page:%s:%d:%d", addr, limit, offset)
}

// Hash computes the SHA-256 hex digest of data. Backends use it to
// derive filesystem-safe names from arbitrary keys.
func Hash(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// NullCache is a no-op cache that never stores anything.
// Useful for tests or when caching should be disabled.
type NullCache struct{}

// NewNullCache creates a null cache.
func NewNullCache() Cache { return NullCache{} }

// Get always reports a miss.
func (NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

// Set does nothing.
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

// Delete does nothing.
func (NullCache) Delete(context.Context, string) error { return nil }

// Close does nothing.
func (NullCache) Close() error { return nil }

var _ Cache = NullCache{}
