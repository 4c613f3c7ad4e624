// Package cache stores serialized layout results between runs.
//
// Three backends implement [Cache]: [NullCache] disables caching,
// [FileCache] keeps entries under the user cache directory for the CLI,
// and [RedisCache] shares entries between instances of the HTTP service.
// Keys come from a [Keyer], which hashes the graph and its resolved options
// so that any change to either misses the cache.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiration.
// Get reports a miss with hit == false and a nil error.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Default entry lifetimes.
const (
	// TTLLayout applies to finished layouts. Layouts are deterministic for a
	// given graph and configuration, so the TTL only bounds disk usage.
	TTLLayout = 7 * 24 * time.Hour

	// TTLDebug applies to rendered debug artifacts (DOT, SVG).
	TTLDebug = 24 * time.Hour
)

// NullCache never stores anything. Use it to disable caching.
type NullCache struct{}

// NewNullCache creates a null cache.
func NewNullCache() Cache {
	return &NullCache{}
}

// Get always returns a miss.
func (c *NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

// Set does nothing.
func (c *NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

// Delete does nothing.
func (c *NullCache) Delete(context.Context, string) error { return nil }

// Close does nothing.
func (c *NullCache) Close() error { return nil }

var _ Cache = (*NullCache)(nil)
