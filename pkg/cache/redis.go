package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClient is the subset of Redis operations the cache needs. Get
// returns ErrCacheMiss for missing keys. [DialRedis] wraps a go-redis
// client; tests substitute an in-memory implementation.
type RedisClient interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	Close() error
}

// RedisCache stores entries in Redis, shared between service instances.
type RedisCache struct {
	client RedisClient
	prefix string
}

// RedisOption configures a RedisCache.
type RedisOption func(*RedisCache)

// WithKeyPrefix namespaces every key. The default is "sugiyama:".
func WithKeyPrefix(prefix string) RedisOption {
	return func(c *RedisCache) { c.prefix = prefix }
}

// NewRedisCache creates a cache on top of client.
func NewRedisCache(client RedisClient, opts ...RedisOption) *RedisCache {
	c := &RedisCache{client: client, prefix: "sugiyama:"}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DialRedis connects to the server at url (redis://[:password@]host:port/db)
// and pings it, retrying refused connections with backoff.
func DialRedis(ctx context.Context, url string, opts ...RedisOption) (*RedisCache, error) {
	o, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rc := redis.NewClient(o)
	err = RetryWithBackoff(ctx, func() error {
		if err := rc.Ping(ctx).Err(); err != nil {
			return Retryable(fmt.Errorf("%w: ping %s: %v", ErrNetwork, o.Addr, err))
		}
		return nil
	})
	if err != nil {
		rc.Close()
		return nil, err
	}
	return NewRedisCache(goRedis{rc}, opts...), nil
}

// Get retrieves a value.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, c.prefix+key)
	if errors.Is(err, ErrCacheMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set stores a value; Redis expires it after ttl (never for zero).
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.client.Set(ctx, c.prefix+key, data, ttl)
}

// Delete removes a value.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.prefix+key)
}

// Close closes the connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

var _ Cache = (*RedisCache)(nil)

// goRedis adapts *redis.Client to RedisClient.
type goRedis struct {
	c *redis.Client
}

func (r goRedis) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	return data, err
}

func (r goRedis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.c.Set(ctx, key, value, ttl).Err()
}

func (r goRedis) Del(ctx context.Context, key string) error {
	return r.c.Del(ctx, key).Err()
}

func (r goRedis) Close() error {
	return r.c.Close()
}
