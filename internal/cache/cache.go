// Package cache provides the key/value store behind session vote state and submission rate limits.
package cache

import (
	"context"
	"time"
)

// Cache is the subset of Redis commands the services rely on.
// Get returns an empty string and a nil error for missing keys.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Incr(ctx context.Context, key string) (int64, error)
	// IncrWithExpire increments key and, when this call creates it, sets its expiration in the same step.
	IncrWithExpire(ctx context.Context, key string, expiration time.Duration) (int64, error)
	Expire(ctx context.Context, key string, expiration time.Duration) error
	TTL(ctx context.Context, key string) (time.Duration, error)
	Health(ctx context.Context) error
	Close() error
}

var (
	_ Cache = (*RedisCache)(nil)
	_ Cache = (*Memory)(nil)
)
