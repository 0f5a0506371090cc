package cache

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const memoryCleanupInterval = 10 * time.Minute

// Memory is a process-local Cache backed by go-cache, used when no Redis host is configured.
// Values are stored as strings, like Redis.
type Memory struct {
	store *gocache.Cache

	// Serializes read-modify-write sequences. Single go-cache calls lock on their own.
	mu sync.Mutex
}

// NewMemory creates an empty in-process cache.
func NewMemory() *Memory {
	return &Memory{store: gocache.New(gocache.NoExpiration, memoryCleanupInterval)}
}

// Get retrieves a value, returning "" for missing or expired keys.
func (m *Memory) Get(_ context.Context, key string) (string, error) {
	val, ok := m.store.Get(key)
	if !ok {
		return "", nil
	}
	return val.(string), nil
}

// Set stores a value with an optional expiration (0 keeps it forever).
func (m *Memory) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store.Set(key, fmt.Sprint(value), ttlOrForever(expiration))
	return nil
}

// Del deletes keys.
func (m *Memory) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		m.store.Delete(k)
	}
	return nil
}

// Incr increments a counter, keeping any expiration already set.
func (m *Memory) Incr(ctx context.Context, key string) (int64, error) {
	return m.IncrWithExpire(ctx, key, 0)
}

// IncrWithExpire increments a counter. A counter created by this call expires after expiration.
func (m *Memory) IncrWithExpire(_ context.Context, key string, expiration time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	val, expires, ok := m.store.GetWithExpiration(key)
	var n int64
	ttl := ttlOrForever(expiration)
	if ok {
		parsed, err := strconv.ParseInt(val.(string), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("value at %s is not an integer", key)
		}
		n = parsed
		ttl = gocache.NoExpiration
		if !expires.IsZero() {
			ttl = time.Until(expires)
		}
	}

	n++
	m.store.Set(key, strconv.FormatInt(n, 10), ttl)
	return n, nil
}

// Expire sets a key's time to live. Missing keys are ignored.
func (m *Memory) Expire(_ context.Context, key string, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.store.Get(key)
	if !ok {
		return nil
	}
	m.store.Set(key, val, ttlOrForever(expiration))
	return nil
}

// TTL mirrors Redis: -2 for a missing key, -1 for a key without expiration.
func (m *Memory) TTL(_ context.Context, key string) (time.Duration, error) {
	_, expires, ok := m.store.GetWithExpiration(key)
	switch {
	case !ok:
		return -2, nil
	case expires.IsZero():
		return -1, nil
	default:
		return time.Until(expires), nil
	}
}

func (m *Memory) Health(context.Context) error { return nil }

// Close drops every entry.
func (m *Memory) Close() error {
	m.store.Flush()
	return nil
}

func ttlOrForever(expiration time.Duration) time.Duration {
	if expiration <= 0 {
		return gocache.NoExpiration
	}
	return expiration
}
