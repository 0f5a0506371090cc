package mocks

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"
)

// MockCache is an in-memory mock implementation of the cache.Cache interface.
// Setting Err makes every call fail, for exercising error paths.
type MockCache struct {
	data    map[string]string
	expires map[string]time.Duration
	mu      sync.RWMutex

	Err error
}

// NewMockCache creates a new mock cache instance
func NewMockCache() *MockCache {
	return &MockCache{
		data:    make(map[string]string),
		expires: make(map[string]time.Duration),
	}
}

// Get retrieves a value from the mock cache
func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.data[key], nil // "" for non-existent keys (like the Redis wrapper)
}

// Set stores a value in the mock cache
func (m *MockCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = fmt.Sprint(value)
	if expiration > 0 {
		m.expires[key] = expiration
	}
	return nil
}

// Del deletes keys from the mock cache
func (m *MockCache) Del(ctx context.Context, keys ...string) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, key := range keys {
		delete(m.data, key)
		delete(m.expires, key)
	}
	return nil
}

// Incr increments a key's value
func (m *MockCache) Incr(ctx context.Context, key string) (int64, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	if val, exists := m.data[key]; exists {
		parsed, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("value is not an integer")
		}
		n = parsed
	}

	n++
	m.data[key] = strconv.FormatInt(n, 10)
	return n, nil
}

// IncrWithExpire increments a key and records the expiration when the key is new
func (m *MockCache) IncrWithExpire(ctx context.Context, key string, expiration time.Duration) (int64, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	m.mu.Lock()
	_, exists := m.data[key]
	m.mu.Unlock()

	n, err := m.Incr(ctx, key)
	if err != nil {
		return 0, err
	}
	if !exists && expiration > 0 {
		m.mu.Lock()
		m.expires[key] = expiration
		m.mu.Unlock()
	}
	return n, nil
}

// Expire records the expiration; keys never actually expire in the mock
func (m *MockCache) Expire(ctx context.Context, key string, expiration time.Duration) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.data[key]; exists {
		m.expires[key] = expiration
	}
	return nil
}

// TTL returns the recorded expiration, -2 for missing keys and -1 for keys without one
func (m *MockCache) TTL(ctx context.Context, key string) (time.Duration, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, exists := m.data[key]; !exists {
		return -2, nil
	}
	if ttl, ok := m.expires[key]; ok {
		return ttl, nil
	}
	return -1, nil
}

// Health returns Err
func (m *MockCache) Health(ctx context.Context) error {
	return m.Err
}

// Close is a no-op for mock
func (m *MockCache) Close() error {
	return nil
}

// Clear resets the mock cache (useful for tests)
func (m *MockCache) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = make(map[string]string)
	m.expires = make(map[string]time.Duration)
}
