package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCacheFromClient(client), mr
}

func TestRedisCache_GetSetDel(t *testing.T) {
	c, _ := setupRedis(t)
	ctx := context.Background()

	val, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, val)

	require.NoError(t, c.Set(ctx, "vote:u1:1", "up", time.Minute))
	val, err = c.Get(ctx, "vote:u1:1")
	require.NoError(t, err)
	assert.Equal(t, "up", val)

	require.NoError(t, c.Del(ctx, "vote:u1:1"))
	val, err = c.Get(ctx, "vote:u1:1")
	require.NoError(t, err)
	assert.Empty(t, val)
}

func TestRedisCache_IncrExpireTTL(t *testing.T) {
	c, mr := setupRedis(t)
	ctx := context.Background()

	n, err := c.Incr(ctx, "limit:u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, c.Expire(ctx, "limit:u1", time.Hour))
	ttl, err := c.TTL(ctx, "limit:u1")
	require.NoError(t, err)
	assert.Equal(t, time.Hour, ttl)

	mr.FastForward(2 * time.Hour)
	val, err := c.Get(ctx, "limit:u1")
	require.NoError(t, err)
	assert.Empty(t, val)
}

func TestRedisCache_Health(t *testing.T) {
	c, mr := setupRedis(t)
	require.NoError(t, c.Health(context.Background()))

	mr.Close()
	assert.Error(t, c.Health(context.Background()))
}

func TestRedisCache_IncrWithExpire(t *testing.T) {
	c, mr := setupRedis(t)
	ctx := context.Background()

	n, err := c.IncrWithExpire(ctx, "limit:u1", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, time.Hour, mr.TTL("limit:u1"))

	mr.FastForward(10 * time.Minute)
	n, err = c.IncrWithExpire(ctx, "limit:u1", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, 50*time.Minute, mr.TTL("limit:u1"))
}

func TestMemory_GetSetDel(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	val, err := m.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, val)

	require.NoError(t, m.Set(ctx, "count", 3, 0))
	val, err = m.Get(ctx, "count")
	require.NoError(t, err)
	assert.Equal(t, "3", val)

	n, err := m.Incr(ctx, "count")
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	require.NoError(t, m.Del(ctx, "count"))
	val, _ = m.Get(ctx, "count")
	assert.Empty(t, val)
}

func TestMemory_Expiration(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	ttl, _ := m.TTL(ctx, "k")
	assert.Equal(t, time.Duration(-2), ttl)

	require.NoError(t, m.Set(ctx, "k", "v", 0))
	ttl, _ = m.TTL(ctx, "k")
	assert.Equal(t, time.Duration(-1), ttl)

	n, err := m.Incr(ctx, "count")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	require.NoError(t, m.Expire(ctx, "count", time.Minute))

	ttl, _ = m.TTL(ctx, "count")
	assert.Greater(t, ttl, 59*time.Second)
	assert.LessOrEqual(t, ttl, time.Minute)

	require.NoError(t, m.Expire(ctx, "count", 20*time.Millisecond))
	assert.Eventually(t, func() bool {
		val, _ := m.Get(ctx, "count")
		return val == ""
	}, time.Second, 5*time.Millisecond)

	_, err = m.Incr(ctx, "k")
	assert.Error(t, err)
}

func TestMemory_IncrWithExpire(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	n, err := m.IncrWithExpire(ctx, "limit:u1", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	first, _ := m.TTL(ctx, "limit:u1")
	assert.Greater(t, first, 59*time.Minute)

	// A later increment keeps the window instead of restarting it.
	n, err = m.IncrWithExpire(ctx, "limit:u1", 2*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	second, _ := m.TTL(ctx, "limit:u1")
	assert.LessOrEqual(t, second, first)

	n, err = m.IncrWithExpire(ctx, "short", 20*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Eventually(t, func() bool {
		ttl, _ := m.TTL(ctx, "short")
		return ttl == -2
	}, time.Second, 5*time.Millisecond)
}

func TestMemory_ConcurrentIncr(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = m.IncrWithExpire(ctx, "count", time.Hour)
		}()
	}
	wg.Wait()

	val, err := m.Get(ctx, "count")
	require.NoError(t, err)
	assert.Equal(t, "50", val)
}
