package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"food-delivery-tracking/testutil"
)

func exerciseLimiter(t *testing.T, l Limiter, clock *testutil.Clock) {
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, _, err := l.Allow(ctx, "ip:/a", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, ok, "request %d", i)
		clock.Advance(10 * time.Second)
	}

	ok, retryAfter, err := l.Allow(ctx, "ip:/a", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 30*time.Second, retryAfter)

	// Other keys have their own budget.
	ok, _, err = l.Allow(ctx, "ip:/b", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	// Once the first request slides out, one slot opens.
	clock.Advance(31 * time.Second)
	ok, _, err = l.Allow(ctx, "ip:/a", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, _, err = l.Allow(ctx, "ip:/a", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemory(t *testing.T) {
	clock := testutil.NewClock(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	m := NewMemory(clock.Now)
	exerciseLimiter(t, m, clock)

	clock.Advance(2 * time.Minute)
	m.Sweep(time.Minute)
	m.mu.Lock()
	assert.Empty(t, m.logs)
	m.mu.Unlock()
}

func TestMemory_ConcurrentCallersShareBudget(t *testing.T) {
	m := NewMemory(nil)
	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, _, err := m.Allow(context.Background(), "k", 20, time.Minute)
			if err == nil && ok {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, allowed)
}

func TestRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	clock := testutil.NewClock(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	r := NewRedis(rdb, "ratelimit:", clock.Now)
	exerciseLimiter(t, r, clock)

	assert.True(t, mr.Exists("ratelimit:ip:/a"))
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisClient(context.Background(), addr, "", 0)
	assert.Error(t, err)
}
