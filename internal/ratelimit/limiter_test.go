package ratelimit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type memoryCounter struct {
	mu     sync.Mutex
	counts map[string]int64
	ttls   map[string]time.Duration
}

func newMemoryCounter() *memoryCounter {
	return &memoryCounter{counts: make(map[string]int64), ttls: make(map[string]time.Duration)}
}

func (c *memoryCounter) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[key]++
	c.ttls[key] = ttl
	return c.counts[key], nil
}

type failingCounter struct{}

func (failingCounter) Incr(context.Context, string, time.Duration) (int64, error) {
	return 0, errors.New("connection refused")
}

func TestLimiter_FixedWindow(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	counter := newMemoryCounter()
	limiter := New(counter, 2, time.Minute, clock, nil)

	require.NoError(t, limiter.Allow(ctx, "10.0.0.1"))
	require.NoError(t, limiter.Allow(ctx, "10.0.0.1"))
	require.ErrorIs(t, limiter.Allow(ctx, "10.0.0.1"), ErrLimited)

	// Other clients have their own budget.
	require.NoError(t, limiter.Allow(ctx, "10.0.0.2"))

	clock.Advance(time.Minute)
	require.NoError(t, limiter.Allow(ctx, "10.0.0.1"))

	for _, ttl := range counter.ttls {
		require.Equal(t, time.Minute, ttl)
	}
}

func TestLimiter_DisabledWithoutCounter(t *testing.T) {
	limiter := New(nil, 1, time.Minute, nil, nil)
	require.False(t, limiter.Enabled())
	for i := 0; i < 5; i++ {
		require.NoError(t, limiter.Allow(context.Background(), "c"))
	}

	var nilLimiter *Limiter
	require.NoError(t, nilLimiter.Allow(context.Background(), "c"))
}

func TestLimiter_FailsOpen(t *testing.T) {
	limiter := New(failingCounter{}, 1, time.Minute, nil, nil)
	require.NoError(t, limiter.Allow(context.Background(), "c"))
	require.NoError(t, limiter.Allow(context.Background(), "c"))
}

func TestRedisCounter_UnreachableServerFailsOpen(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { client.Close() })

	limiter := New(NewRedisCounterFromClient(client), 1, time.Minute, nil, nil)
	require.NoError(t, limiter.Allow(context.Background(), "c"))
	require.NoError(t, limiter.Allow(context.Background(), "c"))
}

func TestNewRedisCounter_BadURL(t *testing.T) {
	_, err := NewRedisCounter(context.Background(), "not-a-url")
	require.Error(t, err)
}
