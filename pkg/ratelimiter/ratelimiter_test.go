package ratelimiter_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/snaketips/pkg/ratelimiter"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Now()}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newBucket(t *testing.T, clock *fakeClock, cfg ratelimiter.Config) *ratelimiter.Bucket {
	t.Helper()
	store := ratelimiter.NewMemoryStore(
		ratelimiter.WithCleanupInterval(0),
		ratelimiter.WithClock(clock.Now),
	)
	t.Cleanup(store.Close)

	b, err := ratelimiter.NewBucket(store, cfg)
	require.NoError(t, err)
	return b
}

func TestNewBucket(t *testing.T) {
	t.Parallel()

	store := ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(0))
	t.Cleanup(store.Close)

	tests := []struct {
		name    string
		store   ratelimiter.Store
		config  ratelimiter.Config
		wantErr string
	}{
		{
			name:   "valid config",
			store:  store,
			config: ratelimiter.Config{Capacity: 5, RefillRate: 5, RefillInterval: time.Minute},
		},
		{
			name:    "nil store",
			config:  ratelimiter.Config{Capacity: 5, RefillRate: 5, RefillInterval: time.Minute},
			wantErr: "store is required",
		},
		{
			name:    "zero capacity",
			store:   store,
			config:  ratelimiter.Config{Capacity: 0, RefillRate: 5, RefillInterval: time.Minute},
			wantErr: "capacity must be positive",
		},
		{
			name:    "negative refill rate",
			store:   store,
			config:  ratelimiter.Config{Capacity: 5, RefillRate: -1, RefillInterval: time.Minute},
			wantErr: "refill rate must be positive",
		},
		{
			name:    "zero refill interval",
			store:   store,
			config:  ratelimiter.Config{Capacity: 5, RefillRate: 5},
			wantErr: "refill interval must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b, err := ratelimiter.NewBucket(tt.store, tt.config)
			if tt.wantErr != "" {
				require.ErrorIs(t, err, ratelimiter.ErrInvalidConfig)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Nil(t, b)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.config, b.Config())
		})
	}
}

func TestBucket_Allow(t *testing.T) {
	t.Parallel()

	cfg := ratelimiter.Config{Capacity: 5, RefillRate: 5, RefillInterval: time.Minute}

	t.Run("allows up to capacity then denies", func(t *testing.T) {
		t.Parallel()
		clock := newFakeClock()
		b := newBucket(t, clock, cfg)
		ctx := context.Background()

		for i := range 5 {
			res, err := b.Allow(ctx, "client")
			require.NoError(t, err)
			assert.True(t, res.Allowed(), "request %d", i+1)
			assert.Equal(t, 4-i, res.Remaining)
			assert.Equal(t, 5, res.Limit)
			assert.Zero(t, res.RetryAfter())
		}

		res, err := b.Allow(ctx, "client")
		require.NoError(t, err)
		assert.False(t, res.Allowed())
		assert.Equal(t, clock.Now().Add(time.Minute), res.ResetAt)
	})

	t.Run("denied requests do not drain the bucket further", func(t *testing.T) {
		t.Parallel()
		clock := newFakeClock()
		b := newBucket(t, clock, cfg)
		ctx := context.Background()

		for range 20 {
			_, err := b.Allow(ctx, "client")
			require.NoError(t, err)
		}

		clock.Advance(time.Minute)
		res, err := b.Allow(ctx, "client")
		require.NoError(t, err)
		assert.True(t, res.Allowed())
		assert.Equal(t, 4, res.Remaining)
	})

	t.Run("refills after interval", func(t *testing.T) {
		t.Parallel()
		clock := newFakeClock()
		b := newBucket(t, clock, ratelimiter.Config{Capacity: 3, RefillRate: 1, RefillInterval: time.Second})
		ctx := context.Background()

		_, err := b.AllowN(ctx, "client", 3)
		require.NoError(t, err)

		clock.Advance(1500 * time.Millisecond)
		res, err := b.Status(ctx, "client")
		require.NoError(t, err)
		assert.Equal(t, 1, res.Remaining)

		clock.Advance(time.Hour)
		res, err = b.Status(ctx, "client")
		require.NoError(t, err)
		assert.Equal(t, 3, res.Remaining, "refill is capped at capacity")
	})

	t.Run("keys are independent", func(t *testing.T) {
		t.Parallel()
		clock := newFakeClock()
		b := newBucket(t, clock, cfg)
		ctx := context.Background()

		_, err := b.AllowN(ctx, "a", 5)
		require.NoError(t, err)

		res, err := b.Allow(ctx, "b")
		require.NoError(t, err)
		assert.True(t, res.Allowed())
	})

	t.Run("reset restores capacity", func(t *testing.T) {
		t.Parallel()
		clock := newFakeClock()
		b := newBucket(t, clock, cfg)
		ctx := context.Background()

		_, err := b.AllowN(ctx, "client", 5)
		require.NoError(t, err)
		require.NoError(t, b.Reset(ctx, "client"))

		res, err := b.Status(ctx, "client")
		require.NoError(t, err)
		assert.Equal(t, 5, res.Remaining)
	})

	t.Run("rejects non-positive token count", func(t *testing.T) {
		t.Parallel()
		b := newBucket(t, newFakeClock(), cfg)

		_, err := b.AllowN(context.Background(), "client", 0)
		assert.ErrorIs(t, err, ratelimiter.ErrInvalidTokenCount)
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()
		b := newBucket(t, newFakeClock(), cfg)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := b.Allow(ctx, "client")
		assert.ErrorIs(t, err, ratelimiter.ErrContextCancelled)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestBucket_Concurrent(t *testing.T) {
	t.Parallel()

	b := newBucket(t, newFakeClock(), ratelimiter.Config{Capacity: 50, RefillRate: 1, RefillInterval: time.Hour})
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for range 200 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := b.Allow(ctx, "shared")
			if assert.NoError(t, err) && res.Allowed() {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, allowed)
}
