package ratelimiter_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/snaketips/pkg/ratelimiter"
)

func TestNewRedisStore_NilClient(t *testing.T) {
	t.Parallel()

	_, err := ratelimiter.NewRedisStore(nil)
	assert.ErrorIs(t, err, ratelimiter.ErrInvalidConfig)
}

func TestRedisStore(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL is not set")
	}

	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })

	clock := newFakeClock()
	store, err := ratelimiter.NewRedisStore(client,
		ratelimiter.WithRedisPrefix("test:"+uuid.NewString()+":"),
		ratelimiter.WithRedisClock(clock.Now),
	)
	require.NoError(t, err)

	b, err := ratelimiter.NewBucket(store, ratelimiter.Config{Capacity: 2, RefillRate: 1, RefillInterval: time.Second})
	require.NoError(t, err)

	ctx := context.Background()
	t.Cleanup(func() { _ = b.Reset(context.Background(), "client") })

	for range 2 {
		res, err := b.Allow(ctx, "client")
		require.NoError(t, err)
		assert.True(t, res.Allowed())
	}

	res, err := b.Allow(ctx, "client")
	require.NoError(t, err)
	assert.False(t, res.Allowed())

	clock.Advance(time.Second)
	res, err = b.Allow(ctx, "client")
	require.NoError(t, err)
	assert.True(t, res.Allowed())
	assert.Equal(t, 0, res.Remaining)

	require.NoError(t, b.Reset(ctx, "client"))
	res, err = b.Status(ctx, "client")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Remaining)
}
