package ratelimiter

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, limit int, window time.Duration) (*RedisLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisLimiter(rdb, limit, window), mr
}

func TestLimiterAllowsUpToLimit(t *testing.T) {
	l, _ := newTestLimiter(t, 3, time.Minute)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow(ctx, "iv-1"), "request %d should pass", i+1)
	}
	assert.False(t, l.Allow(ctx, "iv-1"), "fourth request in window must be throttled")
}

func TestLimiterKeysAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(t, 1, time.Minute)
	ctx := context.Background()
	require.True(t, l.Allow(ctx, "iv-1"))
	assert.False(t, l.Allow(ctx, "iv-1"))
	assert.True(t, l.Allow(ctx, "iv-2"), "other keys have their own window")
}

func TestLimiterWindowResets(t *testing.T) {
	l, mr := newTestLimiter(t, 1, time.Minute)
	ctx := context.Background()
	require.True(t, l.Allow(ctx, "iv-1"))
	require.False(t, l.Allow(ctx, "iv-1"))

	mr.FastForward(time.Minute + time.Second)
	assert.True(t, l.Allow(ctx, "iv-1"), "a new window starts after expiry")
}

func TestLimiterFailsOpenWhenRedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	l := NewRedisLimiter(rdb, 1, time.Minute)
	mr.Close()
	assert.True(t, l.Allow(context.Background(), "iv-1"))
}
