// Package ratelimiter provides a Redis-backed fixed-window rate limiter
// used to throttle answer submissions per interview.
package ratelimiter

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// incrScript atomically counts a key within its window, setting the expiry
// on first increment.
var incrScript = redis.NewScript(`
local current = redis.call('INCR', KEYS[1])
if current == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return current
`)

// Limiter answers whether one more event is allowed for a key.
type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

// RedisLimiter implements a fixed window of `limit` events per `window`.
// Redis failures fail open: throttling is protection, not correctness.
type RedisLimiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
}

// NewRedisLimiter constructs a limiter over an existing client.
func NewRedisLimiter(rdb *redis.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, limit: limit, window: window}
}

// Allow reports whether the event fits in the current window for key.
func (l *RedisLimiter) Allow(ctx context.Context, key string) bool {
	n, err := incrScript.Run(ctx, l.rdb, []string{"ratelimit:" + key}, l.window.Milliseconds()).Int64()
	if err != nil {
		slog.Warn("rate limiter unavailable, allowing request", slog.Any("error", err))
		return true
	}
	return n <= int64(l.limit)
}

// NoopLimiter allows everything. Used when no Redis URL is configured.
type NoopLimiter struct{}

// Allow always returns true.
func (NoopLimiter) Allow(context.Context, string) bool { return true }
