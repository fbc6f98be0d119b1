package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// loginRateScript counts attempts in a fixed window: INCR plus an expiry on
// the first hit, atomically.
const loginRateScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`

// redisEvaler is the slice of *redis.Client the limiter needs; keeping it
// narrow lets tests substitute a stub.
type redisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// RedisLimiter shares the attempt budget across processes. Redis errors
// fail open: an outage must not lock every account out.
type RedisLimiter struct {
	client redisEvaler
	max    int
	window time.Duration
	prefix string
}

func NewRedisLimiter(client redisEvaler, max int, window time.Duration, prefix string) *RedisLimiter {
	return &RedisLimiter{client: client, max: max, window: window, prefix: prefix}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) bool {
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	count, err := l.client.Eval(ctx, loginRateScript,
		[]string{l.prefix + key}, l.window.Milliseconds()).Int64()
	if err != nil {
		return true
	}
	return count <= int64(l.max)
}
