package ratelimit

import (
	"context"
	"fmt"
	"time"
)

type counter interface {
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RedisLimiter is a fixed window counter shared by every instance that
// talks to the same Redis.
type RedisLimiter struct {
	counter counter
	limit   int64
	window  time.Duration
	prefix  string
}

func NewRedisLimiter(c counter, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{counter: c, limit: int64(limit), window: window, prefix: "ratelimit:"}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	count, err := l.counter.IncrWindow(ctx, l.prefix+key, l.window)
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit counter: %w", err)
	}
	return count <= l.limit, nil
}
