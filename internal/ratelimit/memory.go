package ratelimit

import (
	"context"
	"sync"
	"time"
)

const staleAfter = 10 * time.Minute

// MemoryLimiter is a token bucket per key, suitable for a single instance.
type MemoryLimiter struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	interval time.Duration
	capacity int
	now      func() time.Time
}

type bucket struct {
	tokens   int
	lastFill time.Time
}

// NewMemoryLimiter allows limit requests per window with bursts up to limit.
// One token is refilled every window/limit, at least every nanosecond.
func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	limit = max(limit, 1)
	return &MemoryLimiter{
		buckets:  make(map[string]*bucket),
		interval: max(window/time.Duration(limit), time.Nanosecond),
		capacity: limit,
		now:      time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.capacity, lastFill: now}
		l.buckets[key] = b
	}

	if refill := int(now.Sub(b.lastFill) / l.interval); refill > 0 {
		b.tokens = min(b.tokens+refill, l.capacity)
		b.lastFill = b.lastFill.Add(time.Duration(refill) * l.interval)
	}

	if b.tokens == 0 {
		return false, nil
	}
	b.tokens--
	return true, nil
}

// Run drops idle buckets until ctx is cancelled.
func (l *MemoryLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(staleAfter / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.cleanupStale()
		}
	}
}

func (l *MemoryLimiter) cleanupStale() {
	l.mu.Lock()
	defer l.mu.Unlock()

	threshold := l.now().Add(-staleAfter)
	for key, b := range l.buckets {
		if b.lastFill.Before(threshold) {
			delete(l.buckets, key)
		}
	}
}
