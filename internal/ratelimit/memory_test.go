package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLimiter_BurstAndRefill(t *testing.T) {
	clock := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewMemoryLimiter(3, 3*time.Second)
	l.now = func() time.Time { return clock }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if ok, _ := l.Allow(ctx, "1.2.3.4"); !ok {
			t.Fatalf("request %d should pass", i+1)
		}
	}
	if ok, _ := l.Allow(ctx, "1.2.3.4"); ok {
		t.Fatal("fourth request should be limited")
	}
	if ok, _ := l.Allow(ctx, "5.6.7.8"); !ok {
		t.Fatal("other key should have its own bucket")
	}

	clock = clock.Add(1500 * time.Millisecond)
	if ok, _ := l.Allow(ctx, "1.2.3.4"); !ok {
		t.Fatal("one token should be refilled after an interval")
	}
	if ok, _ := l.Allow(ctx, "1.2.3.4"); ok {
		t.Fatal("only one token should be refilled")
	}

	clock = clock.Add(500 * time.Millisecond)
	if ok, _ := l.Allow(ctx, "1.2.3.4"); !ok {
		t.Fatal("partial intervals should carry over")
	}
}

func TestMemoryLimiter_CleanupStale(t *testing.T) {
	clock := time.Now()
	l := NewMemoryLimiter(1, time.Minute)
	l.now = func() time.Time { return clock }

	_, _ = l.Allow(context.Background(), "idle")
	clock = clock.Add(staleAfter + time.Minute)
	l.cleanupStale()

	if len(l.buckets) != 0 {
		t.Fatalf("expected idle bucket to be removed, have %d", len(l.buckets))
	}
}

func TestNewMemoryLimiter_TinyWindow(t *testing.T) {
	tests := []struct {
		name   string
		limit  int
		window time.Duration
		burst  int
	}{
		{"window shorter than limit", 10, 5 * time.Nanosecond, 10},
		{"zero window", 4, 0, 4},
		{"zero limit", 0, time.Second, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
			l := NewMemoryLimiter(tt.limit, tt.window)
			l.now = func() time.Time { return clock }
			if l.interval <= 0 {
				t.Fatalf("interval = %v, want positive", l.interval)
			}

			ctx := context.Background()
			for i := 0; i < tt.burst; i++ {
				if ok, _ := l.Allow(ctx, "1.2.3.4"); !ok {
					t.Fatalf("request %d should pass", i+1)
				}
			}
			if ok, _ := l.Allow(ctx, "1.2.3.4"); ok {
				t.Fatal("request past the burst should be limited")
			}

			clock = clock.Add(time.Second)
			if ok, _ := l.Allow(ctx, "1.2.3.4"); !ok {
				t.Fatal("bucket should refill")
			}
		})
	}
}
