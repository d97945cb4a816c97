package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func mustAllow(t *testing.T, l Limiter, key string, want bool) {
	t.Helper()
	ok, err := l.Allow(context.Background(), key)
	if err != nil {
		t.Fatalf("Allow(%q) returned error: %v", key, err)
	}
	if ok != want {
		t.Fatalf("Allow(%q) = %v, want %v", key, ok, want)
	}
}

func TestFixedWindowAdmitsLimitThenResets(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	l := NewFixedWindow(5, time.Minute).WithClock(clock.Now)

	for i := 0; i < 5; i++ {
		mustAllow(t, l, "1.2.3.4", true)
	}
	mustAllow(t, l, "1.2.3.4", false)
	mustAllow(t, l, "5.6.7.8", true)

	// The window is inclusive of its reset instant.
	clock.Advance(time.Minute)
	mustAllow(t, l, "1.2.3.4", false)

	clock.Advance(time.Millisecond)
	mustAllow(t, l, "1.2.3.4", true)
}

func TestFixedWindowSweepsExpiredKeys(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	l := NewFixedWindow(5, time.Minute).WithClock(clock.Now)

	mustAllow(t, l, "a", true)
	mustAllow(t, l, "b", true)
	if l.Len() != 2 {
		t.Fatalf("expected 2 windows, got %d", l.Len())
	}

	clock.Advance(2 * time.Minute)
	mustAllow(t, l, "c", true)
	if l.Len() != 1 {
		t.Fatalf("expected expired windows to be swept, got %d", l.Len())
	}
}

func TestFixedWindowIsSafeForConcurrentUse(t *testing.T) {
	l := NewFixedWindow(50, time.Hour)
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, _ := l.Allow(context.Background(), "shared")
			if ok {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if allowed != 50 {
		t.Fatalf("expected exactly 50 admissions, got %d", allowed)
	}
}

func TestRedisLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	l := NewRedis(client, 5, time.Minute).WithPrefix("test:")
	for i := 0; i < 5; i++ {
		mustAllow(t, l, "1.2.3.4", true)
	}
	mustAllow(t, l, "1.2.3.4", false)
	mustAllow(t, l, "unknown", true)

	if ttl := mr.TTL("test:1.2.3.4"); ttl <= 0 || ttl > time.Minute {
		t.Fatalf("expected the window to carry a TTL, got %v", ttl)
	}

	mr.FastForward(time.Minute + time.Second)
	mustAllow(t, l, "1.2.3.4", true)
}

func TestRedisLimiterReportsErrors(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	if _, err := NewRedis(client, 5, time.Minute).Allow(context.Background(), "k"); err == nil {
		t.Fatalf("expected an error with redis down")
	}
}
