// Package ratelimit provides fixed-window request limiters keyed by caller.
// This is part of the platform layer and contains no business logic.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter decides whether one more request from key fits the current window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type window struct {
	count   int
	resetAt time.Time
}

// FixedWindow is an in-process limiter. A key's window opens on its first
// request and admits limit requests until it expires.
type FixedWindow struct {
	mu        sync.Mutex
	limit     int
	length    time.Duration
	now       func() time.Time
	windows   map[string]*window
	lastSweep time.Time
}

// NewFixedWindow creates a limiter admitting limit requests per length.
func NewFixedWindow(limit int, length time.Duration) *FixedWindow {
	return &FixedWindow{
		limit:   limit,
		length:  length,
		now:     time.Now,
		windows: make(map[string]*window),
	}
}

// WithClock replaces the time source. Used by tests.
func (l *FixedWindow) WithClock(now func() time.Time) *FixedWindow {
	l.now = now
	return l
}

// Allow never returns an error.
func (l *FixedWindow) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	w, ok := l.windows[key]
	if !ok || now.After(w.resetAt) {
		l.windows[key] = &window{count: 1, resetAt: now.Add(l.length)}
		return true, nil
	}
	if w.count >= l.limit {
		return false, nil
	}
	w.count++
	return true, nil
}

// Len reports how many keys currently hold a window.
func (l *FixedWindow) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

// sweep drops expired windows at most once per window length.
func (l *FixedWindow) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.length {
		return
	}
	for key, w := range l.windows {
		if now.After(w.resetAt) {
			delete(l.windows, key)
		}
	}
	l.lastSweep = now
}
