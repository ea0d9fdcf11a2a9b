package ratelimit

import (
	"sync"
	"time"

	"github.com/lexorahq/lexora/internal/clock"
)

// Limiter is a fixed-window counter per key. It answers locally, so in a
// multi-instance deployment each instance enforces its own share.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window
	limit   int
	span    time.Duration
	clock   clock.Clock
}

type window struct {
	start time.Time
	count int
}

func New(limit int, span time.Duration, clk clock.Clock) *Limiter {
	if limit <= 0 {
		limit = 1
	}
	if span <= 0 {
		span = time.Minute
	}
	return &Limiter{
		windows: make(map[string]*window),
		limit:   limit,
		span:    span,
		clock:   clk,
	}
}

// Allow reports whether key may proceed, counting the attempt either way.
func (l *Limiter) Allow(key string) bool {
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= l.span {
		l.windows[key] = &window{start: now, count: 1}
		l.sweep(now)
		return true
	}
	w.count++
	return w.count <= l.limit
}

// sweep drops stale windows so the map stays bounded by active keys.
func (l *Limiter) sweep(now time.Time) {
	if len(l.windows) < 4096 {
		return
	}
	for key, w := range l.windows {
		if now.Sub(w.start) >= l.span {
			delete(l.windows, key)
		}
	}
}
