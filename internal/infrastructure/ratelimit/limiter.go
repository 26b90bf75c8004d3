// Package ratelimit implements the fixed-window throttle applied to every
// external registry domain.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/doeshing/sdkassist/internal/domain"
	"github.com/doeshing/sdkassist/internal/ports"
)

// Window is the fixed counting interval per domain.
const Window = time.Minute

type window struct {
	calls int
	start time.Time
}

// Limiter tracks one fixed 60-second window per configured domain. Acquire
// blocks for the remaining window once the limit is reached; domains with no
// configured rule pass through untouched. State is mutex-protected because
// source lookups run on real goroutines.
type Limiter struct {
	mu      sync.Mutex
	limits  map[string]int
	windows map[string]*window

	// now and sleep are injectable so tests can drive a fake clock.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New builds a limiter from the configured per-domain rules.
func New(rules []domain.RateLimitRule) *Limiter {
	limits := make(map[string]int, len(rules))
	for _, rule := range rules {
		if rule.Limit > 0 {
			limits[rule.Domain] = rule.Limit
		}
	}
	return &Limiter{
		limits:  limits,
		windows: make(map[string]*window),
		now:     time.Now,
		sleep:   sleepContext,
	}
}

// Acquire counts one call against the domain's current window, blocking for
// the remaining window time when the limit is exhausted. A context cancelled
// mid-wait returns ctx.Err() without consuming capacity.
func (l *Limiter) Acquire(ctx context.Context, host string) error {
	l.mu.Lock()
	limit, tracked := l.limits[host]
	if !tracked {
		l.mu.Unlock()
		return nil
	}

	w, ok := l.windows[host]
	if !ok {
		w = &window{start: l.now()}
		l.windows[host] = w
	}

	if l.now().Sub(w.start) >= Window {
		w.calls = 0
		w.start = l.now()
	}

	if w.calls >= limit {
		wait := Window - l.now().Sub(w.start)
		l.mu.Unlock()
		if wait > 0 {
			if err := l.sleep(ctx, wait); err != nil {
				return err
			}
		}
		l.mu.Lock()
		w.calls = 0
		w.start = l.now()
	}

	w.calls++
	l.mu.Unlock()
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

var _ ports.RateLimiter = (*Limiter)(nil)
