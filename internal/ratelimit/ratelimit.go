// Package ratelimit provides a fixed-window request limiter for
// outbound provider calls. Vendor screening APIs meter by request;
// the limiter refuses calls past the cap instead of letting the
// vendor throttle mid-screening.
package ratelimit

import (
	"fmt"
	"sync"
	"time"
)

// Limit caps requests per fixed window. Zero values mean unlimited.
type Limit struct {
	MaxRequests int
	Window      time.Duration
}

// Enabled reports whether the limit constrains anything.
func (l Limit) Enabled() bool {
	return l.MaxRequests > 0 && l.Window > 0
}

// Result is the outcome of one limiter decision.
type Result struct {
	Exceeded bool
	Current  int
	Max      int
	Window   time.Duration
}

// Reason renders the refusal for logs and provider errors.
func (r Result) Reason() string {
	return fmt.Sprintf("rate limit exceeded: %d/%d requests in %s window", r.Current, r.Max, r.Window)
}

// Limiter counts requests against one fixed window. The window resets
// lazily on the first call after expiry; a refused call does not
// consume a slot.
type Limiter struct {
	mu    sync.Mutex
	limit Limit
	start time.Time
	count int
	now   func() time.Time
}

// New builds a limiter for the given limit. A disabled limit yields a
// limiter that always allows.
func New(limit Limit) *Limiter {
	return &Limiter{limit: limit, now: time.Now}
}

// Allow consumes one request slot, refusing when the window is full.
func (l *Limiter) Allow() Result {
	if !l.limit.Enabled() {
		return Result{}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if l.start.IsZero() || now.Sub(l.start) >= l.limit.Window {
		l.start = now
		l.count = 0
	}

	if l.count >= l.limit.MaxRequests {
		return Result{Exceeded: true, Current: l.count, Max: l.limit.MaxRequests, Window: l.limit.Window}
	}
	l.count++
	return Result{Current: l.count, Max: l.limit.MaxRequests, Window: l.limit.Window}
}
