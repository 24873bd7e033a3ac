package resilience

import (
	"sync"
	"time"
)

const (
	DefaultRateLimit  = 60
	DefaultRateWindow = time.Minute
)

// RateLimiter is a sliding-window admission gate shared by every caller of
// one executor. Timestamps are kept in ascending order.
type RateLimiter struct {
	mu         sync.Mutex
	limit      int
	window     time.Duration
	now        func() time.Time
	timestamps []time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = DefaultRateLimit
	}
	if window <= 0 {
		window = DefaultRateWindow
	}
	return &RateLimiter{
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// SetClock replaces the time source; intended for tests.
func (r *RateLimiter) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

// prune drops entries with t <= now-window. Caller holds mu.
func (r *RateLimiter) prune(now time.Time) {
	cutoff := now.Add(-r.window)
	i := 0
	for i < len(r.timestamps) && !r.timestamps[i].After(cutoff) {
		i++
	}
	if i > 0 {
		r.timestamps = append(r.timestamps[:0], r.timestamps[i:]...)
	}
}

func (r *RateLimiter) CanMakeRequest() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prune(r.now())
	return len(r.timestamps) < r.limit
}

func (r *RateLimiter) RecordRequest() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timestamps = append(r.timestamps, r.now())
}

// WaitTime is how long until the oldest in-window entry expires; zero while
// under the ceiling.
func (r *RateLimiter) WaitTime() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	r.prune(now)
	return r.waitLocked(now)
}

func (r *RateLimiter) waitLocked(now time.Time) time.Duration {
	if len(r.timestamps) < r.limit {
		return 0
	}
	wait := r.timestamps[0].Add(r.window).Sub(now)
	if wait < 0 {
		return 0
	}
	return wait
}

// TryAcquire checks and records in one step. When refused it also returns
// the wait hint.
func (r *RateLimiter) TryAcquire() (bool, time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	r.prune(now)
	if len(r.timestamps) >= r.limit {
		return false, r.waitLocked(now)
	}
	r.timestamps = append(r.timestamps, now)
	return true, 0
}

// InWindow reports the number of entries currently counted.
func (r *RateLimiter) InWindow() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prune(r.now())
	return len(r.timestamps)
}
