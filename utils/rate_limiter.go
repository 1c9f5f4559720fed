package utils

import (
	"sync"
	"time"
)

// RateLimiter is the in-process token bucket the rate-limit middleware
// falls back to per client key when redis is unreachable. Capacity equals
// the request budget for one window and tokens refill continuously at
// budget/window, so a redis outage keeps roughly the same ceiling.
type RateLimiter struct {
	mu       sync.Mutex
	budget   float64
	window   time.Duration
	tokens   float64
	lastSeen time.Time

	now func() time.Time
}

func NewRateLimiter(requests int, window time.Duration) *RateLimiter {
	if requests < 1 {
		requests = 1
	}
	rl := &RateLimiter{
		budget: float64(requests),
		window: window,
		now:    time.Now,
	}
	rl.tokens = rl.budget
	rl.lastSeen = rl.now()
	return rl
}

// Allow spends one token, reporting false when the bucket is empty.
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refill()
	if rl.tokens < 1 {
		return false
	}
	rl.tokens--
	return true
}

// Remaining reports how many whole requests the bucket still admits,
// used for the X-RateLimit-Remaining header on the fallback path.
func (rl *RateLimiter) Remaining() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refill()
	return int(rl.tokens)
}

// refill credits tokens for the time elapsed since the last call.
// Caller holds rl.mu.
func (rl *RateLimiter) refill() {
	now := rl.now()
	elapsed := now.Sub(rl.lastSeen)
	rl.lastSeen = now
	if elapsed <= 0 || rl.window <= 0 {
		return
	}

	rl.tokens += rl.budget * float64(elapsed) / float64(rl.window)
	if rl.tokens > rl.budget {
		rl.tokens = rl.budget
	}
}
