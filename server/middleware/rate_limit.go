package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// RateLimiter keeps one token bucket per key.
type RateLimiter struct {
	mu     sync.Mutex
	limits map[string]*limiterEntry
	every  rate.Limit
	burst  int
	// idle is how long an unused bucket is kept before Sweep drops it.
	idle time.Duration
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a rate limiter allowing perSecond requests per key
// with the given burst.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	if perSecond <= 0 {
		perSecond = 2
	}
	if burst <= 0 {
		burst = 5
	}
	return &RateLimiter{
		limits: make(map[string]*limiterEntry),
		every:  rate.Limit(perSecond),
		burst:  burst,
		idle:   10 * time.Minute,
	}
}

// getLimiter gets or creates a limiter for the given key.
func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if entry, ok := rl.limits[key]; ok {
		entry.lastSeen = time.Now()
		return entry.limiter
	}

	limiter := rate.NewLimiter(rl.every, rl.burst)
	rl.limits[key] = &limiterEntry{limiter: limiter, lastSeen: time.Now()}
	return limiter
}

// Allow checks if a request is allowed for the given key.
func (rl *RateLimiter) Allow(key string) bool {
	return rl.getLimiter(key).Allow()
}

// Wait waits for a request to be allowed.
// Returns error if the context is cancelled or rate limit exceeded.
func (rl *RateLimiter) Wait(ctx context.Context, key string) error {
	return rl.getLimiter(key).Wait(ctx)
}

// Sweep drops buckets not used since before now minus the idle window.
func (rl *RateLimiter) Sweep(now time.Time) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	dropped := 0
	for key, entry := range rl.limits {
		if now.Sub(entry.lastSeen) > rl.idle {
			delete(rl.limits, key)
			dropped++
		}
	}
	return dropped
}

// Len returns the number of tracked keys.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limits)
}

// KeyFunc picks the bucket for a request.
type KeyFunc func(c echo.Context) string

// RealIPKey buckets requests by client address.
func RealIPKey(c echo.Context) string {
	return c.RealIP()
}

// Echo returns middleware that rejects requests over the limit via onLimit.
func (rl *RateLimiter) Echo(key KeyFunc, onLimit func(c echo.Context) error) echo.MiddlewareFunc {
	if key == nil {
		key = RealIPKey
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !rl.Allow(key(c)) {
				return onLimit(c)
			}
			return next(c)
		}
	}
}
