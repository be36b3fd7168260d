package botapi

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter enforces a minimum spacing between outbound requests to
// a provider. Safe for concurrent callers.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter creates a limiter that releases at most one call per
// minDelay. minDelay <= 0 disables throttling.
func NewRateLimiter(minDelay time.Duration) *RateLimiter {
	if minDelay <= 0 {
		return &RateLimiter{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &RateLimiter{limiter: rate.NewLimiter(rate.Every(minDelay), 1)}
}

// Throttle blocks until the spacing since the previous release has
// elapsed, or the context is cancelled.
func (rl *RateLimiter) Throttle(ctx context.Context) error {
	return rl.limiter.Wait(ctx)
}
