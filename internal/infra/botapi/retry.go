package botapi

import (
	"context"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"
)

// maxBackoff caps the exponential delay between retries.
const maxBackoff = 60 * time.Second

// RetryExecutor runs a call with bounded retries and exponential
// backoff plus jitter. Classification decides whether and how long to
// wait; non-retryable errors and exhausted attempts surface the
// original error unchanged.
type RetryExecutor struct {
	maxRetries int
	baseDelay  time.Duration
	stats      *StatsTracker
	log        *slog.Logger
}

// NewRetryExecutor creates an executor. Zero arguments fall back to
// the defaults (3 retries, 1s base delay).
func NewRetryExecutor(maxRetries int, baseDelay time.Duration, stats *StatsTracker, log *slog.Logger) *RetryExecutor {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	if baseDelay <= 0 {
		baseDelay = 1 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &RetryExecutor{
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		stats:      stats,
		log:        log,
	}
}

// Do attempts fn up to maxRetries+1 times.
func (r *RetryExecutor) Do(ctx context.Context, fn func(context.Context) error) error {
	retried := false

	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}

		cls := Classify(err)
		switch cls.Category {
		case CategoryTimeout:
			r.stats.RecordTimeout()
		case CategoryRateLimit:
			r.stats.RecordRateLimitHit()
		}

		if !cls.Retryable || attempt >= r.maxRetries {
			return err
		}

		if !retried {
			retried = true
			r.stats.MarkRetried()
		}
		r.stats.RecordRetry()

		delay := cls.Wait
		if delay == 0 {
			delay = backoffDelay(attempt, r.baseDelay)
		}
		r.log.Debug("retrying call",
			"attempt", attempt+1,
			"category", cls.Category,
			"delay", delay,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

// backoffDelay returns baseDelay * 2^attempt capped at maxBackoff,
// plus up to 1s of jitter to avoid synchronized retry storms. Jitter
// never exceeds the base delay so short delays stay short.
func backoffDelay(attempt int, baseDelay time.Duration) time.Duration {
	delay := float64(baseDelay) * math.Pow(2, float64(attempt))
	if delay > float64(maxBackoff) {
		delay = float64(maxBackoff)
	}
	jitter := int64(time.Second)
	if int64(baseDelay) < jitter {
		jitter = int64(baseDelay)
	}
	return time.Duration(delay) + time.Duration(rand.Int64N(jitter))
}
