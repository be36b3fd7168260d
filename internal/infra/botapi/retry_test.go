package botapi

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	stats := NewStatsTracker()
	r := NewRetryExecutor(3, time.Millisecond, stats, nil)

	calls := 0
	err := r.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return &APIError{StatusCode: 500}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}

	snap := stats.Snapshot()
	if snap.Retries != 2 {
		t.Errorf("Retries = %d, want 2", snap.Retries)
	}
	if snap.RetriedRequests != 1 {
		t.Errorf("RetriedRequests = %d, want 1", snap.RetriedRequests)
	}
}

func TestRetryGivesUpAfterMaxRetries(t *testing.T) {
	r := NewRetryExecutor(2, time.Millisecond, NewStatsTracker(), nil)

	calls := 0
	wantErr := &APIError{StatusCode: 502}
	err := r.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("got %v, want original error", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3 (initial + 2 retries)", calls)
	}
}

func TestRetryStopsOnNonRetryable(t *testing.T) {
	r := NewRetryExecutor(3, time.Millisecond, NewStatsTracker(), nil)

	calls := 0
	err := r.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return &APIError{StatusCode: 404}
	})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != 404 {
		t.Fatalf("got %v, want 404 APIError", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1: client errors are never retried", calls)
	}
}

func TestRetryHonorsRetryAfter(t *testing.T) {
	stats := NewStatsTracker()
	r := NewRetryExecutor(1, time.Millisecond, stats, nil)

	calls := 0
	start := time.Now()
	err := r.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return &APIError{StatusCode: 429, RetryAfter: 20 * time.Millisecond}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("elapsed %v, want >= Retry-After delay", elapsed)
	}
	if snap := stats.Snapshot(); snap.RateLimitHits != 1 {
		t.Errorf("RateLimitHits = %d, want 1", snap.RateLimitHits)
	}
}

func TestRetryAbortsOnContextCancel(t *testing.T) {
	r := NewRetryExecutor(5, 50*time.Millisecond, NewStatsTracker(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := r.Do(ctx, func(ctx context.Context) error {
		calls++
		return &APIError{StatusCode: 500}
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1: cancel fires during the backoff wait", calls)
	}
}

func TestBackoffDelayGrowsAndCaps(t *testing.T) {
	base := time.Second
	prev := time.Duration(0)
	for attempt := 0; attempt < 6; attempt++ {
		d := backoffDelay(attempt, base)
		if d < prev {
			t.Fatalf("attempt %d: delay %v shrank below %v", attempt, d, prev)
		}
		if d > maxBackoff+time.Second {
			t.Fatalf("attempt %d: delay %v exceeds cap plus jitter", attempt, d)
		}
		prev = time.Duration(float64(base) * float64(int(1)<<attempt))
		if prev > maxBackoff {
			prev = maxBackoff
		}
	}
}
