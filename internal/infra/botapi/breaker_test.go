package botapi

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errUpstream = errors.New("upstream down")

func failingCall(ctx context.Context) error { return errUpstream }
func okCall(ctx context.Context) error      { return nil }

func TestBreakerOpensAfterFailureThreshold(t *testing.T) {
	cb := NewCircuitBreaker(5, 2, time.Minute)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		if err := cb.Execute(ctx, failingCall); !errors.Is(err, errUpstream) {
			t.Fatalf("call %d: got %v, want upstream error", i, err)
		}
		if cb.State() != StateClosed {
			t.Fatalf("call %d: breaker opened early, state %v", i, cb.State())
		}
	}

	if err := cb.Execute(ctx, failingCall); !errors.Is(err, errUpstream) {
		t.Fatalf("5th call: got %v, want upstream error", err)
	}
	if cb.State() != StateOpen {
		t.Fatalf("after 5 failures: state %v, want OPEN", cb.State())
	}

	// Rejected without touching the call.
	called := false
	err := cb.Execute(ctx, func(ctx context.Context) error {
		called = true
		return nil
	})
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("open breaker: got %v, want ErrCircuitOpen", err)
	}
	if called {
		t.Fatal("open breaker still invoked the call")
	}
}

func TestBreakerSuccessResetsFailureCount(t *testing.T) {
	cb := NewCircuitBreaker(3, 2, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_ = cb.Execute(ctx, failingCall)
	}
	if err := cb.Execute(ctx, okCall); err != nil {
		t.Fatalf("success call: %v", err)
	}
	for i := 0; i < 2; i++ {
		_ = cb.Execute(ctx, failingCall)
	}
	if cb.State() != StateClosed {
		t.Fatalf("state %v, want CLOSED: success should reset the count", cb.State())
	}
}

func TestBreakerHalfOpenRecovery(t *testing.T) {
	cb := NewCircuitBreaker(1, 2, 10*time.Millisecond)
	ctx := context.Background()

	_ = cb.Execute(ctx, failingCall)
	if cb.State() != StateOpen {
		t.Fatalf("state %v, want OPEN", cb.State())
	}

	time.Sleep(20 * time.Millisecond)

	if err := cb.Execute(ctx, okCall); err != nil {
		t.Fatalf("probe call: %v", err)
	}
	if cb.State() != StateHalfOpen {
		t.Fatalf("after 1 probe success: state %v, want HALF_OPEN", cb.State())
	}

	if err := cb.Execute(ctx, okCall); err != nil {
		t.Fatalf("second probe call: %v", err)
	}
	if cb.State() != StateClosed {
		t.Fatalf("after 2 probe successes: state %v, want CLOSED", cb.State())
	}
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker(1, 2, 10*time.Millisecond)
	ctx := context.Background()

	_ = cb.Execute(ctx, failingCall)
	time.Sleep(20 * time.Millisecond)

	if err := cb.Execute(ctx, failingCall); !errors.Is(err, errUpstream) {
		t.Fatalf("probe call: got %v, want upstream error", err)
	}
	if cb.State() != StateOpen {
		t.Fatalf("after probe failure: state %v, want OPEN", cb.State())
	}
	if err := cb.Execute(ctx, okCall); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("reopened breaker: got %v, want ErrCircuitOpen", err)
	}
}
