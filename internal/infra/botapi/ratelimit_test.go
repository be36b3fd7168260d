package botapi

import (
	"context"
	"testing"
	"time"
)

func TestRateLimiterEnforcesMinDelay(t *testing.T) {
	rl := NewRateLimiter(20 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := rl.Throttle(ctx); err != nil {
			t.Fatalf("Throttle %d: %v", i, err)
		}
	}
	// First call passes on the initial token, the next two wait.
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("3 calls took %v, want >= 40ms", elapsed)
	}
}

func TestRateLimiterZeroDelayNeverBlocks(t *testing.T) {
	rl := NewRateLimiter(0)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 100; i++ {
		if err := rl.Throttle(ctx); err != nil {
			t.Fatalf("Throttle %d: %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("100 unlimited calls took %v", elapsed)
	}
}

func TestRateLimiterRespectsContext(t *testing.T) {
	rl := NewRateLimiter(time.Minute)
	ctx := context.Background()

	// Burn the initial token.
	if err := rl.Throttle(ctx); err != nil {
		t.Fatalf("first Throttle: %v", err)
	}

	cancelCtx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	if err := rl.Throttle(cancelCtx); err == nil {
		t.Fatal("Throttle returned nil, want context error")
	}
}
