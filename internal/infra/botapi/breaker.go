package botapi

import (
	"context"
	"sync"
	"time"
)

// CircuitState represents the breaker state. Numeric values double as
// the exported gauge value (0=closed, 1=half-open, 2=open).
type CircuitState int

const (
	StateClosed CircuitState = iota
	StateHalfOpen
	StateOpen
)

func (s CircuitState) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateHalfOpen:
		return "HALF_OPEN"
	case StateOpen:
		return "OPEN"
	}
	return "UNKNOWN"
}

// CircuitBreaker isolates a failing provider. State is per client
// instance and resets on restart.
//
// CLOSED -> OPEN after failureThreshold consecutive observations fail.
// OPEN -> HALF_OPEN on the next call once the cooldown has elapsed;
// calls before that are rejected with ErrCircuitOpen without touching
// the network. HALF_OPEN -> CLOSED after successThreshold consecutive
// successes, back to OPEN on any failure.
type CircuitBreaker struct {
	mu               sync.Mutex
	state            CircuitState
	failureCount     int
	successCount     int
	nextRetryAt      time.Time
	failureThreshold int
	successThreshold int
	cooldown         time.Duration
}

// NewCircuitBreaker creates a closed breaker. Zero arguments fall back
// to the defaults (5 failures, 2 successes, 60s cooldown).
func NewCircuitBreaker(failureThreshold, successThreshold int, cooldown time.Duration) *CircuitBreaker {
	if failureThreshold <= 0 {
		failureThreshold = 5
	}
	if successThreshold <= 0 {
		successThreshold = 2
	}
	if cooldown <= 0 {
		cooldown = 60 * time.Second
	}
	return &CircuitBreaker{
		state:            StateClosed,
		failureThreshold: failureThreshold,
		successThreshold: successThreshold,
		cooldown:         cooldown,
	}
}

// Execute runs fn under the breaker. Retries happen inside fn, so the
// breaker observes one outcome per external call. The original error
// is returned unchanged on failure.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func(context.Context) error) error {
	if err := cb.allow(); err != nil {
		return err
	}

	err := fn(ctx)
	cb.observe(err == nil)
	return err
}

// State returns the current breaker state for monitoring.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *CircuitBreaker) allow() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateOpen {
		if time.Now().Before(cb.nextRetryAt) {
			return ErrCircuitOpen
		}
		cb.state = StateHalfOpen
		cb.successCount = 0
	}
	return nil
}

func (cb *CircuitBreaker) observe(success bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		if success {
			cb.failureCount = 0
			return
		}
		cb.failureCount++
		if cb.failureCount >= cb.failureThreshold {
			cb.trip()
		}
	case StateHalfOpen:
		if success {
			cb.successCount++
			if cb.successCount >= cb.successThreshold {
				cb.state = StateClosed
				cb.failureCount = 0
			}
			return
		}
		cb.failureCount++
		cb.trip()
	}
}

func (cb *CircuitBreaker) trip() {
	cb.state = StateOpen
	cb.nextRetryAt = time.Now().Add(cb.cooldown)
}
