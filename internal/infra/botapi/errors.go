package botapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"
)

var (
	// ErrCircuitOpen is returned when the breaker rejects a call
	// without attempting the network.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrMissingAPIKey is returned at construction when provider
	// credentials are absent. Fatal, never retried.
	ErrMissingAPIKey = errors.New("missing API key")
)

// APIError is a non-2xx provider response.
type APIError struct {
	StatusCode int
	Body       string
	// RetryAfter is the parsed Retry-After header, zero when absent.
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: http %d: %s", e.StatusCode, e.Body)
}

// Error categories reported by Classify.
const (
	CategoryTimeout        = "timeout"
	CategoryNetwork        = "network"
	CategoryRateLimit      = "rate_limit"
	CategoryServerError    = "server_error"
	CategoryClientError    = "client_error"
	CategoryCircuitBreaker = "circuit_breaker"
	CategoryUnknown        = "unknown"
)

// rateLimitWait is the mandatory wait after a 429 when the provider
// sends no Retry-After header. Overrides exponential backoff.
const rateLimitWait = 60 * time.Second

// Classification is the retry decision for a failure.
type Classification struct {
	Retryable bool
	Category  string
	// Wait, when non-zero, replaces the backoff delay before the
	// next attempt.
	Wait time.Duration
}

// Classify maps a failure to a retry decision. Unrecognized errors
// default to retryable.
func Classify(err error) Classification {
	if errors.Is(err, ErrCircuitOpen) {
		return Classification{Retryable: false, Category: CategoryCircuitBreaker}
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == 429:
			wait := apiErr.RetryAfter
			if wait == 0 {
				wait = rateLimitWait
			}
			return Classification{Retryable: true, Category: CategoryRateLimit, Wait: wait}
		case apiErr.StatusCode >= 500:
			return Classification{Retryable: true, Category: CategoryServerError}
		default:
			return Classification{Retryable: false, Category: CategoryClientError}
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return Classification{Retryable: true, Category: CategoryTimeout}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return Classification{Retryable: true, Category: CategoryTimeout}
		}
		return Classification{Retryable: true, Category: CategoryNetwork}
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return Classification{Retryable: true, Category: CategoryNetwork}
	}

	return Classification{Retryable: true, Category: CategoryUnknown}
}
