package botapi

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"
	"time"
)

type fakeNetError struct {
	timeout bool
}

func (e *fakeNetError) Error() string   { return "fake net error" }
func (e *fakeNetError) Timeout() bool   { return e.timeout }
func (e *fakeNetError) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
		category  string
		wait      time.Duration
	}{
		{
			name:      "circuit open",
			err:       ErrCircuitOpen,
			retryable: false,
			category:  CategoryCircuitBreaker,
		},
		{
			name:      "wrapped circuit open",
			err:       fmt.Errorf("call failed: %w", ErrCircuitOpen),
			retryable: false,
			category:  CategoryCircuitBreaker,
		},
		{
			name:      "rate limit without header",
			err:       &APIError{StatusCode: 429},
			retryable: true,
			category:  CategoryRateLimit,
			wait:      60 * time.Second,
		},
		{
			name:      "rate limit with retry-after",
			err:       &APIError{StatusCode: 429, RetryAfter: 5 * time.Second},
			retryable: true,
			category:  CategoryRateLimit,
			wait:      5 * time.Second,
		},
		{
			name:      "server error",
			err:       &APIError{StatusCode: 503},
			retryable: true,
			category:  CategoryServerError,
		},
		{
			name:      "not found",
			err:       &APIError{StatusCode: 404},
			retryable: false,
			category:  CategoryClientError,
		},
		{
			name:      "unauthorized",
			err:       &APIError{StatusCode: 401},
			retryable: false,
			category:  CategoryClientError,
		},
		{
			name:      "deadline exceeded",
			err:       context.DeadlineExceeded,
			retryable: true,
			category:  CategoryTimeout,
		},
		{
			name:      "net timeout",
			err:       &fakeNetError{timeout: true},
			retryable: true,
			category:  CategoryTimeout,
		},
		{
			name:      "net failure",
			err:       &fakeNetError{},
			retryable: true,
			category:  CategoryNetwork,
		},
		{
			name:      "url error",
			err:       &url.Error{Op: "Get", URL: "https://example.com", Err: errors.New("connection refused")},
			retryable: true,
			category:  CategoryNetwork,
		},
		{
			name:      "unknown",
			err:       errors.New("something odd"),
			retryable: true,
			category:  CategoryUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cls := Classify(tt.err)
			if cls.Retryable != tt.retryable {
				t.Errorf("Retryable = %v, want %v", cls.Retryable, tt.retryable)
			}
			if cls.Category != tt.category {
				t.Errorf("Category = %q, want %q", cls.Category, tt.category)
			}
			if cls.Wait != tt.wait {
				t.Errorf("Wait = %v, want %v", cls.Wait, tt.wait)
			}
		})
	}
}
