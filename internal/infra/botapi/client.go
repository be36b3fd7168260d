// Package botapi implements resilient clients for third-party
// plant-data providers. Every outbound call is spaced by a rate
// limiter, guarded by a circuit breaker and retried with backoff; all
// failure state is owned by the client instance, nothing is global.
package botapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/herbarium/florasync/internal/ingest/metrics"
)

// Config holds settings for a single provider client.
type Config struct {
	BaseURL          string        `yaml:"base_url"`
	APIKey           string        `yaml:"api_key"`
	MinDelay         time.Duration `yaml:"min_delay"`
	Timeout          time.Duration `yaml:"timeout"`
	MaxRetries       int           `yaml:"max_retries"`
	RetryBaseDelay   time.Duration `yaml:"retry_base_delay"`
	FailureThreshold int           `yaml:"failure_threshold"`
	SuccessThreshold int           `yaml:"success_threshold"`
	Cooldown         time.Duration `yaml:"cooldown"`
	CacheTTL         time.Duration `yaml:"cache_ttl"`
}

// Cache is the external key-value cache collaborator.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// Client is the shared resilient fetch path for one provider.
type Client struct {
	name       string
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration

	limiter *RateLimiter
	breaker *CircuitBreaker
	retrier *RetryExecutor
	stats   *StatsTracker

	cache    Cache
	cacheTTL time.Duration

	log *slog.Logger
}

func newClient(name string, cfg Config, cache Cache, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	log = log.With("provider", name)

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	stats := NewStatsTracker()

	return &Client{
		name:    name,
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		timeout:  timeout,
		limiter:  NewRateLimiter(cfg.MinDelay),
		breaker:  NewCircuitBreaker(cfg.FailureThreshold, cfg.SuccessThreshold, cfg.Cooldown),
		retrier:  NewRetryExecutor(cfg.MaxRetries, cfg.RetryBaseDelay, stats, log),
		stats:    stats,
		cache:    cache,
		cacheTTL: cfg.CacheTTL,
		log:      log,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return c.name
}

// Stats returns a counter snapshot for the monitoring surface.
func (c *Client) Stats() Stats {
	return c.stats.Snapshot()
}

// CircuitState returns the current breaker state.
func (c *Client) CircuitState() CircuitState {
	return c.breaker.State()
}

// ResetStats zeroes the client counters.
func (c *Client) ResetStats() {
	c.stats.Reset()
}

// fetch performs one resilient GET and returns the response body.
// Retries run inside the breaker, so the breaker observes the final
// outcome of each external call.
func (c *Client) fetch(ctx context.Context, resource string, query url.Values) ([]byte, error) {
	c.stats.RecordRequest()
	metrics.APICallsTotal.WithLabelValues(c.name, resource).Inc()

	if err := c.limiter.Throttle(ctx); err != nil {
		c.stats.RecordFailure()
		return nil, err
	}

	start := time.Now()
	var body []byte
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.retrier.Do(ctx, func(ctx context.Context) error {
			var callErr error
			body, callErr = c.doGet(ctx, resource, query)
			return callErr
		})
	})
	metrics.CircuitState.WithLabelValues(c.name).Set(float64(c.breaker.State()))

	if err != nil {
		cls := Classify(err)
		c.stats.RecordFailure()
		if cls.Category == CategoryCircuitBreaker {
			c.stats.RecordCircuitTrip()
		}
		metrics.APIErrorsTotal.WithLabelValues(c.name, cls.Category).Inc()
		c.log.Warn("provider call failed",
			"resource", resource,
			"category", cls.Category,
			"error", err,
		)
		return nil, err
	}

	latency := time.Since(start)
	c.stats.RecordSuccess(latency)
	metrics.APILatency.WithLabelValues(c.name).Observe(latency.Seconds())
	return body, nil
}

// getJSON fetches a resource and decodes the response body.
func (c *Client) getJSON(ctx context.Context, resource string, query url.Values, out any) error {
	body, err := c.fetch(ctx, resource, query)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse %s response: %w", c.name, err)
	}
	return nil
}

// getJSONCached checks the cache before the network path and
// populates it on a miss. Falls through to getJSON when no cache is
// configured. Auth params are excluded from the cache key by callers.
func (c *Client) getJSONCached(ctx context.Context, resource string, query, keyParams url.Values, out any) error {
	if c.cache == nil {
		return c.getJSON(ctx, resource, query, out)
	}

	key := cacheKey(c.name, resource, keyParams)
	cached, hit, err := c.cache.Get(ctx, key)
	if err != nil {
		c.log.Warn("cache read failed", "key", key, "error", err)
	} else if hit {
		metrics.CacheHitsTotal.WithLabelValues(c.name).Inc()
		if err := json.Unmarshal([]byte(cached), out); err == nil {
			return nil
		}
		// Unreadable cache entry, fall through to the network.
		c.log.Warn("discarding corrupt cache entry", "key", key)
	}

	body, err := c.fetch(ctx, resource, query)
	if err != nil {
		return err
	}
	if err := c.cache.Set(ctx, key, string(body), c.cacheTTL); err != nil {
		c.log.Warn("cache write failed", "key", key, "error", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse %s response: %w", c.name, err)
	}
	return nil
}

func (c *Client) doGet(ctx context.Context, resource string, query url.Values) ([]byte, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := c.baseURL + resource
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(callCtx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", c.name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: truncate(string(body), 200)}
		if resp.StatusCode == 429 {
			if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
				apiErr.RetryAfter = time.Duration(secs) * time.Second
			}
		}
		return nil, apiErr
	}

	return body, nil
}

// cacheKey builds "provider:resource:params" keys.
func cacheKey(provider, resource string, params url.Values) string {
	return fmt.Sprintf("%s:%s:%s", provider, resource, params.Encode())
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
