package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// APICallsTotal tracks outbound provider API calls
	APICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "florasync_api_calls_total",
			Help: "Total number of provider API calls",
		},
		[]string{"provider", "resource"},
	)

	// APIErrorsTotal tracks provider API failures by classifier category
	APIErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "florasync_api_errors_total",
			Help: "Total number of provider API errors",
		},
		[]string{"provider", "category"},
	)

	// APILatency tracks provider API call latency
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "florasync_api_latency_seconds",
			Help:    "Provider API call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	// CircuitState tracks breaker state per provider (0=closed, 1=half-open, 2=open)
	CircuitState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "florasync_circuit_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"provider"},
	)

	// CacheHitsTotal tracks provider response cache hits
	CacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "florasync_cache_hits_total",
			Help: "Total number of provider response cache hits",
		},
		[]string{"provider"},
	)

	// HerbsCreated tracks new draft records created by ingestion
	HerbsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "florasync_herbs_created_total",
			Help: "Total number of draft herb records created",
		},
	)

	// HerbsMerged tracks merges of incoming data into existing records
	HerbsMerged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "florasync_herbs_merged_total",
			Help: "Total number of merges into existing herb records",
		},
	)

	// DuplicatesDeleted tracks records folded away during reconciliation
	DuplicatesDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "florasync_duplicates_deleted_total",
			Help: "Total number of duplicate herb records deleted",
		},
	)

	// DBConnectionPoolUsage tracks database pool utilization
	DBConnectionPoolUsage = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "florasync_db_pool_usage_percent",
			Help: "Database connection pool usage percentage",
		},
	)
)
