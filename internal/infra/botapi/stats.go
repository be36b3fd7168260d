package botapi

import (
	"sync"
	"time"
)

// Stats is a snapshot of client counters for the monitoring surface.
type Stats struct {
	Requests        uint64        `json:"requests"`
	Successes       uint64        `json:"successes"`
	Failures        uint64        `json:"failures"`
	Retries         uint64        `json:"retries"`
	RetriedRequests uint64        `json:"retried_requests"`
	Timeouts        uint64        `json:"timeouts"`
	RateLimitHits   uint64        `json:"rate_limit_hits"`
	CircuitTrips    uint64        `json:"circuit_trips"`
	AvgResponseTime time.Duration `json:"avg_response_time_ms"`
}

// StatsTracker is pure bookkeeping for one provider client. Counters
// only increase except via Reset.
type StatsTracker struct {
	mu              sync.Mutex
	requests        uint64
	successes       uint64
	failures        uint64
	retries         uint64
	retriedRequests uint64
	timeouts        uint64
	rateLimitHits   uint64
	circuitTrips    uint64
	totalLatency    time.Duration
	latencySamples  uint64
}

func NewStatsTracker() *StatsTracker {
	return &StatsTracker{}
}

func (st *StatsTracker) RecordRequest() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.requests++
}

func (st *StatsTracker) RecordSuccess(latency time.Duration) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.successes++
	st.totalLatency += latency
	st.latencySamples++
}

func (st *StatsTracker) RecordFailure() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.failures++
}

// RecordRetry counts one retry attempt.
func (st *StatsTracker) RecordRetry() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.retries++
}

// MarkRetried counts a request as retried, at most once per call.
func (st *StatsTracker) MarkRetried() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.retriedRequests++
}

func (st *StatsTracker) RecordTimeout() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.timeouts++
}

func (st *StatsTracker) RecordRateLimitHit() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.rateLimitHits++
}

func (st *StatsTracker) RecordCircuitTrip() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.circuitTrips++
}

// Snapshot returns current counters. Average latency is the
// arithmetic mean over all recorded successful calls.
func (st *StatsTracker) Snapshot() Stats {
	st.mu.Lock()
	defer st.mu.Unlock()

	stats := Stats{
		Requests:        st.requests,
		Successes:       st.successes,
		Failures:        st.failures,
		Retries:         st.retries,
		RetriedRequests: st.retriedRequests,
		Timeouts:        st.timeouts,
		RateLimitHits:   st.rateLimitHits,
		CircuitTrips:    st.circuitTrips,
	}
	if st.latencySamples > 0 {
		stats.AvgResponseTime = st.totalLatency / time.Duration(st.latencySamples)
	}
	return stats
}

// Reset zeroes all counters. Operator action only.
func (st *StatsTracker) Reset() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.requests = 0
	st.successes = 0
	st.failures = 0
	st.retries = 0
	st.retriedRequests = 0
	st.timeouts = 0
	st.rateLimitHits = 0
	st.circuitTrips = 0
	st.totalLatency = 0
	st.latencySamples = 0
}
