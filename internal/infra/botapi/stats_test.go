package botapi

import (
	"sync"
	"testing"
	"time"
)

func TestStatsSnapshot(t *testing.T) {
	st := NewStatsTracker()

	st.RecordRequest()
	st.RecordRequest()
	st.RecordSuccess(100 * time.Millisecond)
	st.RecordSuccess(300 * time.Millisecond)
	st.RecordFailure()
	st.MarkRetried()
	st.RecordRetry()
	st.RecordRetry()
	st.RecordTimeout()
	st.RecordRateLimitHit()
	st.RecordCircuitTrip()

	snap := st.Snapshot()
	if snap.Requests != 2 {
		t.Errorf("Requests = %d, want 2", snap.Requests)
	}
	if snap.Successes != 2 {
		t.Errorf("Successes = %d, want 2", snap.Successes)
	}
	if snap.Failures != 1 {
		t.Errorf("Failures = %d, want 1", snap.Failures)
	}
	if snap.Retries != 2 {
		t.Errorf("Retries = %d, want 2", snap.Retries)
	}
	if snap.RetriedRequests != 1 {
		t.Errorf("RetriedRequests = %d, want 1", snap.RetriedRequests)
	}
	if snap.Timeouts != 1 || snap.RateLimitHits != 1 || snap.CircuitTrips != 1 {
		t.Errorf("timeouts/ratelimits/trips = %d/%d/%d, want 1/1/1",
			snap.Timeouts, snap.RateLimitHits, snap.CircuitTrips)
	}
	if snap.AvgResponseTime != 200*time.Millisecond {
		t.Errorf("AvgResponseTime = %v, want 200ms", snap.AvgResponseTime)
	}
}

func TestStatsReset(t *testing.T) {
	st := NewStatsTracker()
	st.RecordRequest()
	st.RecordSuccess(time.Second)
	st.Reset()

	if snap := st.Snapshot(); snap != (Stats{}) {
		t.Errorf("after reset: %+v, want zero stats", snap)
	}

	// Tracker stays usable after reset.
	st.RecordRequest()
	if snap := st.Snapshot(); snap.Requests != 1 {
		t.Errorf("Requests = %d, want 1", snap.Requests)
	}
}

func TestStatsConcurrentAccess(t *testing.T) {
	st := NewStatsTracker()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				st.RecordRequest()
				st.RecordSuccess(time.Millisecond)
			}
		}()
	}
	wg.Wait()

	snap := st.Snapshot()
	if snap.Requests != 1000 {
		t.Errorf("Requests = %d, want 1000", snap.Requests)
	}
	if snap.Successes != 1000 {
		t.Errorf("Successes = %d, want 1000", snap.Successes)
	}
}
