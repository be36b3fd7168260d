package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/herbarium/florasync/internal/infra/botapi"
)

// Provider exposes the runtime status of an upstream client.
type Provider interface {
	Name() string
	Stats() botapi.Stats
	CircuitState() botapi.CircuitState
	ResetStats()
}

// StoreChecker reports whether the backing store is reachable.
type StoreChecker interface {
	Health(ctx context.Context) error
}

// ProviderStatus is the /stats entry for a single provider.
type ProviderStatus struct {
	Circuit string       `json:"circuit"`
	Stats   botapi.Stats `json:"stats"`
}

// Server provides HTTP endpoints for health monitoring.
type Server struct {
	providers []Provider
	store     StoreChecker
	server    *http.Server
}

// NewServer creates a new health server. store may be nil when running
// without a database.
func NewServer(providers []Provider, store StoreChecker, port int) *Server {
	mux := http.NewServeMux()
	s := &Server{
		providers: providers,
		store:     store,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		},
	}

	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/stats", s.handleStats)
	mux.HandleFunc("/stats/reset", s.handleStatsReset)
	mux.Handle("/metrics", promhttp.Handler())

	return s
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	code := http.StatusOK

	if s.store != nil {
		if err := s.store.Health(r.Context()); err != nil {
			status = "critical"
			code = http.StatusServiceUnavailable
		}
	}

	// Open breakers degrade but do not fail the check: the service
	// keeps serving stored data while a provider is down.
	if code == http.StatusOK {
		for _, p := range s.providers {
			if p.CircuitState() == botapi.StateOpen {
				status = "degraded"
				break
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"status": status})
}

// handleStatsReset zeroes every provider's counters. Operator action,
// POST only.
func (s *Server) handleStatsReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	for _, p := range s.providers {
		p.ResetStats()
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "reset"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	report := make(map[string]ProviderStatus, len(s.providers))
	for _, p := range s.providers {
		report[p.Name()] = ProviderStatus{
			Circuit: p.CircuitState().String(),
			Stats:   p.Stats(),
		}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}
