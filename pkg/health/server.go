// Package health exposes liveness, readiness, status, and metrics endpoints.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/voxwallet-hq/voxwallet/pkg/circuitbreaker"
	"github.com/voxwallet-hq/voxwallet/pkg/logger"
)

// Probe checks one backend dependency for readiness.
type Probe func(ctx context.Context) error

// Server represents the health check HTTP server.
type Server struct {
	port          string
	probes        map[string]Probe
	breakers      map[string]*circuitbreaker.CircuitBreaker
	metricsAPIKey string
	logger        logger.Logger
}

// NewServer creates a new health check server. Probes are named backend
// checks run by /ready; breakers are keyed by network name for /status and
// /circuit/reset.
func NewServer(port string, probes map[string]Probe, breakers map[string]*circuitbreaker.CircuitBreaker, log logger.Logger) *Server {
	if log == nil {
		log = &logger.EmptyLogger{}
	}
	return &Server{
		port:          port,
		probes:        probes,
		breakers:      breakers,
		metricsAPIKey: os.Getenv("METRICS_API_KEY"),
		logger:        log,
	}
}

// metricsAuthMiddleware is a middleware that checks for a valid API key
func (s *Server) metricsAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Skip auth if no API key is configured
		if s.metricsAPIKey == "" {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Missing Authorization header", http.StatusUnauthorized)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			http.Error(w, "Invalid Authorization header format", http.StatusUnauthorized)
			return
		}

		if parts[1] != s.metricsAPIKey {
			http.Error(w, "Invalid API key", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Start starts the health check server. It blocks until the listener fails.
func (s *Server) Start() {
	s.logger.Info("starting health and metrics server on port %s", s.port)
	if err := http.ListenAndServe(":"+s.port, s.Handler()); err != nil {
		s.logger.Error("health server error: %v", err)
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Readiness runs every backend probe with a short deadline.
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		for name, probe := range s.probes {
			if err := probe(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(fmt.Sprintf("%s not ready: %v", name, err)))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("Ready"))
	})

	// Circuit breaker status per network
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		status := make(map[string]interface{})
		for name, cb := range s.breakers {
			circuitStatus := "closed"
			if cb.IsOpen() {
				circuitStatus = "open"
			}
			failures, lastFailure, _, threshold := cb.GetState()
			networkStatus := map[string]interface{}{
				"circuit":   circuitStatus,
				"failures":  failures,
				"threshold": threshold,
			}
			if !lastFailure.IsZero() {
				networkStatus["last_failure"] = lastFailure.Format(time.RFC3339)
			}
			status[name] = networkStatus
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(status); err != nil {
			s.logger.Error("failed to encode status JSON: %v", err)
		}
	})

	// Circuit breaker admin control endpoint
	mux.HandleFunc("/circuit/reset", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		network := r.URL.Query().Get("network")
		if network == "" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte("Missing network parameter"))
			return
		}

		cb, ok := s.breakers[network]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(fmt.Sprintf("No circuit breaker for network %s", network)))
			return
		}

		cb.Reset()
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(fmt.Sprintf("Circuit breaker for network %s reset", network)))
	})

	// Expose Prometheus metrics with API key authentication
	mux.Handle("/metrics", s.metricsAuthMiddleware(promhttp.Handler()))

	return mux
}
