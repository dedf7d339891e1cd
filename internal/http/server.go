// Package http serves the bot's operational endpoints: liveness,
// readiness and a small status document. The bot itself talks to
// Telegram over long polling; nothing user-facing lives here.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"expensebot/internal/middleware/trace"
)

// ReadinessCheck probes a dependency, typically the store.
type ReadinessCheck func(ctx context.Context) error

// Server exposes /health and /ready.
type Server struct {
	backend   string
	startedAt time.Time
	ready     ReadinessCheck
	tracer    *trace.Middleware
}

// NewServer builds the ops HTTP server listening on addr.
func NewServer(addr, backend string, ready ReadinessCheck) *http.Server {
	s := &Server{
		backend:   backend,
		startedAt: time.Now(),
		ready:     ready,
		tracer:    trace.NewMiddleware(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ready", s.handleReady)

	return &http.Server{
		Addr:         addr,
		Handler:      s.tracer.Middleware(mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

type healthResponse struct {
	Status        string `json:"status"`
	Backend       string `json:"backend"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	TotalRequests int64  `json:"total_requests"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, healthResponse{
		Status:        "ok",
		Backend:       s.backend,
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
		TotalRequests: s.tracer.Snapshot().TotalRequests,
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if s.ready != nil {
		if err := s.ready(ctx); err != nil {
			slog.ErrorContext(ctx, "Readiness check failed",
				"request_id", trace.RequestIDFromContext(r.Context()),
				"error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
				"error":  err.Error(),
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
