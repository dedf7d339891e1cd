// Package trace tags every HTTP request with a request ID and logs it.
package trace

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	applog "expensebot/internal/log"
)

// ContextKey type for context keys
type ContextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey ContextKey = "request_id"
)

// Metrics tracks request counts and latency.
type Metrics struct {
	TotalRequests       int64
	AverageResponseTime int64 // microseconds
}

// Middleware handles request tracing and logging
type Middleware struct {
	metrics Metrics
}

// NewMiddleware creates a new trace middleware
func NewMiddleware() *Middleware {
	return &Middleware{}
}

// Middleware returns HTTP middleware for request tracing
func (m *Middleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := uuid.NewString()
		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
		r = r.WithContext(ctx)

		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r)

		elapsed := time.Since(start)
		total := atomic.AddInt64(&m.metrics.TotalRequests, 1)
		// Running average; precision loss on rollover is acceptable.
		prev := atomic.LoadInt64(&m.metrics.AverageResponseTime)
		atomic.StoreInt64(&m.metrics.AverageResponseTime,
			prev+(elapsed.Microseconds()-prev)/total)

		slog.InfoContext(ctx, "HTTP request completed",
			applog.FieldRequestID, requestID,
			"method", r.Method,
			"path", r.URL.Path,
			applog.FieldDuration, elapsed.Milliseconds())
	})
}

// RequestIDFromContext returns the request ID, or "" when untraced.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// Snapshot returns the current metric values.
func (m *Middleware) Snapshot() Metrics {
	return Metrics{
		TotalRequests:       atomic.LoadInt64(&m.metrics.TotalRequests),
		AverageResponseTime: atomic.LoadInt64(&m.metrics.AverageResponseTime),
	}
}
