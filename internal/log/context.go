package log

import (
	"context"
	"log/slog"
)

// ContextKey type for context keys
type ContextKey string

const (
	// LoggerContextKey is the context key for the logger
	LoggerContextKey ContextKey = "logger"
)

// WithContext stores the logger in the context for downstream handlers
func WithContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, LoggerContextKey, logger)
}

// FromContext extracts a logger from the context
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return logger
	}
	// Return default logger if not found
	return &Logger{
		Logger:    slog.Default(),
		component: "unknown",
	}
}

// ForUpdate derives a per-update logger carrying request identity and
// the dispatched command
func ForUpdate(logger *Logger, requestID string, chatID int64, username, command string) *Logger {
	fields := NewFields().
		WithRequestID(requestID).
		WithChat(chatID, username).
		WithCommand(command)
	return logger.With(fields.ToSlice()...)
}
