package infrastructure

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// GenerateTraceID creates a new unique trace ID using UUID v4
func GenerateTraceID() string {
	return uuid.New().String()
}

// EnsureTraceID returns ctx carrying a trace ID, generating one if needed.
// Commands call it once so every record of a run shares the same ID.
func EnsureTraceID(ctx context.Context) context.Context {
	if GetTraceID(ctx) == "" {
		return WithTraceID(ctx, GenerateTraceID())
	}
	return ctx
}

// LoggerWithContext scopes base to the trace ID in ctx. Loggers built by this
// package already add it on every record and are returned as is. A nil base
// falls back to the global logger.
func LoggerWithContext(ctx context.Context, base *slog.Logger) *slog.Logger {
	if base == nil {
		base = GetLogger()
	}
	if _, ok := base.Handler().(*traceHandler); ok {
		return base
	}
	if traceID := GetTraceID(ctx); traceID != "" {
		return base.With(slog.String("trace_id", traceID))
	}
	return base
}

// WithComponent creates a logger with a component field
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = GetLogger()
	}
	return logger.With(slog.String("component", component))
}
