package log

import (
	"context"
	"log/slog"
	"net/http"
)

type contextKey string

const loggerContextKey contextKey = "logger"

// NewContext returns ctx carrying logger.
func NewContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, logger)
}

// FromContext extracts a logger from the context, falling back to the
// process default.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(loggerContextKey).(*Logger); ok {
		return logger
	}
	return &Logger{Logger: slog.Default(), component: "unknown"}
}

// Middleware adds logger to every request context.
func Middleware(logger *Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), logger)))
		})
	}
}

// StructuredLogger provides the recurring log lines of the ledger.
type StructuredLogger struct {
	logger *Logger
}

func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{logger: logger}
}

// LogMutation records a successful ledger mutation.
func (sl *StructuredLogger) LogMutation(ctx context.Context, op, entity string, id int64) {
	fields := NewFields().
		WithOperation(op).
		WithRecord(entity, id)
	sl.logger.InfoContext(ctx, "Ledger updated", fields.ToSlice()...)
}

// LogRejected records an input that failed validation.
func (sl *StructuredLogger) LogRejected(ctx context.Context, op, entity string, err error) {
	fields := NewFields().
		WithOperation(op).
		WithRecord(entity, 0).
		WithError(err).
		WithErrorType(ErrorTypeValidation).
		WithComponent(sl.logger.Component())
	sl.logger.Logger.WarnContext(ctx, "Ledger input rejected", fields.ToSlice()...)
}

// LogError logs a failure of the given error type during operation.
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, operation, errorType string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	all := fields.
		WithError(err).
		WithErrorType(errorType).
		WithOperation(operation)
	sl.logger.ErrorContext(ctx, msg, all.ToSlice()...)
}
