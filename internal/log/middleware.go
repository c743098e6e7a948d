package log

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"salarycalc/internal/core"
)

type contextKey string

const loggerContextKey contextKey = "logger"

// Middleware stores a request-scoped logger in the request context. The
// logger carries the request ID returned by requestID, when there is one.
func Middleware(logger *Logger, requestID func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scoped := logger
			if requestID != nil {
				if id := requestID(r); id != "" {
					scoped = logger.With(FieldRequestID, id)
				}
			}
			next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), scoped)))
		})
	}
}

func NewContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, logger)
}

// FromContext returns the logger stored by Middleware, or one wrapping the
// slog default.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(loggerContextKey).(*Logger); ok {
		return logger
	}
	return &Logger{Logger: slog.Default(), component: ComponentApp}
}

// StructuredLogger emits the domain-level events shared by the server and
// the worker.
type StructuredLogger struct {
	logger *Logger
}

func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{logger: logger}
}

// LogQuery records a query layer call and how many entries it matched.
func (sl *StructuredLogger) LogQuery(ctx context.Context, op string, filter core.Filter, matched int, elapsed time.Duration) {
	fields := NewFields().
		WithOperation(op).
		WithFilter(filter).
		WithEntryCount(matched)
	fields[FieldDuration] = elapsed.Milliseconds()

	sl.logger.WithComponent(ComponentQuery).DebugContext(ctx, "Salary query served", fields.ToSlice()...)
}

func (sl *StructuredLogger) LogExportQueued(ctx context.Context, id string, filter core.Filter, matched int) {
	fields := NewFields().
		WithOperation(OpExport).
		WithFilter(filter).
		WithEntryCount(matched)
	fields[FieldExportID] = id

	sl.logger.WithComponent(ComponentExport).InfoContext(ctx, "Export queued", fields.ToSlice()...)
}

func (sl *StructuredLogger) LogExportCompleted(ctx context.Context, id, ref string, rows int) {
	fields := NewFields().
		WithOperation(OpExport).
		WithEntryCount(rows)
	fields[FieldExportID] = id
	fields[FieldExportRef] = ref

	sl.logger.WithComponent(ComponentExport).InfoContext(ctx, "Export completed", fields.ToSlice()...)
}

func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, component, operation string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	fields.WithError(err).WithOperation(operation)

	sl.logger.WithComponent(component).ErrorContext(ctx, msg, fields.ToSlice()...)
}
