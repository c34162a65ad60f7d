// Package middleware provides HTTP middleware for the API layer.
package middleware

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/user-api/internal/api/shared"
	"github.com/phrazzld/user-api/internal/platform/logger"
)

// Trace attaches a trace ID and a request-scoped logger to every request's
// context. Handlers and stores retrieve the logger with logger.FromContext
// so all log lines of one request share the trace ID.
func Trace(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := shared.SetTraceID(r.Context())

			reqLogger := base.With(
				slog.String("trace_id", shared.GetTraceID(ctx)),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
			)
			ctx = logger.WithContext(ctx, reqLogger)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
