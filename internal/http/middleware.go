package http

import (
	"context"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// contextKey is a custom type to avoid key collisions in context.
type contextKey string

const (
	requestIDKey contextKey = "requestID"
	refreshKey   contextKey = "forceRefresh"
)

// requestIDMiddleware tags each request with an id, echoed back in the
// X-Request-ID header and attached to the request context for logging.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs one line per request and feeds the request counter.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rec, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = r.URL.Path
		}
		s.Metrics.IncHTTPRequest(route, r.Method, rec.status)
		log.Info("Handled request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
			"requestID", requestIDFromContext(r),
		)
	})
}

// recoveryMiddleware converts a handler panic into a JSON 500 instead of a
// dropped connection.
func recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error("Handler panicked", "panic", rec, "path", r.URL.Path, "stack", string(debug.Stack()))
				respondError(w, http.StatusInternalServerError, "internal_error", "The server hit an unexpected condition.")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// paramsMiddleware handles common query parameters like 'verbose' and 'refresh'.
func paramsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Handle 'verbose' for request-scoped verbose logging.
		if r.URL.Query().Get("verbose") == "true" {
			originalLevel := log.GetLevel()
			log.SetLevel(log.DebugLevel)
			defer log.SetLevel(originalLevel)
		}

		// Handle 'refresh' so any cached read below bypasses fresh entries.
		forceRefresh := r.URL.Query().Get("refresh") == "true"
		ctx := context.WithValue(r.Context(), refreshKey, forceRefresh)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// isRefreshFromContext is a helper to safely retrieve the refresh flag from the request context.
func isRefreshFromContext(r *http.Request) bool {
	refresh, ok := r.Context().Value(refreshKey).(bool)
	return ok && refresh
}

func requestIDFromContext(r *http.Request) string {
	id, _ := r.Context().Value(requestIDKey).(string)
	return id
}
