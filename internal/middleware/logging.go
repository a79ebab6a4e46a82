package middleware

import (
	"net/http"
	"time"

	"github.com/chybatronik/goUsersTable/internal/logging"
	"github.com/chybatronik/goUsersTable/internal/validation"
)

const (
	healthPath = "/health"

	// MaxLoggedQueryLength caps the query string copied into request logs
	MaxLoggedQueryLength = 256
)

// LoggingMiddleware logs one structured line per request. The query string is
// kept because it carries the whole table state (search, page, sort).
type LoggingMiddleware struct {
	next   http.Handler
	logger *logging.Logger
}

// NewLoggingMiddleware creates a new structured logging middleware
func NewLoggingMiddleware(logger *logging.Logger, next http.Handler) *LoggingMiddleware {
	return &LoggingMiddleware{
		next:   next,
		logger: logger,
	}
}

func (lm *LoggingMiddleware) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	wrapped := NewResponseWriter(w)
	lm.next.ServeHTTP(wrapped, r)

	status := wrapped.StatusCode()
	latency := time.Since(start).Milliseconds()
	reqID := GetRequestID(r.Context())

	// healthy /health polls log at debug only
	if r.URL.Path == healthPath && status < http.StatusBadRequest {
		lm.logger.WithRequestID(reqID).
			WithHTTPRequest(r.Method, r.URL.Path, status, latency).
			Debug("health check request")
		return
	}

	args := []any{logging.FieldBytes, wrapped.BytesWritten()}
	if r.URL.RawQuery != "" {
		args = append(args, logging.FieldQuery, validation.TruncateString(r.URL.RawQuery, MaxLoggedQueryLength))
	}
	lm.logger.Request(reqID, r.Method, r.URL.Path, status, latency, args...)
}
