package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chybatronik/goUsersTable/internal/logging"
)

func serveLogged(t *testing.T, level string, status int, target string) (*httptest.ResponseRecorder, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := logging.New(&buf, level, logging.FormatJSON, "test-service", "1.0.0")

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte("short and stout"))
	})

	req := httptest.NewRequest(http.MethodGet, target, nil)
	req = req.WithContext(SetRequestID(req.Context(), "req-42"))
	w := httptest.NewRecorder()

	NewLoggingMiddleware(logger, next).ServeHTTP(w, req)
	return w, &buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "expected one JSON log line, got %q", buf.String())
	return entry
}

func TestLoggingMiddleware(t *testing.T) {
	w, buf := serveLogged(t, "info", http.StatusTeapot, "/api/users?search=alice&page=2")
	assert.Equal(t, http.StatusTeapot, w.Code)

	entry := decodeLine(t, buf)
	assert.Equal(t, "req-42", entry[logging.FieldRequestID])
	assert.Equal(t, "/api/users", entry[logging.FieldHTTPPath])
	assert.Equal(t, float64(http.StatusTeapot), entry[logging.FieldHTTPStatus])
	assert.Equal(t, "search=alice&page=2", entry[logging.FieldQuery])
	assert.Equal(t, float64(len("short and stout")), entry[logging.FieldBytes])
}

func TestLoggingMiddlewareLevelByStatus(t *testing.T) {
	testCases := []struct {
		status int
		level  string
	}{
		{http.StatusOK, "INFO"},
		{http.StatusBadRequest, "WARN"},
		{http.StatusServiceUnavailable, "ERROR"},
	}

	for _, tc := range testCases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			_, buf := serveLogged(t, "info", tc.status, "/api/users")
			assert.Equal(t, tc.level, decodeLine(t, buf)["level"])
		})
	}
}

func TestLoggingMiddlewareOmitsEmptyQuery(t *testing.T) {
	_, buf := serveLogged(t, "info", http.StatusOK, "/")
	_, ok := decodeLine(t, buf)[logging.FieldQuery]
	assert.False(t, ok)
}

func TestLoggingMiddlewareHealthChecks(t *testing.T) {
	_, buf := serveLogged(t, "info", http.StatusOK, "/health")
	assert.Empty(t, buf.String(), "healthy checks log at debug only")

	_, buf = serveLogged(t, "debug", http.StatusOK, "/health")
	assert.Equal(t, "health check request", decodeLine(t, buf)["msg"])

	_, buf = serveLogged(t, "info", http.StatusServiceUnavailable, "/health")
	assert.Equal(t, "ERROR", decodeLine(t, buf)["level"])
}

func TestLoggingMiddlewareTruncatesLongQuery(t *testing.T) {
	query := "search=" + strings.Repeat("a", 2*MaxLoggedQueryLength)
	_, buf := serveLogged(t, "info", http.StatusOK, "/api/users?"+query)

	logged, _ := decodeLine(t, buf)[logging.FieldQuery].(string)
	assert.Equal(t, MaxLoggedQueryLength, utf8.RuneCountInString(logged))
	assert.True(t, strings.HasPrefix(query, strings.TrimSuffix(logged, "…")))
}
