package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chybatronik/goUsersTable/internal/directory"
	"github.com/chybatronik/goUsersTable/internal/logging"
	"github.com/chybatronik/goUsersTable/internal/middleware"
	"github.com/chybatronik/goUsersTable/internal/source"
	"github.com/chybatronik/goUsersTable/internal/validation"
)

// secureStack wires the table routes behind the same middleware chain as the server
func secureStack(src RecordSource, requests int) http.Handler {
	logger := logging.Discard()
	_, mux := newTestHandler(src)

	handler := http.Handler(mux)
	handler = middleware.NewErrorHandler(logger, handler)
	handler = middleware.NewLoggingMiddleware(logger, handler)
	handler = middleware.RequestIDMiddleware(handler)
	return middleware.NewRateLimiter(requests, time.Minute, logger).Middleware(handler)
}

func TestSecurityStackRejectsDangerousSearch(t *testing.T) {
	handler := secureStack(&fakeSource{records: sampleUsers()}, 100)

	testCases := []struct {
		name           string
		search         string
		expectedStatus int
	}{
		{"plain text", "texas", http.StatusOK},
		{"non latin letters", "\u0430dmin", http.StatusOK},
		{"null byte", "a\x00b", http.StatusBadRequest},
		{"zero width space", "a\u200bb", http.StatusBadRequest},
		{"bidi override", "\u202eadmin", http.StatusBadRequest},
		{"oversized", strings.Repeat("x", validation.MaxSearchTermLength+1), http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/users?search="+url.QueryEscape(tc.search), nil)
			req.RemoteAddr = "192.168.1.100:12345"
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tc.expectedStatus, w.Code)
			assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), "response should be valid JSON")
			if tc.expectedStatus == http.StatusBadRequest {
				assert.Equal(t, "INVALID_SEARCH_TERM", body["code"])
				assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
				assert.NotContains(t, w.Body.String(), tc.search, "input is not echoed back")
			}
		})
	}
}

func TestSecurityStackRateLimit(t *testing.T) {
	handler := secureStack(&fakeSource{records: sampleUsers()}, 2)

	blocked := 0
	var last *httptest.ResponseRecorder
	for i := 0; i < 10; i++ {
		req := httptest.NewRequest("GET", "/api/users", nil)
		req.RemoteAddr = "192.168.1.200:12345"

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code == http.StatusTooManyRequests {
			blocked++
			last = w
		}
	}

	require.Equal(t, 8, blocked)

	var body map[string]string
	require.NoError(t, json.Unmarshal(last.Body.Bytes(), &body))
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", body["code"])
	assert.Equal(t, "60", last.Header().Get("Retry-After"))
}

func TestSecurityStackHidesUpstreamDetails(t *testing.T) {
	src := &fakeSource{err: fmt.Errorf("%w: GET http://10.1.2.3:9000/secret?token=abc: %w",
		source.ErrNoRecords, directory.ErrUpstreamStatus)}
	handler := secureStack(src, 100)

	for _, path := range []string{"/", "/api/users"} {
		req := httptest.NewRequest("GET", path, nil)
		req.RemoteAddr = "192.168.1.50:1"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		for _, leak := range []string{"10.1.2.3", "secret", "token"} {
			assert.NotContains(t, w.Body.String(), leak)
		}
	}
}

func TestSecurityStackReplacesMalformedRequestID(t *testing.T) {
	handler := secureStack(&fakeSource{records: sampleUsers()}, 100)

	req := httptest.NewRequest("GET", "/api/users", nil)
	req.RemoteAddr = "192.168.1.60:1"
	req.Header.Set(middleware.RequestIDHeader, "evil\nInjected: header")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	got := w.Header().Get(middleware.RequestIDHeader)
	assert.NotEmpty(t, got)
	assert.NotContains(t, got, "evil")
}

func TestSearchValidationOverhead(t *testing.T) {
	const iterations = 10000
	start := time.Now()
	for i := 0; i < iterations; i++ {
		require.NoError(t, validation.ValidateSearchTerm("john.doe@example.com"))
	}
	assert.Less(t, time.Since(start), time.Second, "%d validations", iterations)
}
