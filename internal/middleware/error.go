package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/chybatronik/goUsersTable/internal/logging"
)

// ErrorResponse is the unified JSON error body
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

// ErrorHandler turns plain-text error responses (for example the mux's 404 and 405)
// into the unified JSON body and recovers panics into JSON 500s.
type ErrorHandler struct {
	next   http.Handler
	logger *logging.Logger
}

// NewErrorHandler creates a new error handler middleware
func NewErrorHandler(logger *logging.Logger, next http.Handler) *ErrorHandler {
	return &ErrorHandler{
		next:   next,
		logger: logger,
	}
}

// ServeHTTP implements the http.Handler interface with panic recovery
func (eh *ErrorHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	iw := &interceptWriter{ResponseWriter: w, r: r}

	defer func() {
		if rec := recover(); rec != nil {
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			eh.logger.WithRequestID(GetRequestID(r.Context())).Error("panic recovered",
				"panic", rec, logging.FieldHTTPMethod, r.Method, logging.FieldHTTPPath, r.URL.Path)
			if iw.wroteHeader {
				return
			}
			iw.wroteHeader = true
			writeJSONError(w, http.StatusInternalServerError, "Internal server error", "INTERNAL_ERROR", "")
		}
	}()

	eh.next.ServeHTTP(iw, r)
}

// interceptWriter replaces error bodies that are not already JSON or HTML
type interceptWriter struct {
	http.ResponseWriter
	r           *http.Request
	wroteHeader bool
	intercepted bool
}

func (iw *interceptWriter) WriteHeader(code int) {
	if iw.wroteHeader {
		return
	}
	iw.wroteHeader = true

	if code >= http.StatusBadRequest && !formattedContentType(iw.Header().Get("Content-Type")) {
		iw.intercepted = true
		iw.Header().Del("Content-Length")
		details := ""
		if code == http.StatusMethodNotAllowed {
			if allow := iw.Header().Get("Allow"); allow != "" {
				details = "allowed methods: " + allow
			}
		}
		writeJSONError(iw.ResponseWriter, code, http.StatusText(code), statusCode(code), details)
		return
	}

	iw.ResponseWriter.WriteHeader(code)
}

func (iw *interceptWriter) Write(data []byte) (int, error) {
	if !iw.wroteHeader {
		iw.WriteHeader(http.StatusOK)
	}
	if iw.intercepted {
		return len(data), nil
	}
	return iw.ResponseWriter.Write(data)
}

func (iw *interceptWriter) Unwrap() http.ResponseWriter {
	return iw.ResponseWriter
}

func formattedContentType(ct string) bool {
	return strings.HasPrefix(ct, "application/json") || strings.HasPrefix(ct, "text/html")
}

// statusCode derives an error code from the status text, e.g. 404 -> NOT_FOUND
func statusCode(status int) string {
	text := http.StatusText(status)
	if text == "" {
		return "HTTP_ERROR"
	}
	return strings.ToUpper(strings.ReplaceAll(strings.ReplaceAll(text, "-", "_"), " ", "_"))
}

func writeJSONError(w http.ResponseWriter, status int, message, code, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: message, Code: code, Details: details})
}
