package errors

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/chybatronik/goUsersTable/internal/logging"
	"github.com/chybatronik/goUsersTable/internal/middleware"
	pkgerrors "github.com/chybatronik/goUsersTable/pkg/errors"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

// writeSecureErrorResponse writes a secure error response
func writeSecureErrorResponse(w http.ResponseWriter, statusCode int, code, message, details string) {
	// NEVER include internal details in user-facing errors
	response := ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(response)
}

// writeSecureErrorResponseWithRequest writes a secure error response with request context
func writeSecureErrorResponseWithRequest(w http.ResponseWriter, r *http.Request, statusCode int, code, message, details string) {
	requestID := middleware.GetRequestID(r.Context())

	slog.Default().Warn("API error response",
		logging.FieldRequestID, requestID,
		logging.FieldHTTPStatus, statusCode,
		"code", code,
		logging.FieldHTTPPath, r.URL.Path,
		logging.FieldHTTPMethod, r.Method,
	)

	if requestID != "" {
		w.Header().Set(middleware.RequestIDHeader, requestID)
	}

	writeSecureErrorResponse(w, statusCode, code, message, details)
}

// WriteError writes err as the unified error body. Non table errors become a generic 500.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	tableErr, ok := pkgerrors.GetTableError(err)
	if !ok {
		WriteInternalError(w, r)
		return
	}
	writeSecureErrorResponseWithRequest(w, r, tableErr.GetHTTPStatus(), tableErr.Code, tableErr.Message, "")
}

// WriteValidationError writes a 400 naming the offending query parameter in details
func WriteValidationError(w http.ResponseWriter, r *http.Request, param string, err error) {
	tableErr, ok := pkgerrors.GetTableError(err)
	if !ok {
		tableErr = pkgerrors.NewValidationError("VALIDATION_ERROR", sanitizeErrorMessage(err.Error()))
	}

	details := ""
	if param != "" {
		details = "parameter: " + param
	}
	writeSecureErrorResponseWithRequest(w, r, http.StatusBadRequest, tableErr.Code, tableErr.Message, details)
}

// WriteMethodNotAllowed writes a 405 and the Allow header
func WriteMethodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeSecureErrorResponseWithRequest(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", "")
}

// WriteNotFoundError writes a not found error response (404 Not Found)
func WriteNotFoundError(w http.ResponseWriter, r *http.Request, resource string) {
	message := "Resource not found"
	if resource != "" {
		message = resource + " not found"
	}
	writeSecureErrorResponseWithRequest(w, r, http.StatusNotFound, "NOT_FOUND", message, "")
}

// WriteInternalError writes an internal server error response (500 Internal Server Error)
func WriteInternalError(w http.ResponseWriter, r *http.Request) {
	writeSecureErrorResponseWithRequest(w, r, http.StatusInternalServerError, pkgerrors.ErrCodeInternalError, "Internal server error", "")
}

// sanitizeErrorMessage removes potentially dangerous information from error messages
func sanitizeErrorMessage(message string) string {
	originalMessage := message

	// Remove potential file paths
	message = strings.ReplaceAll(message, "/", "_")

	// Remove potential database identifiers
	message = strings.ReplaceAll(message, "pg_", "")
	message = strings.ReplaceAll(message, "sql_", "")

	dangerousTerms := []string{
		"internal", "system", "database", "server", "stack trace",
		"panic", "fatal", "exception", "error code", "line",
		"file:", "at line", "in function", "redis", "http:",
	}

	lowerOriginal := strings.ToLower(originalMessage)
	for _, term := range dangerousTerms {
		if strings.Contains(lowerOriginal, term) {
			message = "Validation failed"
			break
		}
	}

	// Limit message length to prevent information leakage
	if len(message) > 200 {
		message = "Validation failed with invalid input"
	}

	return strings.TrimSpace(message)
}
