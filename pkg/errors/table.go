// Package errors provides user-facing error definitions for goUsersTable
// Following the unified error response format: {"error": "message", "code": "ERROR_CODE"}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Table error codes
const (
	// Validation errors (400 Bad Request)
	ErrCodeInvalidPageSize  = "INVALID_PAGE_SIZE"
	ErrCodeInvalidSortField = "INVALID_SORT_FIELD"
	ErrCodeInvalidPage      = "INVALID_PAGE_PARAMETER"
	ErrCodeInvalidReversed  = "INVALID_REVERSED_PARAMETER"
	ErrCodeInvalidSearch    = "INVALID_SEARCH_TERM"
	ErrCodeInvalidSortOrder = "INVALID_SORT_ORDER"

	// Record source errors (503 Service Unavailable)
	ErrCodeRecordsUnavailable = "RECORDS_UNAVAILABLE"
	ErrCodeUpstreamError      = "UPSTREAM_ERROR"

	// Storage errors (500 Internal Server Error)
	ErrCodeSnapshotError = "SNAPSHOT_ERROR"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// TableError represents a user-facing error with HTTP status mapping
type TableError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
}

// Error implements the error interface
func (e *TableError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// GetHTTPStatus returns the HTTP status code for the error
func (e *TableError) GetHTTPStatus() int {
	return e.HTTPStatus
}

// NewValidationError creates validation errors (400 Bad Request)
func NewValidationError(errCode, message string) *TableError {
	return &TableError{
		Code:       errCode,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewUnavailableError creates errors for a record source that cannot serve (503)
func NewUnavailableError(errCode, message string) *TableError {
	return &TableError{
		Code:       errCode,
		Message:    message,
		HTTPStatus: http.StatusServiceUnavailable,
	}
}

// NewInternalError creates internal errors (500 Internal Server Error)
func NewInternalError(errCode, message string) *TableError {
	return &TableError{
		Code:       errCode,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
	}
}

// IsTableError checks if err (or anything it wraps) is a TableError
func IsTableError(err error) bool {
	_, ok := GetTableError(err)
	return ok
}

// GetTableError extracts a TableError from err's chain
func GetTableError(err error) (*TableError, bool) {
	var tableErr *TableError
	if errors.As(err, &tableErr) {
		return tableErr, true
	}
	return nil, false
}
