// Package logging provides standard field definitions for structured logging
package logging

import (
	"log/slog"
)

// Standard log field values and constants for structured logging
const (
	// Standard field names
	FieldRequestID    = "req_id"
	FieldHTTPMethod   = "method"
	FieldHTTPPath     = "path"
	FieldHTTPStatus   = "status"
	FieldLatencyMs    = "latency_ms"
	FieldService      = "service"
	FieldVersion      = "version"
	FieldError        = "error"
	FieldResponseTime = "response_time_ms"
	FieldCheckName    = "check_name"
	FieldCheckStatus  = "check_status"
	FieldRecords      = "records"
	FieldOrigin       = "origin"
	FieldUpstream     = "upstream"
	FieldDurationMs   = "duration_ms"
	FieldQuery        = "query"
	FieldBytes        = "bytes"

	// Log levels
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"

	// Output formats
	FormatJSON = "json"
	FormatText = "text"

	// Health check statuses
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// Err builds the error attribute; a nil error logs as an empty string
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String(FieldError, "")
	}
	return slog.String(FieldError, err.Error())
}

// Records builds the record count attribute
func Records(n int) slog.Attr {
	return slog.Int(FieldRecords, n)
}

// Origin names where a record list came from (cache, upstream, snapshot)
func Origin(origin string) slog.Attr {
	return slog.String(FieldOrigin, origin)
}

// CheckStatus maps a health check outcome to its status attribute
func CheckStatus(healthy bool) slog.Attr {
	if healthy {
		return slog.String(FieldCheckStatus, StatusHealthy)
	}
	return slog.String(FieldCheckStatus, StatusUnhealthy)
}
