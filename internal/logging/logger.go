// Package logging provides structured logging functionality using log/slog
package logging

import (
	"context"
	"io"
	"log/slog"
)

// Logger wraps slog.Logger with additional application-specific functionality
type Logger struct {
	*slog.Logger
	service string
	version string
}

// New creates a logger writing to w in the given format (json or text)
func New(w io.Writer, level, format, service, version string) *Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if format == FormatText {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return &Logger{
		Logger:  slog.New(handler),
		service: service,
		version: version,
	}
}

// Discard returns a logger that drops everything, for tests and the terminal UI.
func Discard() *Logger {
	return New(io.Discard, LevelError, FormatJSON, "", "")
}

// ParseLevel maps a configured level name to a slog level, defaulting to info
func ParseLevel(level string) slog.Level {
	switch level {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *Logger) with(args ...any) *Logger {
	return &Logger{
		Logger:  l.Logger.With(args...),
		service: l.service,
		version: l.version,
	}
}

// WithRequestID adds request ID to the logger
func (l *Logger) WithRequestID(reqID string) *Logger {
	return l.with(slog.String(FieldRequestID, reqID))
}

// WithHTTPRequest adds HTTP request context to the logger
func (l *Logger) WithHTTPRequest(method, path string, statusCode int, latencyMs int64) *Logger {
	return l.with(
		slog.String(FieldHTTPMethod, method),
		slog.String(FieldHTTPPath, path),
		slog.Int(FieldHTTPStatus, statusCode),
		slog.Int64(FieldLatencyMs, latencyMs),
	)
}

// WithError adds error context to the logger
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}
	return l.with(Err(err))
}

// WithServiceContext adds service context to the logger
func (l *Logger) WithServiceContext() *Logger {
	return l.with(
		slog.String(FieldService, l.service),
		slog.String(FieldVersion, l.version),
	)
}

// Startup logs application startup information
func (l *Logger) Startup(msg string, args ...any) {
	l.WithServiceContext().Info(msg, args...)
}

// Request logs HTTP request completion. Server errors log at error level and
// client errors at warn so rejected table parameters stand out.
func (l *Logger) Request(reqID, method, path string, statusCode int, latencyMs int64, args ...any) {
	level := slog.LevelInfo
	switch {
	case statusCode >= 500:
		level = slog.LevelError
	case statusCode >= 400:
		level = slog.LevelWarn
	}
	l.WithRequestID(reqID).
		WithHTTPRequest(method, path, statusCode, latencyMs).
		Log(context.Background(), level, "HTTP request completed", args...)
}

// Source logs record source operations (upstream fetch, cache, snapshot)
func (l *Logger) Source(msg string, args ...any) {
	l.Logger.Info("source: "+msg, args...)
}

// SourceError logs record source failures
func (l *Logger) SourceError(msg string, err error, args ...any) {
	l.WithError(err).Error("source: "+msg, args...)
}

// Database logs database-related operations
func (l *Logger) Database(msg string, args ...any) {
	l.Logger.Info("database: "+msg, args...)
}

// DatabaseError logs database errors
func (l *Logger) DatabaseError(msg string, err error) {
	l.WithError(err).Error("database: " + msg)
}

// HealthCheck logs health check operations
func (l *Logger) HealthCheck(msg string, args ...any) {
	l.Logger.Info("healthcheck: "+msg, args...)
}
