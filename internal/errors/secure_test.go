package errors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"

	"github.com/chybatronik/goUsersTable/internal/database"
	"github.com/chybatronik/goUsersTable/internal/directory"
	"github.com/chybatronik/goUsersTable/internal/source"
	"github.com/chybatronik/goUsersTable/internal/validation"
	pkgerrors "github.com/chybatronik/goUsersTable/pkg/errors"
)

func TestMapSourceErrorSecure(t *testing.T) {
	testCases := []struct {
		name           string
		err            error
		expectedCode   string
		expectedStatus int
	}{
		{
			name:           "no records after upstream failure",
			err:            fmt.Errorf("%w: %w", source.ErrNoRecords, directory.ErrUpstreamStatus),
			expectedCode:   pkgerrors.ErrCodeRecordsUnavailable,
			expectedStatus: http.StatusServiceUnavailable,
		},
		{
			name:           "upstream status",
			err:            fmt.Errorf("fetch https://internal.host/users: %w", directory.ErrUpstreamStatus),
			expectedCode:   pkgerrors.ErrCodeUpstreamError,
			expectedStatus: http.StatusServiceUnavailable,
		},
		{
			name:           "malformed payload",
			err:            fmt.Errorf("%w: unexpected token", directory.ErrMalformedPayload),
			expectedCode:   pkgerrors.ErrCodeUpstreamError,
			expectedStatus: http.StatusServiceUnavailable,
		},
		{
			name:           "oversized payload",
			err:            fmt.Errorf("%w: %w", directory.ErrPayloadTooLarge, validation.ErrPayloadTooLarge),
			expectedCode:   pkgerrors.ErrCodeUpstreamError,
			expectedStatus: http.StatusServiceUnavailable,
		},
		{
			name:           "truncated body",
			err:            fmt.Errorf("failed to read directory response: %w", io.ErrUnexpectedEOF),
			expectedCode:   pkgerrors.ErrCodeUpstreamError,
			expectedStatus: http.StatusServiceUnavailable,
		},
		{
			name:           "no snapshot stored",
			err:            fmt.Errorf("load snapshot: %w", database.ErrNoSnapshot),
			expectedCode:   pkgerrors.ErrCodeRecordsUnavailable,
			expectedStatus: http.StatusServiceUnavailable,
		},
		{
			name:           "snapshot connection lost",
			err:            &pgconn.PgError{Code: "08006", Message: "connection failure"},
			expectedCode:   pkgerrors.ErrCodeSnapshotError,
			expectedStatus: http.StatusServiceUnavailable,
		},
		{
			name:           "upstream timeout",
			err:            fmt.Errorf("request failed: %w", context.DeadlineExceeded),
			expectedCode:   pkgerrors.ErrCodeUpstreamError,
			expectedStatus: http.StatusServiceUnavailable,
		},
		{
			name:           "network error",
			err:            &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")},
			expectedCode:   pkgerrors.ErrCodeUpstreamError,
			expectedStatus: http.StatusServiceUnavailable,
		},
		{
			name:           "postgres error",
			err:            &pgconn.PgError{Code: "42P01", Message: `relation "user_records" does not exist`},
			expectedCode:   pkgerrors.ErrCodeSnapshotError,
			expectedStatus: http.StatusServiceUnavailable,
		},
		{
			name:           "redis closed",
			err:            fmt.Errorf("cache: %w", redis.ErrClosed),
			expectedCode:   pkgerrors.ErrCodeSnapshotError,
			expectedStatus: http.StatusServiceUnavailable,
		},
		{
			name:           "unknown error",
			err:            errors.New("something odd"),
			expectedCode:   pkgerrors.ErrCodeInternalError,
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:           "already user facing",
			err:            pkgerrors.NewValidationError(pkgerrors.ErrCodeInvalidSortField, "bad sort"),
			expectedCode:   pkgerrors.ErrCodeInvalidSortField,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tableErr, ok := pkgerrors.GetTableError(MapSourceErrorSecure(tc.err))
			if !ok {
				t.Fatalf("Expected *errors.TableError for %v", tc.err)
			}
			if tableErr.Code != tc.expectedCode {
				t.Errorf("Expected code %s, got %s", tc.expectedCode, tableErr.Code)
			}
			if tableErr.HTTPStatus != tc.expectedStatus {
				t.Errorf("Expected status %d, got %d", tc.expectedStatus, tableErr.HTTPStatus)
			}
			for _, leak := range []string{"internal.host", "user_records", "connection refused", "unexpected token"} {
				if strings.Contains(tableErr.Message, leak) {
					t.Errorf("Message leaks %q: %s", leak, tableErr.Message)
				}
			}
		})
	}

	if MapSourceErrorSecure(nil) != nil {
		t.Error("Expected nil for nil error")
	}
}
