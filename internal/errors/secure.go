// Package errors provides secure error handling utilities
package errors

import (
	"context"
	"errors"
	"io"
	"net"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"

	"github.com/chybatronik/goUsersTable/internal/database"
	"github.com/chybatronik/goUsersTable/internal/directory"
	"github.com/chybatronik/goUsersTable/internal/source"
	pkgerrors "github.com/chybatronik/goUsersTable/pkg/errors"
)

// MapSourceErrorSecure maps record source failures to generic user-facing errors.
// Upstream URLs, SQL state and Redis replies never reach the client; callers log the
// original error before mapping it.
func MapSourceErrorSecure(err error) error {
	if err == nil {
		return nil
	}

	// Already user-facing
	if tableErr, ok := pkgerrors.GetTableError(err); ok {
		return tableErr
	}

	switch {
	case errors.Is(err, source.ErrNoRecords):
		return pkgerrors.NewUnavailableError(pkgerrors.ErrCodeRecordsUnavailable, "User records are not available")
	case isUpstreamError(err):
		return pkgerrors.NewUnavailableError(pkgerrors.ErrCodeUpstreamError, "User directory is temporarily unavailable")
	case isSnapshotError(err):
		return database.MapSnapshotErrorSecure(err)
	case isCacheError(err):
		return pkgerrors.NewUnavailableError(pkgerrors.ErrCodeSnapshotError, "Record storage is temporarily unavailable")
	default:
		return pkgerrors.NewInternalError(pkgerrors.ErrCodeInternalError, "Internal server error")
	}
}

func isUpstreamError(err error) bool {
	switch {
	case errors.Is(err, directory.ErrUpstreamStatus),
		errors.Is(err, directory.ErrMalformedPayload),
		errors.Is(err, directory.ErrPayloadTooLarge),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, context.DeadlineExceeded):
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

func isSnapshotError(err error) bool {
	if errors.Is(err, database.ErrNoSnapshot) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) || pgconn.Timeout(err)
}

func isCacheError(err error) bool {
	var redisErr redis.Error
	return errors.As(err, &redisErr) || errors.Is(err, redis.ErrClosed)
}
