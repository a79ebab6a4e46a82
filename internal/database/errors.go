package database

import (
	"context"
	"database/sql/driver"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	pkgerrors "github.com/chybatronik/goUsersTable/pkg/errors"
)

// ErrNoSnapshot is returned by SnapshotStore.LoadSnapshot when no records have been saved yet
var ErrNoSnapshot = errors.New("database: no snapshot stored")

// MapSnapshotErrorSecure maps snapshot store errors to secure user-facing errors.
// SQL state, table and constraint names never reach the message; callers log the original.
func MapSnapshotErrorSecure(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrNoSnapshot) {
		return pkgerrors.NewUnavailableError(pkgerrors.ErrCodeRecordsUnavailable, "User records are not available")
	}

	if IsConnectionError(err) {
		return pkgerrors.NewUnavailableError(pkgerrors.ErrCodeSnapshotError, "Record storage is temporarily unavailable")
	}

	// a failed statement leaves the records unavailable as well
	return pkgerrors.NewUnavailableError(pkgerrors.ErrCodeSnapshotError, "Record storage operation failed")
}

// IsConnectionError reports whether err means the database could not be reached,
// as opposed to a statement failing
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, driver.ErrBadConn) {
		return true
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || pgconn.Timeout(err) {
		return true
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "08000", "08001", "08003", "08004", "08006", "08007", "08P01": // connection exceptions
			return true
		case "53000", "53100", "53200", "53300": // insufficient resources
			return true
		case "57P01", "57P02", "57P03": // admin shutdown, crash shutdown, cannot connect now
			return true
		}
	}

	return false
}
