// Package pkg provides public libraries that can be imported by other projects.
//
// This package is the public API surface of goUsersTable and contains:
//   - errors: user-facing error codes with HTTP status mapping
//
// Example usage:
//
//	import "github.com/chybatronik/goUsersTable/pkg/errors"
//
//	tableErr := errors.NewValidationError(errors.ErrCodeInvalidPageSize, "Items per page must be one of: 20, 50, 100")
//	http.Error(w, tableErr.Error(), tableErr.GetHTTPStatus())
package pkg
