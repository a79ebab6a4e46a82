package handlers

import (
	"net/http"

	"github.com/chybatronik/goUsersTable/internal/errors"
)

// MethodNotAllowed answers every method on a path whose method-specific
// patterns did not match, listing allowed in the Allow header
func MethodNotAllowed(allowed ...string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		errors.WriteMethodNotAllowed(w, r, allowed...)
	})
}

// NotFound answers paths no route claims
func NotFound(w http.ResponseWriter, r *http.Request) {
	errors.WriteNotFoundError(w, r, "")
}
