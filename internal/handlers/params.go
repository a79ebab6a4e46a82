package handlers

import (
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/chybatronik/goUsersTable/internal/table"
	"github.com/chybatronik/goUsersTable/internal/validation"
	pkgerrors "github.com/chybatronik/goUsersTable/pkg/errors"
)

// Query parameters carrying the table state
const (
	ParamSearch   = "search"
	ParamPerPage  = "per_page"
	ParamPage     = "page"
	ParamSortBy   = "sort_by"
	ParamReversed = "reversed"
)

// ParamError names the query parameter a validation error came from
type ParamError struct {
	Param string
	Err   error
}

func (e *ParamError) Error() string { return e.Param + ": " + e.Err.Error() }

func (e *ParamError) Unwrap() error { return e.Err }

// ParseTableQuery builds a view state from query parameters. Absent parameters keep
// their value from defaults. The state is taken as given: a sort_by does not toggle
// and a search does not reset an explicit page.
func ParseTableQuery(q url.Values, defaults table.ViewState) (table.ViewState, error) {
	state := defaults

	if q.Has(ParamSearch) {
		term := q.Get(ParamSearch)
		if err := validation.ValidateSearchTerm(term); err != nil {
			msg := "Search term contains invalid characters"
			if errors.Is(err, validation.ErrSearchTermTooLong) {
				msg = "Search term must be at most " + strconv.Itoa(validation.MaxSearchTermLength) + " characters"
			}
			return defaults, &ParamError{ParamSearch, pkgerrors.NewValidationError(pkgerrors.ErrCodeInvalidSearch, msg)}
		}
		state.SearchTerm = strings.ToLower(term)
	}

	if v := q.Get(ParamPerPage); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			state, err = state.WithItemsPerPage(n)
		}
		if err != nil {
			return defaults, &ParamError{ParamPerPage, pkgerrors.NewValidationError(pkgerrors.ErrCodeInvalidPageSize,
				"Items per page must be one of: 20, 50, 100")}
		}
	}

	if v := q.Get(ParamSortBy); v != "" {
		field, err := table.ParseSortField(v)
		if err != nil {
			return defaults, &ParamError{ParamSortBy, err}
		}
		state.SortField = field
	}

	if v := q.Get(ParamReversed); v != "" {
		reversed, err := strconv.ParseBool(v)
		if err != nil {
			return defaults, &ParamError{ParamReversed, pkgerrors.NewValidationError(pkgerrors.ErrCodeInvalidReversed,
				"Reversed must be true or false")}
		}
		state.SortReversed = reversed
	}

	if v := q.Get(ParamPage); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil {
			return defaults, &ParamError{ParamPage, pkgerrors.NewValidationError(pkgerrors.ErrCodeInvalidPage,
				"Page must be an integer")}
		}
		state = state.WithCurrentPage(page)
	}

	return state, nil
}

// EncodeTableQuery is the inverse of ParseTableQuery
func EncodeTableQuery(state table.ViewState) url.Values {
	q := url.Values{}
	if state.SearchTerm != "" {
		q.Set(ParamSearch, state.SearchTerm)
	}
	q.Set(ParamPerPage, strconv.Itoa(state.ItemsPerPage))
	q.Set(ParamPage, strconv.Itoa(state.CurrentPage))
	q.Set(ParamSortBy, string(state.SortField))
	q.Set(ParamReversed, strconv.FormatBool(state.SortReversed))
	return q
}

// TableURL returns the page path for state
func TableURL(path string, state table.ViewState) string {
	return path + "?" + EncodeTableQuery(state).Encode()
}
