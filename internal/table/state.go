// Package table implements the users table state and its derived view:
// filter by search term, stable sort by one column, then paginate.
package table

import (
	"strconv"
	"strings"

	pkgerrors "github.com/chybatronik/goUsersTable/pkg/errors"
)

// SortField names a sortable column of the users table
type SortField string

// Sortable columns. Values match the JSON field names of models.User.
const (
	FieldFullName   SortField = "fullName"
	FieldBalance    SortField = "balance"
	FieldIsActive   SortField = "isActive"
	FieldRegistered SortField = "registered"
	FieldState      SortField = "state"
	FieldCountry    SortField = "country"
)

// Defaults of a fresh table session.
const (
	DefaultItemsPerPage = 100
	DefaultSortField    = FieldFullName
)

// ItemsPerPageOptions is the fixed set of page sizes the table offers, in display order.
var ItemsPerPageOptions = []int{20, 50, 100}

// Column describes one table column in display order
type Column struct {
	Field SortField
	Title string
}

// Columns lists the table columns in display order.
var Columns = []Column{
	{Field: FieldFullName, Title: "Full Name"},
	{Field: FieldBalance, Title: "Balance"},
	{Field: FieldIsActive, Title: "Is active"},
	{Field: FieldRegistered, Title: "Is registered"},
	{Field: FieldState, Title: "State"},
	{Field: FieldCountry, Title: "Country"},
}

// ViewState is the UI state the derived view is computed from.
type ViewState struct {
	SearchTerm   string    `json:"search"`
	ItemsPerPage int       `json:"items_per_page"`
	CurrentPage  int       `json:"current_page"`
	SortField    SortField `json:"sort_field"`
	SortReversed bool      `json:"sort_reversed"`
}

// DefaultState returns the state a new table session starts with.
func DefaultState() ViewState {
	return ViewState{
		SearchTerm:   "",
		ItemsPerPage: DefaultItemsPerPage,
		CurrentPage:  0,
		SortField:    DefaultSortField,
		SortReversed: false,
	}
}

// WithSearchTerm stores the lowercased term and returns to the first page.
func (s ViewState) WithSearchTerm(term string) ViewState {
	s.SearchTerm = strings.ToLower(term)
	s.CurrentPage = 0
	return s
}

// WithItemsPerPage changes the page size. The current page is kept as is, even when
// it ends up past the last page.
func (s ViewState) WithItemsPerPage(n int) (ViewState, error) {
	if !ValidItemsPerPage(n) {
		return s, pkgerrors.NewValidationError(pkgerrors.ErrCodeInvalidPageSize,
			"Items per page must be one of: "+itemsPerPageList())
	}
	s.ItemsPerPage = n
	return s, nil
}

// WithSortField toggles the direction when field is already the sort column,
// otherwise sorts ascending by field.
func (s ViewState) WithSortField(field SortField) (ViewState, error) {
	if !field.Valid() {
		return s, pkgerrors.NewValidationError(pkgerrors.ErrCodeInvalidSortField,
			"Invalid sort field. Must be one of: "+sortFieldList())
	}
	if s.SortField == field {
		s.SortReversed = !s.SortReversed
		return s, nil
	}
	s.SortField = field
	s.SortReversed = false
	return s, nil
}

// WithCurrentPage stores the page index without any bounds check.
func (s ViewState) WithCurrentPage(page int) ViewState {
	s.CurrentPage = page
	return s
}

// Valid reports whether f is one of the table columns
func (f SortField) Valid() bool {
	for _, c := range Columns {
		if c.Field == f {
			return true
		}
	}
	return false
}

// Title returns the column header for f, or "" for unknown fields
func (f SortField) Title() string {
	for _, c := range Columns {
		if c.Field == f {
			return c.Title
		}
	}
	return ""
}

// ParseSortField validates a field name coming from a request or a flag.
func ParseSortField(name string) (SortField, error) {
	field := SortField(strings.TrimSpace(name))
	if !field.Valid() {
		return "", pkgerrors.NewValidationError(pkgerrors.ErrCodeInvalidSortField,
			"Invalid sort field. Must be one of: "+sortFieldList())
	}
	return field, nil
}

// ValidItemsPerPage reports whether n is one of ItemsPerPageOptions
func ValidItemsPerPage(n int) bool {
	for _, option := range ItemsPerPageOptions {
		if option == n {
			return true
		}
	}
	return false
}

func sortFieldList() string {
	names := make([]string, 0, len(Columns))
	for _, c := range Columns {
		names = append(names, string(c.Field))
	}
	return strings.Join(names, ", ")
}

func itemsPerPageList() string {
	sizes := make([]string, 0, len(ItemsPerPageOptions))
	for _, n := range ItemsPerPageOptions {
		sizes = append(sizes, strconv.Itoa(n))
	}
	return strings.Join(sizes, ", ")
}
