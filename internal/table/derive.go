package table

import (
	"slices"
	"strings"

	"github.com/chybatronik/goUsersTable/internal/models"
)

// View is the derived, render-ready result of a state over a record list.
type View struct {
	State         ViewState     `json:"state"`
	Rows          []models.User `json:"rows"`
	FilteredCount int           `json:"filtered_count"`
	TotalPages    int           `json:"total_pages"`
	HasPrevious   bool          `json:"has_previous"`
	HasNext       bool          `json:"has_next"`
}

// Derive computes the visible page: filter, then stable sort, then paginate.
// It never fails; out of range pages produce an empty Rows slice.
// A non-positive ItemsPerPage (only possible for hand-built states) is treated as
// DefaultItemsPerPage.
func Derive(records []models.User, state ViewState) View {
	filtered := Filter(records, state.SearchTerm)
	sorted := Sort(filtered, state.SortField, state.SortReversed)

	perPage := state.ItemsPerPage
	if perPage <= 0 {
		perPage = DefaultItemsPerPage
	}

	totalPages := TotalPages(len(sorted), perPage)

	return View{
		State:         state,
		Rows:          Paginate(sorted, state.CurrentPage, perPage),
		FilteredCount: len(sorted),
		TotalPages:    totalPages,
		HasPrevious:   state.CurrentPage > 0,
		HasNext:       state.CurrentPage < totalPages-1,
	}
}

// Filter keeps the records where the lowercased term is a substring of the lowercased
// full name, balance, registered date, state or country. The active flag is not searched.
// An empty term keeps everything. The input slice is never modified.
func Filter(records []models.User, term string) []models.User {
	term = strings.ToLower(term)
	filtered := make([]models.User, 0, len(records))
	for _, r := range records {
		if term == "" || matches(r, term) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

func matches(r models.User, term string) bool {
	return strings.Contains(strings.ToLower(r.FullName), term) ||
		strings.Contains(strings.ToLower(r.Balance), term) ||
		strings.Contains(strings.ToLower(r.Registered), term) ||
		strings.Contains(strings.ToLower(r.State), term) ||
		strings.Contains(strings.ToLower(r.Country), term)
}

// Sort returns a copy of records stably sorted ascending by field, reversed afterwards
// when reversed is set. Text columns compare lexically, so balance "100" sorts before "20".
// The active flag sorts false before true.
func Sort(records []models.User, field SortField, reversed bool) []models.User {
	sorted := slices.Clone(records)
	if sorted == nil {
		sorted = []models.User{}
	}

	slices.SortStableFunc(sorted, func(a, b models.User) int {
		return compareBy(a, b, field)
	})

	if reversed {
		slices.Reverse(sorted)
	}
	return sorted
}

func compareBy(a, b models.User, field SortField) int {
	if field == FieldIsActive {
		switch {
		case a.IsActive == b.IsActive:
			return 0
		case !a.IsActive:
			return -1
		default:
			return 1
		}
	}
	return strings.Compare(FieldValue(a, field), FieldValue(b, field))
}

// FieldValue returns the display text of a record's column.
func FieldValue(u models.User, field SortField) string {
	switch field {
	case FieldFullName:
		return u.FullName
	case FieldBalance:
		return u.Balance
	case FieldIsActive:
		return u.ActiveLabel()
	case FieldRegistered:
		return u.Registered
	case FieldState:
		return u.State
	case FieldCountry:
		return u.Country
	default:
		return ""
	}
}

// TotalPages is ceil(count / perPage), and 0 for an empty sequence.
func TotalPages(count, perPage int) int {
	if count <= 0 || perPage <= 0 {
		return 0
	}
	return (count + perPage - 1) / perPage
}

// Paginate returns the window [page*perPage, (page+1)*perPage) of records, cut to the
// available range. Negative or past-the-end pages give an empty slice.
func Paginate(records []models.User, page, perPage int) []models.User {
	if page < 0 || perPage <= 0 || page > len(records)/perPage {
		return []models.User{}
	}

	start := page * perPage
	if start >= len(records) {
		return []models.User{}
	}

	end := start + perPage
	if end > len(records) {
		end = len(records)
	}

	return records[start:end]
}
