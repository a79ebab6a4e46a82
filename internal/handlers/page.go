package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"strconv"

	"github.com/chybatronik/goUsersTable/internal/source"
	"github.com/chybatronik/goUsersTable/internal/table"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/table.html"))

// Sort indicators on the active column header
const (
	IndicatorAscending = "▼"
	IndicatorReversed  = "▲"
)

type pageData struct {
	Path        string
	State       table.ViewState
	Headers     []headerLink
	PageSizes   []pageSizeLink
	Rows        []rowData
	CurrentPage int
	TotalPages  int
	TotalItems  int
	HasPrevious bool
	HasNext     bool
	PreviousURL string
	NextURL     string
	Status      source.Status
}

type headerLink struct {
	Title     string
	URL       string
	Indicator string
}

type pageSizeLink struct {
	Size   int
	URL    string
	Active bool
}

type rowData struct {
	FullName   string
	Balance    string
	Active     string
	Registered string
	State      string
	Country    string
}

// newPageData computes every link by applying the table operation to a copy of the
// current state, so links carry the same semantics as the controller
func newPageData(path string, view table.View, status source.Status) pageData {
	state := view.State
	data := pageData{
		Path:        path,
		State:       state,
		CurrentPage: state.CurrentPage + 1,
		TotalPages:  view.TotalPages,
		TotalItems:  view.FilteredCount,
		HasPrevious: view.HasPrevious,
		HasNext:     view.HasNext,
		Status:      status,
	}

	for _, col := range table.Columns {
		next, _ := state.WithSortField(col.Field)
		link := headerLink{Title: col.Title, URL: TableURL(path, next)}
		if col.Field == state.SortField {
			link.Indicator = IndicatorAscending
			if state.SortReversed {
				link.Indicator = IndicatorReversed
			}
		}
		data.Headers = append(data.Headers, link)
	}

	for _, size := range table.ItemsPerPageOptions {
		next, _ := state.WithItemsPerPage(size)
		data.PageSizes = append(data.PageSizes, pageSizeLink{
			Size:   size,
			URL:    TableURL(path, next),
			Active: size == state.ItemsPerPage,
		})
	}

	if view.HasPrevious {
		data.PreviousURL = TableURL(path, state.WithCurrentPage(state.CurrentPage-1))
	}
	if view.HasNext {
		data.NextURL = TableURL(path, state.WithCurrentPage(state.CurrentPage+1))
	}

	for _, u := range view.Rows {
		data.Rows = append(data.Rows, rowData{
			FullName:   u.FullName,
			Balance:    u.Balance,
			Active:     u.ActiveLabel(),
			Registered: u.Registered,
			State:      u.State,
			Country:    u.Country,
		})
	}

	return data
}

// renderPage executes into a buffer first so a template error can still become a 500
func renderPage(w http.ResponseWriter, path string, view table.View, status source.Status) error {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, newPageData(path, view, status)); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, err := buf.WriteTo(w)
	return err
}
