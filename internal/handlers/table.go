// Package handlers provides HTTP handlers for the users table service.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/chybatronik/goUsersTable/internal/errors"
	"github.com/chybatronik/goUsersTable/internal/logging"
	"github.com/chybatronik/goUsersTable/internal/middleware"
	"github.com/chybatronik/goUsersTable/internal/models"
	"github.com/chybatronik/goUsersTable/internal/source"
	"github.com/chybatronik/goUsersTable/internal/table"
	"github.com/chybatronik/goUsersTable/internal/validation"
)

// RecordSource provides the shared record list
type RecordSource interface {
	Records() ([]models.User, error)
	Refresh(ctx context.Context) error
	Status() source.Status
}

// TableHandler serves the users table as an HTML page and as JSON
type TableHandler struct {
	source   RecordSource
	logger   *logging.Logger
	defaults table.ViewState
}

// NewTableHandler creates a handler whose fresh sessions show defaultItemsPerPage rows.
// An invalid page size falls back to table.DefaultItemsPerPage.
func NewTableHandler(src RecordSource, logger *logging.Logger, defaultItemsPerPage int) *TableHandler {
	defaults := table.DefaultState()
	if s, err := defaults.WithItemsPerPage(defaultItemsPerPage); err == nil {
		defaults = s
	}
	return &TableHandler{
		source:   src,
		logger:   logger,
		defaults: defaults,
	}
}

// RegisterRoutes mounts the table endpoints on mux, plus the 405 answers for
// their other methods and the catch-all 404
func (h *TableHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.GetPage)
	mux.HandleFunc("GET /api/users", h.GetUsers)
	mux.HandleFunc("POST /api/refresh", h.Refresh)

	mux.Handle("/{$}", MethodNotAllowed(http.MethodGet, http.MethodHead))
	mux.Handle("/api/users", MethodNotAllowed(http.MethodGet, http.MethodHead))
	mux.Handle("/api/refresh", MethodNotAllowed(http.MethodPost))
	mux.HandleFunc("/", NotFound)
}

// UsersResponse is the JSON body of GET /api/users
type UsersResponse struct {
	Users      []models.User  `json:"users"`
	Pagination PaginationInfo `json:"pagination"`
	Sort       SortInfo       `json:"sort"`
	Search     string         `json:"search"`
}

// PaginationInfo describes the derived page
type PaginationInfo struct {
	CurrentPage  int  `json:"current_page"`
	ItemsPerPage int  `json:"items_per_page"`
	TotalPages   int  `json:"total_pages"`
	TotalItems   int  `json:"total_items"`
	HasPrevious  bool `json:"has_previous"`
	HasNext      bool `json:"has_next"`
}

// SortInfo echoes the sort column and direction
type SortInfo struct {
	Field    table.SortField `json:"field"`
	Reversed bool            `json:"reversed"`
}

// NewUsersResponse converts a derived view into the JSON response
func NewUsersResponse(view table.View) UsersResponse {
	users := view.Rows
	if users == nil {
		users = []models.User{}
	}
	return UsersResponse{
		Users: users,
		Pagination: PaginationInfo{
			CurrentPage:  view.State.CurrentPage,
			ItemsPerPage: view.State.ItemsPerPage,
			TotalPages:   view.TotalPages,
			TotalItems:   view.FilteredCount,
			HasPrevious:  view.HasPrevious,
			HasNext:      view.HasNext,
		},
		Sort:   SortInfo{Field: view.State.SortField, Reversed: view.State.SortReversed},
		Search: view.State.SearchTerm,
	}
}

// derive parses the request state and derives the page. On failure it has already
// written the error response.
func (h *TableHandler) derive(w http.ResponseWriter, r *http.Request, logger *logging.Logger) (table.View, bool) {
	state, err := ParseTableQuery(r.URL.Query(), h.defaults)
	if err != nil {
		logger.Warn("invalid table query", logging.Err(err),
			logging.FieldQuery, validation.TruncateString(r.URL.RawQuery, middleware.MaxLoggedQueryLength))
		param := ""
		if pe, ok := err.(*ParamError); ok {
			param = pe.Param
		}
		errors.WriteValidationError(w, r, param, err)
		return table.View{}, false
	}

	records, err := h.source.Records()
	if err != nil {
		logger.Warn("records unavailable", logging.Err(err))
		errors.WriteError(w, r, errors.MapSourceErrorSecure(err))
		return table.View{}, false
	}

	return table.NewControllerWithState(records, state).View(), true
}

// GetUsers handles GET /api/users
func (h *TableHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()
	logger := h.logger.WithRequestID(middleware.GetRequestID(r.Context()))

	logger.Debug("Starting users request",
		logging.FieldQuery, validation.TruncateString(r.URL.RawQuery, middleware.MaxLoggedQueryLength))

	view, ok := h.derive(w, r, logger)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(NewUsersResponse(view)); err != nil {
		logger.Error("Failed to encode users response", logging.Err(err))
		return
	}

	logger.Info("Users request completed",
		logging.FieldDurationMs, time.Since(startTime).Milliseconds(),
		"rows", len(view.Rows),
		"total_items", view.FilteredCount,
		"page", view.State.CurrentPage,
	)
}

// GetPage handles GET / with the HTML table
func (h *TableHandler) GetPage(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()
	logger := h.logger.WithRequestID(middleware.GetRequestID(r.Context()))

	view, ok := h.derive(w, r, logger)
	if !ok {
		return
	}

	if err := renderPage(w, r.URL.Path, view, h.source.Status()); err != nil {
		logger.Error("Failed to render table page", logging.Err(err))
		return
	}

	logger.Info("Table page completed",
		logging.FieldDurationMs, time.Since(startTime).Milliseconds(),
		"rows", len(view.Rows),
	)
}

// Refresh handles POST /api/refresh: fetch the directory again and swap the records
func (h *TableHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()
	logger := h.logger.WithRequestID(middleware.GetRequestID(r.Context()))

	logger.Info("Starting refresh request")

	if err := h.source.Refresh(r.Context()); err != nil {
		logger.Error("Refresh failed", logging.Err(err))
		errors.WriteError(w, r, errors.MapSourceErrorSecure(err))
		return
	}

	status := h.source.Status()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(status); err != nil {
		logger.Error("Failed to encode refresh response", logging.Err(err))
		return
	}

	logger.Info("Refresh request completed",
		logging.FieldDurationMs, time.Since(startTime).Milliseconds(),
		logging.Records(status.Records),
		logging.Origin(string(status.Origin)),
	)
}
