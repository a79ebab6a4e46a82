package table

import (
	"github.com/chybatronik/goUsersTable/internal/models"
)

// Controller owns the state of one table session and keeps its derived view current.
// Every setter recomputes the view before returning. A Controller is meant to be driven
// from a single goroutine (one UI event at a time) and is not safe for concurrent use.
type Controller struct {
	records []models.User
	state   ViewState
	view    View
}

// NewController starts a session over records with the default state.
func NewController(records []models.User) *Controller {
	return NewControllerWithState(records, DefaultState())
}

// NewControllerWithState starts a session over records with the given state.
func NewControllerWithState(records []models.User, state ViewState) *Controller {
	c := &Controller{records: records, state: state}
	c.recompute()
	return c
}

// SetRecords replaces the input record list.
func (c *Controller) SetRecords(records []models.User) {
	c.records = records
	c.recompute()
}

// SetSearchTerm lowercases and stores term, then goes back to the first page.
func (c *Controller) SetSearchTerm(term string) {
	c.state = c.state.WithSearchTerm(term)
	c.recompute()
}

// SetItemsPerPage changes the page size; n must be one of ItemsPerPageOptions.
// The current page is not reset.
func (c *Controller) SetItemsPerPage(n int) error {
	next, err := c.state.WithItemsPerPage(n)
	if err != nil {
		return err
	}
	c.state = next
	c.recompute()
	return nil
}

// SetSortField sorts by field, toggling the direction if it already is the sort column.
func (c *Controller) SetSortField(field SortField) error {
	next, err := c.state.WithSortField(field)
	if err != nil {
		return err
	}
	c.state = next
	c.recompute()
	return nil
}

// SetCurrentPage stores page as is.
func (c *Controller) SetCurrentPage(page int) {
	c.state = c.state.WithCurrentPage(page)
	c.recompute()
}

// NextPage moves one page forward unless the pager's next button is disabled.
// It reports whether the page changed.
func (c *Controller) NextPage() bool {
	if !c.view.HasNext {
		return false
	}
	c.SetCurrentPage(c.state.CurrentPage + 1)
	return true
}

// PreviousPage moves one page back unless the pager's previous button is disabled.
func (c *Controller) PreviousPage() bool {
	if !c.view.HasPrevious {
		return false
	}
	c.SetCurrentPage(c.state.CurrentPage - 1)
	return true
}

// State returns the current state.
func (c *Controller) State() ViewState {
	return c.state
}

// View returns the current derived view.
func (c *Controller) View() View {
	return c.view
}

// Records returns the input record list.
func (c *Controller) Records() []models.User {
	return c.records
}

func (c *Controller) recompute() {
	c.view = Derive(c.records, c.state)
}
