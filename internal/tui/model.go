// Package tui is the interactive terminal view of the users table.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	btable "github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/chybatronik/goUsersTable/internal/models"
	"github.com/chybatronik/goUsersTable/internal/table"
	"github.com/chybatronik/goUsersTable/internal/validation"
)

// ViewState is the screen the model is showing
type ViewState int

const (
	// ViewStateLoading waits for the record fetch.
	ViewStateLoading ViewState = iota
	// ViewStateList shows the table.
	ViewStateList
	// ViewStateError shows the fetch error.
	ViewStateError
	// ViewStateQuitting renders nothing while the program exits.
	ViewStateQuitting
)

// Sort indicators on the active column header
const (
	indicatorAscending = "▼"
	indicatorReversed  = "▲"
)

// Key bindings
const (
	keyQuit  = "q"
	keyCtrlC = "ctrl+c"
	keySlash = "/"
	keyEnter = "enter"
	keyEsc   = "esc"
	keyLeft  = "left"
	keyH     = "h"
	keyRight = "right"
	keyL     = "l"
	keyP     = "p"
)

const (
	defaultWidth  = 120
	defaultHeight = 30

	// chromeHeight is the number of lines around the table body.
	chromeHeight = 9
	minTableRows = 3

	searchCharLimit = validation.MaxSearchTermLength
	searchWidth     = 40
)

var columnWidths = map[table.SortField]int{
	table.FieldFullName:   24,
	table.FieldBalance:    12,
	table.FieldIsActive:   9,
	table.FieldRegistered: 28,
	table.FieldState:      16,
	table.FieldCountry:    16,
}

// Loader fetches the record list the table session runs over.
// It should honour ctx cancellation.
type Loader func(ctx context.Context) ([]models.User, error)

type recordsLoadedMsg struct {
	records []models.User
	err     error
}

// Model is the Bubble Tea model for the users table
type Model struct {
	ctx   context.Context
	load  Loader
	state ViewState

	controller *table.Controller
	table      btable.Model
	search     textinput.Model
	spinner    spinner.Model
	searching  bool

	width  int
	height int

	// warning is shown under the search line until the next accepted input
	warning string
	err     error
}

// NewModel creates a model that starts loading records with load.
// itemsPerPage falls back to the default when it is not one of the offered sizes.
func NewModel(ctx context.Context, load Loader, itemsPerPage int) *Model {
	controller := table.NewController(nil)
	if table.ValidItemsPerPage(itemsPerPage) {
		_ = controller.SetItemsPerPage(itemsPerPage)
	}

	s := spinner.New()
	s.Spinner = spinner.Dot

	m := &Model{
		ctx:        ctx,
		load:       load,
		state:      ViewStateLoading,
		controller: controller,
		search:     newSearchInput(),
		spinner:    s,
		width:      defaultWidth,
		height:     defaultHeight,
	}
	m.table = newUsersTable(m.tableHeight())
	m.rebuildTable()
	return m
}

func newSearchInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "Search users..."
	ti.Prompt = "Search: "
	ti.CharLimit = searchCharLimit
	ti.Width = searchWidth
	return ti
}

func newUsersTable(height int) btable.Model {
	t := btable.New(
		btable.WithFocused(true),
		btable.WithHeight(height),
	)

	s := btable.DefaultStyles()
	s.Header = TableHeaderStyle
	s.Selected = TableSelectedStyle
	t.SetStyles(s)

	return t
}

// Init starts the spinner and the record fetch.
func (m *Model) Init() tea.Cmd {
	if m.state != ViewStateLoading {
		return nil
	}
	return tea.Batch(m.spinner.Tick, m.fetch())
}

func (m *Model) fetch() tea.Cmd {
	ctx, load := m.ctx, m.load
	return func() tea.Msg {
		records, err := load(ctx)
		return recordsLoadedMsg{records: records, err: err}
	}
}

// Update handles messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if winMsg, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = winMsg.Width
		m.height = winMsg.Height
		m.table.SetHeight(m.tableHeight())
		m.table.SetWidth(m.width)
		return m, nil
	}

	if loaded, ok := msg.(recordsLoadedMsg); ok {
		return m.handleLoaded(loaded)
	}

	switch m.state {
	case ViewStateLoading:
		return m.handleLoadingUpdate(msg)
	case ViewStateList:
		if m.searching {
			return m.handleSearchInput(msg)
		}
		return m.handleListUpdate(msg)
	case ViewStateError, ViewStateQuitting:
		return m.handleQuitUpdate(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleLoaded(msg recordsLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.err = msg.err
		m.state = ViewStateError
		return m, nil
	}
	m.controller.SetRecords(msg.records)
	m.state = ViewStateList
	m.rebuildTable()
	return m, nil
}

func (m *Model) handleLoadingUpdate(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && isQuitKey(keyMsg.String()) {
		m.state = ViewStateQuitting
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

func (m *Model) handleQuitUpdate(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && isQuitKey(keyMsg.String()) {
		m.state = ViewStateQuitting
		return m, tea.Quit
	}
	return m, nil
}

// handleSearchInput applies the search term on every keystroke
func (m *Model) handleSearchInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case keyEnter, keyEsc:
			m.searching = false
			m.search.Blur()
			m.table.Focus()
			return m, nil
		case keyCtrlC:
			m.state = ViewStateQuitting
			return m, tea.Quit
		}
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)

	if term := m.search.Value(); term != before {
		if err := validation.ValidateSearchTerm(term); err != nil {
			m.warning = "search term contains invalid characters"
			return m, cmd
		}
		m.warning = ""
		m.controller.SetSearchTerm(term)
		m.rebuildTable()
	}
	return m, cmd
}

func (m *Model) handleListUpdate(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}

	key := keyMsg.String()
	switch key {
	case keyQuit, keyCtrlC:
		m.state = ViewStateQuitting
		return m, tea.Quit
	case keySlash:
		m.searching = true
		m.table.Blur()
		return m, m.search.Focus()
	case keyLeft, keyH:
		if m.controller.PreviousPage() {
			m.rebuildTable()
		}
		return m, nil
	case keyRight, keyL:
		if m.controller.NextPage() {
			m.rebuildTable()
		}
		return m, nil
	case keyP:
		m.cyclePageSize()
		return m, nil
	}

	if field, ok := sortKeyField(key); ok {
		_ = m.controller.SetSortField(field)
		m.rebuildTable()
		return m, nil
	}

	// up/down and friends move the cursor
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// sortKeyField maps "1".."6" to the columns in display order
func sortKeyField(key string) (table.SortField, bool) {
	if len(key) != 1 || key[0] < '1' || key[0] > '9' {
		return "", false
	}
	i := int(key[0] - '1')
	if i >= len(table.Columns) {
		return "", false
	}
	return table.Columns[i].Field, true
}

// cyclePageSize moves to the next offered page size, wrapping around.
// The current page is kept.
func (m *Model) cyclePageSize() {
	current := m.controller.State().ItemsPerPage
	next := table.ItemsPerPageOptions[0]
	for i, n := range table.ItemsPerPageOptions {
		if n == current && i+1 < len(table.ItemsPerPageOptions) {
			next = table.ItemsPerPageOptions[i+1]
			break
		}
	}
	_ = m.controller.SetItemsPerPage(next)
	m.rebuildTable()
}

func isQuitKey(key string) bool {
	return key == keyQuit || key == keyCtrlC
}

func (m *Model) tableHeight() int {
	h := m.height - chromeHeight
	if h < minTableRows {
		h = minTableRows
	}
	return h
}

// rebuildTable copies the derived view into the bubbles table
func (m *Model) rebuildTable() {
	view := m.controller.View()

	columns := make([]btable.Column, len(table.Columns))
	for i, col := range table.Columns {
		columns[i] = btable.Column{
			Title: headerTitle(col, view.State),
			Width: columnWidths[col.Field],
		}
	}

	rows := make([]btable.Row, len(view.Rows))
	for i, u := range view.Rows {
		rows[i] = btable.Row{u.FullName, u.Balance, u.ActiveLabel(), u.Registered, u.State, u.Country}
	}

	m.table.SetColumns(columns)
	m.table.SetRows(rows)
	m.table.GotoTop()
}

func headerTitle(col table.Column, state table.ViewState) string {
	if col.Field != state.SortField {
		return col.Title
	}
	if state.SortReversed {
		return col.Title + " " + indicatorReversed
	}
	return col.Title + " " + indicatorAscending
}

// State returns the screen currently shown
func (m *Model) State() ViewState {
	return m.state
}

// TableState returns the table session state
func (m *Model) TableState() table.ViewState {
	return m.controller.State()
}

// Err returns the fetch error, if any
func (m *Model) Err() error {
	return m.err
}

// View renders the current view.
func (m *Model) View() string {
	switch m.state {
	case ViewStateQuitting:
		return ""
	case ViewStateLoading:
		return fmt.Sprintf("\n %s Loading users...\n\n", m.spinner.View())
	case ViewStateError:
		return "\n" + ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n" +
			MutedStyle.Render("press q to quit") + "\n"
	case ViewStateList:
		return m.renderList()
	default:
		return ""
	}
}

func (m *Model) renderList() string {
	view := m.controller.View()
	state := view.State

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Users"))
	b.WriteString("\n\n")

	if m.searching {
		b.WriteString(m.search.View())
	} else if state.SearchTerm != "" {
		b.WriteString("Search: " + state.SearchTerm)
	} else {
		b.WriteString(MutedStyle.Render("Search: (press / to search)"))
	}
	b.WriteString("\n")
	if m.warning != "" {
		b.WriteString(ErrorStyle.Render(m.warning))
	}
	b.WriteString("\n")

	b.WriteString("Items per page: ")
	for i, n := range table.ItemsPerPageOptions {
		if i > 0 {
			b.WriteString(" ")
		}
		label := fmt.Sprint(n)
		if n == state.ItemsPerPage {
			label = ActiveStyle.Render("[" + label + "]")
		}
		b.WriteString(label)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Current page: %d of %d pages   %s %s\n",
		state.CurrentPage+1, view.TotalPages,
		pagerButton("< Previous", view.HasPrevious),
		pagerButton("Next >", view.HasNext))

	b.WriteString(m.table.View())
	b.WriteString("\n")
	b.WriteString(MutedStyle.Render(fmt.Sprintf(
		"%d matching records  / search  1-6 sort  ←/h →/l page  p page size  q quit",
		view.FilteredCount)))
	b.WriteString("\n")

	return b.String()
}

func pagerButton(label string, enabled bool) string {
	if enabled {
		return label
	}
	return MutedStyle.Render(label)
}
