package tui

import (
	"context"
	"errors"
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chybatronik/goUsersTable/internal/models"
	"github.com/chybatronik/goUsersTable/internal/table"
)

func testUsers(n int) []models.User {
	users := make([]models.User, n)
	for i := range users {
		users[i] = models.User{
			ID:       fmt.Sprint(i),
			FullName: fmt.Sprintf("User %03d", i),
			Balance:  fmt.Sprint(n - i),
			IsActive: i%2 == 0,
			Country:  "USA",
		}
	}
	return users
}

func staticLoader(users []models.User, err error) Loader {
	return func(ctx context.Context) ([]models.User, error) {
		return users, err
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// loadedModel returns a model that has already received its records
func loadedModel(t *testing.T, users []models.User) *Model {
	t.Helper()
	m := NewModel(context.Background(), staticLoader(users, nil), 20)
	m.Update(recordsLoadedMsg{records: users})
	require.Equal(t, ViewStateList, m.State())
	return m
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestNewModel(t *testing.T) {
	t.Run("starts loading", func(t *testing.T) {
		m := NewModel(context.Background(), staticLoader(nil, nil), 50)
		assert.Equal(t, ViewStateLoading, m.State())
		assert.Equal(t, 50, m.TableState().ItemsPerPage)
		assert.NotNil(t, m.Init())
		assert.Contains(t, m.View(), "Loading users")
	})

	t.Run("invalid page size falls back to default", func(t *testing.T) {
		m := NewModel(context.Background(), staticLoader(nil, nil), 30)
		assert.Equal(t, table.DefaultItemsPerPage, m.TableState().ItemsPerPage)
	})
}

func TestFetchCommand(t *testing.T) {
	users := testUsers(3)
	m := NewModel(context.Background(), staticLoader(users, nil), 20)

	msg := m.fetch()()
	loaded, ok := msg.(recordsLoadedMsg)
	require.True(t, ok)
	assert.Equal(t, users, loaded.records)

	m.Update(msg)
	assert.Equal(t, ViewStateList, m.State())
	assert.Len(t, m.table.Rows(), 3)
}

func TestLoadError(t *testing.T) {
	m := NewModel(context.Background(), staticLoader(nil, errors.New("upstream returned 502")), 20)
	m.Update(m.fetch()())

	assert.Equal(t, ViewStateError, m.State())
	assert.EqualError(t, m.Err(), "upstream returned 502")
	assert.Contains(t, m.View(), "upstream returned 502")

	_, cmd := m.Update(runes("q"))
	assert.True(t, isQuit(cmd))
	assert.Equal(t, ViewStateQuitting, m.State())
	assert.Empty(t, m.View())
}

func TestListView(t *testing.T) {
	m := loadedModel(t, testUsers(45))

	out := m.View()
	assert.Contains(t, out, "Current page: 1 of 3 pages")
	assert.Contains(t, out, "[20]")
	assert.Contains(t, out, "45 matching records")

	rows := m.table.Rows()
	require.Len(t, rows, 20)
	assert.Equal(t, "User 000", rows[0][0])
	assert.Equal(t, "yes", rows[0][2])
	assert.Equal(t, "no", rows[1][2])
	assert.Equal(t, "Full Name "+indicatorAscending, m.table.Columns()[0].Title)
}

func TestPagingKeys(t *testing.T) {
	m := loadedModel(t, testUsers(45))

	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, 0, m.TableState().CurrentPage, "previous is disabled on the first page")

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 1, m.TableState().CurrentPage)
	assert.Equal(t, "User 020", m.table.Rows()[0][0])

	m.Update(runes("l"))
	assert.Equal(t, 2, m.TableState().CurrentPage)
	m.Update(runes("l"))
	assert.Equal(t, 2, m.TableState().CurrentPage, "next is disabled on the last page")
	assert.Len(t, m.table.Rows(), 5)

	m.Update(runes("h"))
	assert.Equal(t, 1, m.TableState().CurrentPage)
}

func TestSortKeys(t *testing.T) {
	m := loadedModel(t, testUsers(5))

	m.Update(runes("1"))
	assert.Equal(t, table.FieldFullName, m.TableState().SortField)
	assert.True(t, m.TableState().SortReversed, "pressing the active column reverses it")
	assert.Equal(t, "User 004", m.table.Rows()[0][0])
	assert.Equal(t, "Full Name "+indicatorReversed, m.table.Columns()[0].Title)

	m.Update(runes("2"))
	assert.Equal(t, table.FieldBalance, m.TableState().SortField)
	assert.False(t, m.TableState().SortReversed)
	assert.Equal(t, "Full Name", m.table.Columns()[0].Title)

	m.Update(runes("6"))
	assert.Equal(t, table.FieldCountry, m.TableState().SortField)

	m.Update(runes("7"))
	assert.Equal(t, table.FieldCountry, m.TableState().SortField, "keys past the last column are ignored")
}

func TestPageSizeCycle(t *testing.T) {
	m := loadedModel(t, testUsers(45))
	m.Update(tea.KeyMsg{Type: tea.KeyRight})

	for _, want := range []int{50, 100, 20} {
		m.Update(runes("p"))
		assert.Equal(t, want, m.TableState().ItemsPerPage)
	}
	assert.Equal(t, 1, m.TableState().CurrentPage, "changing the page size keeps the page")
}

func TestSearch(t *testing.T) {
	users := testUsers(30)
	m := loadedModel(t, users)
	m.Update(tea.KeyMsg{Type: tea.KeyRight})

	m.Update(runes("/"))
	require.True(t, m.searching)

	// keys go to the input while searching
	m.Update(runes("q"))
	assert.Equal(t, ViewStateList, m.State())
	assert.Equal(t, "q", m.TableState().SearchTerm)
	assert.Empty(t, m.table.Rows())

	m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	m.Update(runes("U"))
	m.Update(runes("SER 01"))
	assert.Equal(t, "user 01", m.TableState().SearchTerm)
	assert.Equal(t, 0, m.TableState().CurrentPage, "searching goes back to the first page")
	assert.Len(t, m.table.Rows(), 10)

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.searching)
	assert.Contains(t, m.View(), "Search: user 01")

	m.Update(runes("2"))
	assert.Equal(t, table.FieldBalance, m.TableState().SortField)
	assert.Equal(t, "user 01", m.TableState().SearchTerm)
}

func TestSearchRejectsControlCharacters(t *testing.T) {
	m := loadedModel(t, testUsers(5))
	m.Update(runes("/"))

	m.Update(runes("a\u200b"))
	assert.Equal(t, "", m.TableState().SearchTerm)
	assert.Contains(t, m.View(), "invalid characters")

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.searching)
}

func TestQuitKeys(t *testing.T) {
	for _, key := range []tea.KeyMsg{runes("q"), {Type: tea.KeyCtrlC}} {
		m := loadedModel(t, testUsers(1))
		_, cmd := m.Update(key)
		assert.True(t, isQuit(cmd), key.String())
		assert.Equal(t, ViewStateQuitting, m.State())
	}

	m := NewModel(context.Background(), staticLoader(nil, nil), 20)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.True(t, isQuit(cmd), "quitting while loading")
}

func TestWindowResize(t *testing.T) {
	m := loadedModel(t, testUsers(5))
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 40})

	assert.Equal(t, 80, m.width)
	assert.Equal(t, 40-chromeHeight, m.tableHeight())

	m.Update(tea.WindowSizeMsg{Width: 80, Height: 4})
	assert.Equal(t, minTableRows, m.tableHeight())
}
