package table

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chybatronik/goUsersTable/internal/models"
	pkgerrors "github.com/chybatronik/goUsersTable/pkg/errors"
)

func TestNewControllerDefaults(t *testing.T) {
	c := NewController(generateRecords(10, 1))

	state := c.State()
	assert.Equal(t, "", state.SearchTerm)
	assert.Equal(t, 100, state.ItemsPerPage)
	assert.Equal(t, 0, state.CurrentPage)
	assert.Equal(t, FieldFullName, state.SortField)
	assert.False(t, state.SortReversed)

	assert.Len(t, c.View().Rows, 10)
	assert.Equal(t, 1, c.View().TotalPages)
}

func TestControllerSetSearchTermResetsPage(t *testing.T) {
	c := NewController(generateRecords(250, 2))
	require.NoError(t, c.SetItemsPerPage(20))
	c.SetCurrentPage(4)

	c.SetSearchTerm("ALICE")

	assert.Equal(t, "alice", c.State().SearchTerm)
	assert.Equal(t, 0, c.State().CurrentPage)
	for _, r := range c.View().Rows {
		assert.Contains(t, strings.ToLower(r.FullName), "alice")
	}
}

func TestControllerSetItemsPerPageKeepsPage(t *testing.T) {
	c := NewController(generateRecords(45, 3))
	require.NoError(t, c.SetItemsPerPage(20))
	c.SetCurrentPage(2)

	require.NoError(t, c.SetItemsPerPage(100))

	assert.Equal(t, 2, c.State().CurrentPage)
	assert.Equal(t, 1, c.View().TotalPages)
	assert.Empty(t, c.View().Rows)
	assert.False(t, c.View().HasNext)
	assert.True(t, c.View().HasPrevious)
}

func TestControllerSetItemsPerPageRejectsUnknownSize(t *testing.T) {
	c := NewController(generateRecords(5, 4))

	for _, n := range []int{0, -20, 10, 25, 1000} {
		err := c.SetItemsPerPage(n)
		require.Error(t, err, "size %d", n)

		tableErr, ok := pkgerrors.GetTableError(err)
		require.True(t, ok)
		assert.Equal(t, pkgerrors.ErrCodeInvalidPageSize, tableErr.Code)
		assert.Equal(t, 100, c.State().ItemsPerPage)
	}
}

func TestControllerSortToggle(t *testing.T) {
	records := generateRecords(60, 5)
	c := NewController(records)

	require.NoError(t, c.SetSortField(FieldBalance))
	assert.Equal(t, FieldBalance, c.State().SortField)
	assert.False(t, c.State().SortReversed)
	ascending := ids(c.View().Rows)

	require.NoError(t, c.SetSortField(FieldBalance))
	assert.True(t, c.State().SortReversed)

	require.NoError(t, c.SetSortField(FieldBalance))
	assert.False(t, c.State().SortReversed)
	assert.Equal(t, ascending, ids(c.View().Rows))

	require.NoError(t, c.SetSortField(FieldBalance))
	require.NoError(t, c.SetSortField(FieldCountry))
	assert.Equal(t, FieldCountry, c.State().SortField)
	assert.False(t, c.State().SortReversed)
}

func TestControllerSortKeepsPage(t *testing.T) {
	c := NewController(generateRecords(45, 6))
	require.NoError(t, c.SetItemsPerPage(20))
	c.SetCurrentPage(1)

	require.NoError(t, c.SetSortField(FieldState))
	assert.Equal(t, 1, c.State().CurrentPage)
}

func TestControllerSetSortFieldRejectsUnknownField(t *testing.T) {
	c := NewController(generateRecords(5, 7))

	err := c.SetSortField(SortField("email"))
	require.Error(t, err)

	tableErr, ok := pkgerrors.GetTableError(err)
	require.True(t, ok)
	assert.Equal(t, pkgerrors.ErrCodeInvalidSortField, tableErr.Code)
	assert.Equal(t, FieldFullName, c.State().SortField)
}

func TestControllerPaging(t *testing.T) {
	c := NewController(generateRecords(45, 8))
	require.NoError(t, c.SetItemsPerPage(20))

	assert.False(t, c.PreviousPage())
	assert.Equal(t, 0, c.State().CurrentPage)

	assert.True(t, c.NextPage())
	assert.True(t, c.NextPage())
	assert.Equal(t, 2, c.State().CurrentPage)
	assert.Len(t, c.View().Rows, 5)

	assert.False(t, c.NextPage())
	assert.Equal(t, 2, c.State().CurrentPage)

	assert.True(t, c.PreviousPage())
	assert.Equal(t, 1, c.State().CurrentPage)
}

func TestControllerSetCurrentPageIsNotClamped(t *testing.T) {
	c := NewController(generateRecords(10, 9))

	c.SetCurrentPage(7)
	assert.Equal(t, 7, c.State().CurrentPage)
	assert.Empty(t, c.View().Rows)

	c.SetCurrentPage(-3)
	assert.Equal(t, -3, c.State().CurrentPage)
	assert.Empty(t, c.View().Rows)
}

func TestControllerSetRecordsRecomputes(t *testing.T) {
	c := NewController(nil)
	assert.Empty(t, c.View().Rows)
	assert.Equal(t, 0, c.View().TotalPages)

	c.SetRecords([]models.User{
		{ID: "2", FullName: "Zed"},
		{ID: "1", FullName: "Amy"},
	})

	assert.Equal(t, []string{"1", "2"}, ids(c.View().Rows))
	assert.Len(t, c.Records(), 2)
}
