package queue

import (
	"testing"

	"github.com/stretchr/testify/require"

	"jobdeck/internal/model"
)

func sortFixture() []Row {
	jobs := []model.Job{
		{ID: "j1", Name: "charlie", Status: model.StatusRunning, Priority: 3, CreatedAt: "2026-08-02T00:00:00Z"},
		{ID: "j2", Name: "alpha", Status: model.StatusQueued, Priority: 1, CreatedAt: "2026-08-03T00:00:00Z"},
		{ID: "j3", Name: "bravo", Status: model.StatusQueued, Priority: 3, CreatedAt: ""},
		{ID: "j4", Name: "alpha", Status: model.StatusRunning, Priority: 2, CreatedAt: "2026-08-01T00:00:00Z"},
	}
	return BuildRows(jobs, nil, nil)
}

func ids(rows []Row) []string {
	return RowIDs(rows)
}

func TestSortByNameTiesKeepSnapshotOrder(t *testing.T) {
	got := SortRows(sortFixture(), SortName, false)
	require.Equal(t, []string{"j2", "j4", "j3", "j1"}, ids(got))

	// Descending inverts the key comparison only; ties still resolve by
	// snapshot index ascending.
	got = SortRows(sortFixture(), SortName, true)
	require.Equal(t, []string{"j1", "j3", "j2", "j4"}, ids(got))
}

func TestSortByCreatedMissingSortsEarliest(t *testing.T) {
	got := SortRows(sortFixture(), SortCreated, false)
	require.Equal(t, []string{"j3", "j4", "j1", "j2"}, ids(got))
}

func TestSortByPriority(t *testing.T) {
	got := SortRows(sortFixture(), SortPriority, false)
	require.Equal(t, []string{"j2", "j4", "j1", "j3"}, ids(got))
}

func TestSortDeterministic(t *testing.T) {
	once := SortRows(sortFixture(), SortStatus, true)
	twice := SortRows(once, SortStatus, true)
	require.Equal(t, once, twice)
}

func TestSortDoesNotMutateInput(t *testing.T) {
	rows := sortFixture()
	before := ids(rows)
	_ = SortRows(rows, SortName, false)
	require.Equal(t, before, ids(rows))
}

func TestReorderEnabled(t *testing.T) {
	c := NewCriteria()
	require.True(t, ReorderEnabled(c, SortManual))
	require.False(t, ReorderEnabled(c, SortName))

	c.HideCompleted = true
	require.False(t, ReorderEnabled(c, SortManual))

	c = NewCriteria()
	c.Query = "x"
	require.False(t, ReorderEnabled(c, SortManual))
}
