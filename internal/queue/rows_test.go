package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"jobdeck/internal/model"
)

func TestBuildRowsMergesOverlaysWithoutMutatingJobs(t *testing.T) {
	jobs := []model.Job{
		{ID: "a", Priority: 4, Status: model.StatusRunning},
		{ID: "b", Priority: 2, Status: model.StatusQueued},
	}
	ov := NewOverrides()
	ov.Set("a", 1)
	prog := map[string]model.ProgressCounts{"a": {Done: 5, Total: 10}}

	rows := BuildRows(jobs, ov, prog)
	require.Equal(t, 1, rows[0].Priority)
	require.True(t, rows[0].Overridden)
	require.True(t, rows[0].HasProgress)
	require.Equal(t, 5, rows[0].Progress.Done)
	require.Equal(t, 2, rows[1].Priority)
	require.False(t, rows[1].HasProgress)

	// Truth is untouched.
	require.Equal(t, 4, jobs[0].Priority)
}

func TestArrangeByOrder(t *testing.T) {
	rows := BuildRows([]model.Job{
		{ID: "a"}, {ID: "b"}, {ID: "c"},
	}, nil, nil)

	got := ArrangeByOrder(rows, []string{"c", "a", "b"})
	require.Equal(t, []string{"c", "a", "b"}, RowIDs(got))

	// Ids missing from the order keep their relative position at the end.
	got = ArrangeByOrder(rows, []string{"b"})
	require.Equal(t, []string{"b", "a", "c"}, RowIDs(got))
}

func TestPageWindows(t *testing.T) {
	rows := BuildRows([]model.Job{
		{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}, {ID: "e"},
	}, nil, nil)

	require.Equal(t, []string{"a", "b"}, RowIDs(Page(rows, 0, 2)))
	require.Equal(t, []string{"c", "d"}, RowIDs(Page(rows, 1, 2)))
	require.Equal(t, []string{"e"}, RowIDs(Page(rows, 2, 2)))
	require.Empty(t, Page(rows, 3, 2))

	require.Equal(t, 3, PageCount(5, 2))
	require.Equal(t, 1, PageCount(0, 2))
	require.Equal(t, 1, PageCount(2, 2))
}

func TestActiveIDs(t *testing.T) {
	rows := BuildRows([]model.Job{
		{ID: "a", Status: model.StatusRunning},
		{ID: "b", Status: model.StatusQueued},
		{ID: "c", Status: model.StatusPausing},
	}, nil, nil)
	require.Equal(t, []string{"a", "c"}, ActiveIDs(rows))
}

func TestStoreKeepsSnapshotOnRefreshFailure(t *testing.T) {
	s := NewStore()
	require.False(t, s.Loaded())
	require.Empty(t, s.Current().Jobs)

	s.Apply([]model.Job{{ID: "a"}}, time.Now())
	gen := s.Generation()

	s.ApplyError(assertErr{})
	require.True(t, s.Loaded())
	require.Len(t, s.Current().Jobs, 1)
	require.Equal(t, gen, s.Generation())
	require.Error(t, s.LastError())

	s.Apply([]model.Job{{ID: "a"}, {ID: "b"}}, time.Now())
	require.NoError(t, s.LastError())
	require.Equal(t, gen+1, s.Generation())
	require.Equal(t, []string{"a", "b"}, s.IDs())
}

type assertErr struct{}

func (assertErr) Error() string { return "refresh failed" }
