package queue

import (
	"testing"

	"github.com/stretchr/testify/require"

	"jobdeck/internal/model"
)

func sampleRows() []Row {
	jobs := []model.Job{
		{ID: "j1", Name: "alpha-job", Owner: "ada", Status: model.StatusCompleted, Priority: 2, CreatedAt: "2026-08-01T10:00:00Z"},
		{ID: "j2", Name: "gamma-job", Owner: "bob", Status: model.StatusQueued, Priority: 4, CreatedAt: "2026-08-02T10:00:00Z"},
		{ID: "j3", Name: "beta-job", Owner: "ada", Status: model.StatusRunning, Priority: 1, CreatedAt: "2026-08-03T10:00:00Z"},
	}
	return BuildRows(jobs, nil, nil)
}

func TestFilterEmptyCriteriaIsIdentity(t *testing.T) {
	rows := sampleRows()
	got := Filter(rows, NewCriteria())
	require.Equal(t, rows, got)
}

func TestFilterPredicatesAnd(t *testing.T) {
	rows := sampleRows()
	c := NewCriteria()
	c.Owners["ada"] = true
	c.HideCompleted = true

	got := Filter(rows, c)
	require.Len(t, got, 1)
	require.Equal(t, "j3", got[0].Job.ID)
}

func TestFilterUsesEffectivePriority(t *testing.T) {
	jobs := []model.Job{
		{ID: "j1", Name: "one", Priority: 4, Status: model.StatusQueued},
	}
	ov := NewOverrides()
	ov.Set("j1", 2)
	rows := BuildRows(jobs, ov, nil)

	c := NewCriteria()
	c.Priorities[2] = true
	require.Len(t, Filter(rows, c), 1)

	c = NewCriteria()
	c.Priorities[4] = true
	require.Empty(t, Filter(rows, c))
}

func TestFilterQueryAlternationAndConjunction(t *testing.T) {
	rows := sampleRows()

	// (alpha OR beta) AND done: only the completed alpha job matches, since
	// completed renders as "done" in the searchable text.
	c := NewCriteria()
	c.Query = "alpha|beta done"
	got := Filter(rows, c)
	require.Len(t, got, 1)
	require.Equal(t, "alpha-job", got[0].Job.Name)

	c.Query = "alpha|beta"
	got = Filter(rows, c)
	require.Len(t, got, 2)

	c.Query = "nope"
	require.Empty(t, Filter(rows, c))
}

func TestFilterQueryMatchesOwnerAndCreatedDate(t *testing.T) {
	rows := sampleRows()

	c := NewCriteria()
	c.Query = "bob"
	got := Filter(rows, c)
	require.Len(t, got, 1)
	require.Equal(t, "j2", got[0].Job.ID)

	c.Query = "2026-08-03"
	got = Filter(rows, c)
	require.Len(t, got, 1)
	require.Equal(t, "j3", got[0].Job.ID)
}

func TestCriteriaActive(t *testing.T) {
	c := NewCriteria()
	require.False(t, c.Active())

	c.Query = "  "
	require.False(t, c.Active())

	c.HideCompleted = true
	require.True(t, c.Active())

	c = NewCriteria()
	c.Priorities[3] = true
	require.True(t, c.Active())
}

func TestCriteriaFingerprintStable(t *testing.T) {
	a := NewCriteria()
	a.Owners["x"] = true
	a.Owners["y"] = true

	b := NewCriteria()
	b.Owners["y"] = true
	b.Owners["x"] = true

	require.Equal(t, a.Fingerprint(), b.Fingerprint())

	b.HideCompleted = true
	require.NotEqual(t, a.Fingerprint(), b.Fingerprint())
}
