package queue

import (
	"testing"

	"github.com/stretchr/testify/require"

	"jobdeck/internal/model"
)

func TestOverrideRollbackRevertsDisplayedPriority(t *testing.T) {
	jobs := []model.Job{{ID: "x", Name: "x", Priority: 5, Status: model.StatusQueued}}
	ov := NewOverrides()

	ov.Set("x", 3)
	rows := BuildRows(jobs, ov, nil)
	require.Equal(t, 3, rows[0].Priority)
	require.True(t, rows[0].Overridden)

	// Remote write failed: drop the override, display reverts to truth.
	ov.Remove("x")
	rows = BuildRows(jobs, ov, nil)
	require.Equal(t, 5, rows[0].Priority)
	require.False(t, rows[0].Overridden)
}

func TestOverrideSetClampsRange(t *testing.T) {
	ov := NewOverrides()
	ov.Set("x", 0)
	p, _ := ov.Get("x")
	require.Equal(t, 1, p)

	ov.Set("x", 9)
	p, _ = ov.Get("x")
	require.Equal(t, 5, p)
}

func TestConfirmFromSnapshotDropsConfirmedAndDeleted(t *testing.T) {
	ov := NewOverrides()
	ov.Set("a", 2)
	ov.Set("b", 1)
	ov.Set("gone", 4)

	// Snapshot confirms a (stored == override), still disagrees on b, and
	// no longer contains gone.
	ov.ConfirmFromSnapshot([]model.Job{
		{ID: "a", Priority: 2},
		{ID: "b", Priority: 3},
	})

	_, ok := ov.Get("a")
	require.False(t, ok)
	_, ok = ov.Get("gone")
	require.False(t, ok)
	p, ok := ov.Get("b")
	require.True(t, ok)
	require.Equal(t, 1, p)
}

func TestEligibleTargetsIntersection(t *testing.T) {
	jobs := []model.Job{
		{ID: "q", Status: model.StatusQueued},
		{ID: "r", Status: model.StatusRunning},
		{ID: "p", Status: model.StatusPaused},
		{ID: "c", Status: model.StatusCompleted},
	}
	selected := map[string]bool{"q": true, "r": true, "p": true, "c": true}

	require.Equal(t, []string{"q", "r"}, EligibleTargets(model.ActionPause, selected, jobs))
	require.Equal(t, []string{"p"}, EligibleTargets(model.ActionResume, selected, jobs))
	require.Equal(t, []string{"r"}, EligibleTargets(model.ActionCancel, selected, jobs))
	require.Equal(t, []string{"q", "p", "c"}, EligibleTargets(model.ActionDelete, selected, jobs))

	// Unselected jobs never become targets.
	require.Empty(t, EligibleTargets(model.ActionPause, map[string]bool{}, jobs))
}
