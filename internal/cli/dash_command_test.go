package cli

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"jobdeck/internal/config"
	"jobdeck/internal/model"
	"jobdeck/internal/queue"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newDashTestModel(jobs []model.Job) dashModel {
	pager := paginator.New()
	pager.PerPage = 20

	m := dashModel{
		cfg:       config.Config{RequestTimeout: time.Second, SnapshotInterval: time.Second, ProgressInterval: time.Second},
		log:       testLogger(),
		store:     queue.NewStore(),
		rec:       queue.NewReconciler(),
		poller:    queue.NewPoller(25),
		overrides: queue.NewOverrides(),
		selection: queue.NewSelection(),
		criteria:  queue.NewCriteria(),
		sortKey:   queue.SortManual,
		pageSize:  20,
		pager:     pager,
		search:    textinput.New(),
		spin:      spinner.New(),
		width:     120,
		height:    40,
	}
	m.store.Apply(jobs, time.Now())
	m.rec.ApplySnapshot(m.store.IDs())
	m.syncView()
	return m
}

func dashTestJobs() []model.Job {
	return []model.Job{
		{ID: "a", Name: "alpha", Owner: "ana", Status: model.StatusRunning, Priority: 3, CreatedAt: "2026-08-20T10:00:00Z"},
		{ID: "b", Name: "beta", Owner: "bob", Status: model.StatusQueued, Priority: 2, CreatedAt: "2026-08-21T10:00:00Z"},
		{ID: "c", Name: "gamma", Owner: "ana", Status: model.StatusPaused, Priority: 5, CreatedAt: "2026-08-22T10:00:00Z"},
	}
}

func keyRunes(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestDashMoveDownMarksOrderDirty(t *testing.T) {
	m := newDashTestModel(dashTestJobs())

	model, _ := m.updateBrowse(keyRunes('J'))
	m2 := model.(dashModel)
	if !m2.rec.Dirty() {
		t.Fatal("expected dirty order after move down")
	}
	if got := m2.rec.OrderedIDs(); got[0] != "b" || got[1] != "a" {
		t.Fatalf("expected order [b a c], got %v", got)
	}
}

func TestDashFilterActivationDiscardsPendingReorder(t *testing.T) {
	m := newDashTestModel(dashTestJobs())

	model, _ := m.updateBrowse(keyRunes('J'))
	m2 := model.(dashModel)
	if !m2.rec.Dirty() {
		t.Fatal("expected dirty order before filtering")
	}

	model, _ = m2.updateBrowse(keyRunes('H'))
	m3 := model.(dashModel)
	if m3.rec.Dirty() {
		t.Fatal("expected pending reorder discarded when a filter activates")
	}
	if m3.rec.Enabled() {
		t.Fatal("expected reorder disabled while filtered")
	}
}

func TestDashSnapshotReconcilesDuringDirtyOrder(t *testing.T) {
	m := newDashTestModel(dashTestJobs())

	model, _ := m.updateBrowse(keyRunes('J')) // order b,a,c
	m2 := model.(dashModel)

	refreshed := append(dashTestJobs(), queuedJob("d", "delta"))
	teaModel, _ := m2.Update(snapshotMsg{jobs: refreshed})
	m3 := teaModel.(dashModel)

	got := m3.rec.OrderedIDs()
	want := []string{"b", "a", "c", "d"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected reconciled order %v, got %v", want, got)
		}
	}
	if !m3.rec.Dirty() {
		t.Fatal("expected order to stay dirty across refresh")
	}
}

func queuedJob(id, name string) model.Job {
	return model.Job{ID: id, Name: name, Owner: "ana", Status: model.StatusQueued, Priority: 3, CreatedAt: "2026-08-23T10:00:00Z"}
}

func TestDashSnapshotErrorKeepsLastData(t *testing.T) {
	m := newDashTestModel(dashTestJobs())

	teaModel, _ := m.Update(snapshotMsg{err: errors.New("boom")})
	m2 := teaModel.(dashModel)

	if got := len(m2.store.Current().Jobs); got != 3 {
		t.Fatalf("expected 3 jobs retained, got %d", got)
	}
	if m2.store.LastError() == nil {
		t.Fatal("expected last error recorded")
	}
	if m2.statusMessage == "" {
		t.Fatal("expected non-empty status message")
	}
}

func TestDashStaleStatsResponseIgnored(t *testing.T) {
	m := newDashTestModel(dashTestJobs())
	m.statsSeq = 2

	teaModel, _ := m.Update(statsResultMsg{seq: 1, stats: model.JobStats{CostUSD: 9.99}})
	m2 := teaModel.(dashModel)
	if m2.statsLoaded {
		t.Fatal("expected stale stats response to be dropped")
	}

	teaModel, _ = m2.Update(statsResultMsg{seq: 2, stats: model.JobStats{CostUSD: 9.99}})
	m3 := teaModel.(dashModel)
	if !m3.statsLoaded || m3.stats.CostUSD != 9.99 {
		t.Fatal("expected matching stats response to be applied")
	}
}

func TestDashSelectionClearedWhenCriteriaChange(t *testing.T) {
	m := newDashTestModel(dashTestJobs())

	model, _ := m.updateBrowse(tea.KeyMsg{Type: tea.KeySpace})
	m2 := model.(dashModel)
	if m2.selection.Count() != 1 {
		t.Fatalf("expected 1 selected, got %d", m2.selection.Count())
	}

	model, _ = m2.updateBrowse(keyRunes('1'))
	m3 := model.(dashModel)
	if m3.selection.Count() != 0 {
		t.Fatal("expected selection cleared after criteria change")
	}
}

func TestDashPriorityFailureRollsBackOverride(t *testing.T) {
	m := newDashTestModel(dashTestJobs())
	m.overrides.Set("a", 1)

	teaModel, _ := m.Update(priorityResultMsg{id: "a", priority: 1, err: errors.New("denied")})
	m2 := teaModel.(dashModel)

	if _, ok := m2.overrides.Get("a"); ok {
		t.Fatal("expected override removed after failed priority update")
	}
	if m2.statusMessage == "" {
		t.Fatal("expected non-empty status message")
	}
}

func TestDashDeleteRequiresEligibleSelection(t *testing.T) {
	m := newDashTestModel(dashTestJobs())
	m.selection.Toggle("a") // running, not deletable

	model, _ := m.updateBrowse(keyRunes('D'))
	m2 := model.(dashModel)
	if m2.mode == dashModeConfirm {
		t.Fatal("expected no confirm prompt for ineligible selection")
	}

	m2.selection.Toggle("c") // paused, deletable
	model, _ = m2.updateBrowse(keyRunes('D'))
	m3 := model.(dashModel)
	if m3.mode != dashModeConfirm {
		t.Fatal("expected confirm prompt")
	}
	if len(m3.confirmIDs) != 1 || m3.confirmIDs[0] != "c" {
		t.Fatalf("expected confirm targets [c], got %v", m3.confirmIDs)
	}
}
