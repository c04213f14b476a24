package queue

import (
	"time"

	"jobdeck/internal/model"
)

// Store holds the latest authoritative snapshot. A failed refresh keeps the
// previous snapshot (stale-but-available); callers surface the error and a
// refreshing indicator instead of blanking the view.
type Store struct {
	snap       model.Snapshot
	generation int
	loaded     bool
	refreshing bool
	lastErr    error
}

func NewStore() *Store {
	return &Store{}
}

// Apply replaces the held snapshot wholesale and clears any refresh error.
func (s *Store) Apply(jobs []model.Job, at time.Time) {
	s.snap = model.Snapshot{Jobs: append([]model.Job(nil), jobs...), ReceivedAt: at}
	s.generation++
	s.loaded = true
	s.refreshing = false
	s.lastErr = nil
}

// ApplyError records a refresh failure without discarding held data.
func (s *Store) ApplyError(err error) {
	s.refreshing = false
	s.lastErr = err
}

// Current returns the latest snapshot, empty before the first load.
func (s *Store) Current() model.Snapshot {
	return s.snap
}

// Generation increments on every successful Apply; cheap change detection
// for consumers that rebuild derived views.
func (s *Store) Generation() int {
	return s.generation
}

func (s *Store) Loaded() bool {
	return s.loaded
}

func (s *Store) SetRefreshing(v bool) {
	s.refreshing = v
}

func (s *Store) Refreshing() bool {
	return s.refreshing
}

func (s *Store) LastError() error {
	return s.lastErr
}

// IDs returns the job ids of the held snapshot in snapshot order.
func (s *Store) IDs() []string {
	ids := make([]string, 0, len(s.snap.Jobs))
	for _, j := range s.snap.Jobs {
		ids = append(ids, j.ID)
	}
	return ids
}
