package queue

import "jobdeck/internal/model"

// Overrides is the optimistic priority overlay: an entry exists from the
// moment the user commits an edit until the next snapshot confirms the
// value or the remote write fails. Rollback is deleting the entry.
type Overrides struct {
	m map[string]int
}

func NewOverrides() *Overrides {
	return &Overrides{m: make(map[string]int)}
}

// Set applies an optimistic priority, clamped to the valid range.
func (o *Overrides) Set(id string, priority int) {
	o.m[id] = model.ClampPriority(priority)
}

// Remove rolls back an override, reverting the displayed value to the
// job's stored priority.
func (o *Overrides) Remove(id string) {
	delete(o.m, id)
}

func (o *Overrides) Get(id string) (int, bool) {
	p, ok := o.m[id]
	return p, ok
}

func (o *Overrides) Len() int {
	return len(o.m)
}

// ConfirmFromSnapshot drops overrides the snapshot now agrees with, plus
// overrides for jobs that no longer exist. An override equal to truth is
// harmless but keeping it would mask later server-side priority changes.
func (o *Overrides) ConfirmFromSnapshot(jobs []model.Job) {
	stored := make(map[string]int, len(jobs))
	for _, j := range jobs {
		stored[j.ID] = j.Priority
	}
	for id, p := range o.m {
		truth, exists := stored[id]
		if !exists || truth == p {
			delete(o.m, id)
		}
	}
}

// EligibleTargets intersects the selection with the per-action status
// predicate, in snapshot order. Ineligible selected jobs are silently
// excluded.
func EligibleTargets(action model.Action, selected map[string]bool, jobs []model.Job) []string {
	out := make([]string, 0, len(selected))
	for _, j := range jobs {
		if selected[j.ID] && model.ActionEligible(action, j.Status) {
			out = append(out, j.ID)
		}
	}
	return out
}
