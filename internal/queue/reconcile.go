package queue

// Reconciler owns the user's working order: the possibly-unsaved
// arrangement of job ids. While clean it mirrors the snapshot order 1:1;
// once the user moves something it diverges and incoming snapshots are
// merged in (reconciled), never allowed to clobber pending intent.
//
// Dirty is derived, not stored: the working order is compared against the
// last-saved reference after every transition, so a sequence of moves that
// nets out to the saved order returns the state to clean on its own.
type Reconciler struct {
	order       []string
	saved       []string
	enabled     bool
	initialized bool
}

func NewReconciler() *Reconciler {
	return &Reconciler{enabled: true}
}

// SetEnabled gates all move operations. The dashboard derives the flag from
// ReorderEnabled; while false every move is a no-op.
func (r *Reconciler) SetEnabled(v bool) {
	r.enabled = v
}

func (r *Reconciler) Enabled() bool {
	return r.enabled
}

func (r *Reconciler) Initialized() bool {
	return r.initialized
}

// Dirty reports whether the working order diverges from the last order
// successfully persisted to the backend.
func (r *Reconciler) Dirty() bool {
	return !equalIDs(r.order, r.saved)
}

// OrderedIDs returns a copy of the current working order.
func (r *Reconciler) OrderedIDs() []string {
	return append([]string(nil), r.order...)
}

// ApplySnapshot folds a fresh snapshot order into the working order.
// Clean state: replace outright. Dirty state: reconcile — surviving ids
// keep their working positions, new ids append in snapshot order, deleted
// ids drop. The saved reference is reconciled the same way so that a
// destructive external change (the dirtying job deleted server-side) can
// return the state to clean.
func (r *Reconciler) ApplySnapshot(snapshotIDs []string) {
	if !r.initialized {
		r.order = append([]string(nil), snapshotIDs...)
		r.saved = append([]string(nil), snapshotIDs...)
		r.initialized = true
		return
	}
	if !r.Dirty() {
		r.order = append([]string(nil), snapshotIDs...)
		r.saved = append([]string(nil), snapshotIDs...)
		return
	}
	r.order = reconcile(r.order, snapshotIDs)
	r.saved = reconcile(r.saved, snapshotIDs)
}

// reconcile keeps every id of working that survives in the snapshot, in
// working order, then appends snapshot-only ids in snapshot order.
// Idempotent: reconcile(reconcile(w, s), s) == reconcile(w, s).
func reconcile(working, snapshotIDs []string) []string {
	inSnapshot := make(map[string]bool, len(snapshotIDs))
	for _, id := range snapshotIDs {
		inSnapshot[id] = true
	}

	out := make([]string, 0, len(snapshotIDs))
	kept := make(map[string]bool, len(working))
	for _, id := range working {
		if inSnapshot[id] {
			out = append(out, id)
			kept[id] = true
		}
	}
	for _, id := range snapshotIDs {
		if !kept[id] {
			out = append(out, id)
		}
	}
	return out
}

// MoveTo places id at the given index (drag drop target). No-op while
// reordering is disabled or the id is unknown.
func (r *Reconciler) MoveTo(id string, index int) {
	if !r.enabled {
		return
	}
	from := indexOf(r.order, id)
	if from < 0 {
		return
	}
	if index < 0 {
		index = 0
	}
	if index >= len(r.order) {
		index = len(r.order) - 1
	}
	if from == index {
		return
	}
	moved := r.order[from]
	r.order = append(r.order[:from], r.order[from+1:]...)
	r.order = append(r.order[:index], append([]string{moved}, r.order[index:]...)...)
}

func (r *Reconciler) MoveUp(id string) {
	if i := indexOf(r.order, id); i > 0 {
		r.MoveTo(id, i-1)
	}
}

func (r *Reconciler) MoveDown(id string) {
	if i := indexOf(r.order, id); i >= 0 && i < len(r.order)-1 {
		r.MoveTo(id, i+1)
	}
}

func (r *Reconciler) MoveToTop(id string) {
	r.MoveTo(id, 0)
}

// MarkSaved records ids as the new last-saved reference after a successful
// persist. The ids are the ones actually sent, not the possibly-moved-since
// working order.
func (r *Reconciler) MarkSaved(ids []string) {
	r.saved = append([]string(nil), ids...)
}

// Discard abandons pending moves: the working order and reference both
// reset to the given snapshot order.
func (r *Reconciler) Discard(snapshotIDs []string) {
	r.order = append([]string(nil), snapshotIDs...)
	r.saved = append([]string(nil), snapshotIDs...)
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
