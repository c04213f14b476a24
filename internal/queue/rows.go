package queue

import "jobdeck/internal/model"

// Row is one display row: snapshot truth plus the overlays (priority
// override, progress) merged at read time. The snapshot itself is never
// mutated; dropping an overlay entry is the whole rollback story.
type Row struct {
	Job           model.Job
	SnapshotIndex int
	Priority      int
	Overridden    bool
	Progress      model.ProgressCounts
	HasProgress   bool
}

// BuildRows merges overlays over the snapshot jobs. The effective priority
// (override if present) is what filtering, sorting, and rendering all see,
// so the view stays consistent with what the user committed.
func BuildRows(jobs []model.Job, overrides *Overrides, progress map[string]model.ProgressCounts) []Row {
	rows := make([]Row, 0, len(jobs))
	for i, job := range jobs {
		row := Row{Job: job, SnapshotIndex: i, Priority: job.Priority}
		if overrides != nil {
			if p, ok := overrides.Get(job.ID); ok {
				row.Priority = p
				row.Overridden = true
			}
		}
		if pc, ok := progress[job.ID]; ok {
			row.Progress = pc
			row.HasProgress = true
		}
		rows = append(rows, row)
	}
	return rows
}

// ArrangeByOrder reorders rows to follow the given working order. Rows whose
// id is missing from the order keep their relative position at the end;
// order entries with no matching row are ignored.
func ArrangeByOrder(rows []Row, order []string) []Row {
	pos := make(map[string]int, len(order))
	for i, id := range order {
		pos[id] = i
	}

	out := make([]Row, 0, len(rows))
	tail := make([]Row, 0)
	byID := make(map[string]Row, len(rows))
	for _, r := range rows {
		if _, ok := pos[r.Job.ID]; ok {
			byID[r.Job.ID] = r
		} else {
			tail = append(tail, r)
		}
	}
	for _, id := range order {
		if r, ok := byID[id]; ok {
			out = append(out, r)
		}
	}
	return append(out, tail...)
}

// Page returns the window of rows for a zero-based page index.
func Page(rows []Row, page, size int) []Row {
	if size <= 0 {
		return rows
	}
	start := page * size
	if start < 0 || start >= len(rows) {
		return nil
	}
	end := start + size
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}

// PageCount returns how many pages a row count occupies, minimum 1.
func PageCount(n, size int) int {
	if size <= 0 || n <= 0 {
		return 1
	}
	pages := n / size
	if n%size != 0 {
		pages++
	}
	return pages
}

// RowIDs extracts the ids of rows in order.
func RowIDs(rows []Row) []string {
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.Job.ID)
	}
	return ids
}

// ActiveIDs returns ids of rows whose job is in an active status, in row
// order. This feeds the progress poller's rotation.
func ActiveIDs(rows []Row) []string {
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		if model.IsActive(r.Job.Status) {
			ids = append(ids, r.Job.ID)
		}
	}
	return ids
}
