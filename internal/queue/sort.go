package queue

import (
	"sort"
	"strings"
)

type SortKey string

const (
	SortManual   SortKey = "manual"
	SortName     SortKey = "name"
	SortCreated  SortKey = "created"
	SortStatus   SortKey = "status"
	SortPriority SortKey = "priority"
)

// SortKeys in cycle order for the dashboard's sort toggle.
var SortKeys = []SortKey{SortManual, SortName, SortCreated, SortStatus, SortPriority}

// SortRows orders rows by the given key. Manual never reaches this
// function; callers route manual mode through the reconciler's working
// order. Ties break by snapshot index ascending regardless of direction,
// which makes the sort stable and deterministic.
func SortRows(rows []Row, key SortKey, descending bool) []Row {
	out := append([]Row(nil), rows...)
	sort.Slice(out, func(i, j int) bool {
		c := compareRows(out[i], out[j], key)
		if descending {
			c = -c
		}
		if c != 0 {
			return c < 0
		}
		return out[i].SnapshotIndex < out[j].SnapshotIndex
	})
	return out
}

func compareRows(a, b Row, key SortKey) int {
	switch key {
	case SortName:
		return strings.Compare(a.Job.Name, b.Job.Name)
	case SortCreated:
		// ISO-8601 compares lexically; missing timestamps sort earliest.
		return strings.Compare(a.Job.CreatedAt, b.Job.CreatedAt)
	case SortStatus:
		return strings.Compare(a.Job.Status, b.Job.Status)
	case SortPriority:
		switch {
		case a.Priority < b.Priority:
			return -1
		case a.Priority > b.Priority:
			return 1
		default:
			return 0
		}
	default:
		return 0
	}
}

// ReorderEnabled is the single enablement predicate for manual reordering:
// any active filter, the hide-completed toggle, or a non-manual sort key
// disables drag and move operations to avoid ambiguous semantics over a
// partial or reordered view.
func ReorderEnabled(c Criteria, key SortKey) bool {
	return !c.Active() && key == SortManual
}
