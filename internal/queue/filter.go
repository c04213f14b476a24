package queue

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"jobdeck/internal/model"
)

// Criteria is the full filter state. Empty allow-lists mean "no filter".
// All predicates AND together; row order is always preserved.
type Criteria struct {
	Owners        map[string]bool
	Statuses      map[string]bool
	Priorities    map[int]bool
	Query         string
	HideCompleted bool
}

func NewCriteria() Criteria {
	return Criteria{
		Owners:     map[string]bool{},
		Statuses:   map[string]bool{},
		Priorities: map[int]bool{},
	}
}

// Active reports whether any predicate narrows the view. Manual reordering
// is disabled whenever this is true.
func (c Criteria) Active() bool {
	return len(c.Owners) > 0 || len(c.Statuses) > 0 || len(c.Priorities) > 0 ||
		strings.TrimSpace(c.Query) != "" || c.HideCompleted
}

// Fingerprint is a stable string identity for the criteria, used for
// selection invalidation.
func (c Criteria) Fingerprint() string {
	owners := sortedKeys(c.Owners)
	statuses := sortedKeys(c.Statuses)
	prios := make([]string, 0, len(c.Priorities))
	for p := range c.Priorities {
		prios = append(prios, strconv.Itoa(p))
	}
	sort.Strings(prios)
	return fmt.Sprintf("o=%s;s=%s;p=%s;q=%s;h=%t",
		strings.Join(owners, ","), strings.Join(statuses, ","),
		strings.Join(prios, ","), strings.TrimSpace(c.Query), c.HideCompleted)
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Filter returns the subsequence of rows matching the criteria. The
// priority predicate sees the effective (override-merged) priority so the
// filter result matches what is displayed.
func Filter(rows []Row, c Criteria) []Row {
	terms := parseQuery(c.Query)
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if c.HideCompleted && r.Job.Status == model.StatusCompleted {
			continue
		}
		if len(c.Owners) > 0 && !c.Owners[r.Job.Owner] {
			continue
		}
		if len(c.Statuses) > 0 && !c.Statuses[r.Job.Status] {
			continue
		}
		if len(c.Priorities) > 0 && !c.Priorities[r.Priority] {
			continue
		}
		if len(terms) > 0 && !matchTerms(searchText(r), terms) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// parseQuery splits a free-text query into AND-ed terms, each a set of
// |-delimited OR alternatives: "a|b foo" means (a OR b) AND foo.
func parseQuery(query string) [][]string {
	fields := strings.Fields(strings.ToLower(query))
	terms := make([][]string, 0, len(fields))
	for _, f := range fields {
		alts := make([]string, 0, 2)
		for _, alt := range strings.Split(f, "|") {
			if alt != "" {
				alts = append(alts, alt)
			}
		}
		if len(alts) > 0 {
			terms = append(terms, alts)
		}
	}
	return terms
}

func matchTerms(haystack string, terms [][]string) bool {
	for _, alts := range terms {
		hit := false
		for _, alt := range alts {
			if strings.Contains(haystack, alt) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	return true
}

// searchText builds the haystack the free-text query matches against:
// name, owner, status display label, effective priority, created date.
func searchText(r Row) string {
	created := r.Job.CreatedAt
	if len(created) > 10 {
		created = created[:10]
	}
	return strings.ToLower(strings.Join([]string{
		r.Job.Name,
		r.Job.Owner,
		model.StatusLabel(r.Job.Status),
		strconv.Itoa(r.Priority),
		created,
	}, " "))
}
