package queue

import (
	"sort"
	"strconv"
	"strings"
)

// Selection is the set of checked job ids. It is keyed to a universe
// signature (criteria + page size + the filtered id universe); when the
// signature changes the prior intent is no longer meaningful and the set
// clears.
type Selection struct {
	ids map[string]bool
	sig string
}

func NewSelection() *Selection {
	return &Selection{ids: make(map[string]bool)}
}

// UniverseSignature builds the invalidation key for the current view.
func UniverseSignature(filteredIDs []string, pageSize int, c Criteria) string {
	return strings.Join(filteredIDs, "\x00") + "|" + strconv.Itoa(pageSize) + "|" + c.Fingerprint()
}

// Sync clears the selection when the universe signature changed. Returns
// true if a reset happened.
func (s *Selection) Sync(signature string) bool {
	if s.sig == signature {
		return false
	}
	s.sig = signature
	if len(s.ids) == 0 {
		return false
	}
	s.ids = make(map[string]bool)
	return true
}

func (s *Selection) Toggle(id string) {
	if s.ids[id] {
		delete(s.ids, id)
		return
	}
	s.ids[id] = true
}

func (s *Selection) SelectAll(ids []string) {
	for _, id := range ids {
		s.ids[id] = true
	}
}

func (s *Selection) Clear() {
	s.ids = make(map[string]bool)
}

func (s *Selection) Has(id string) bool {
	return s.ids[id]
}

func (s *Selection) Count() int {
	return len(s.ids)
}

// Set exposes the raw membership map for eligibility intersection.
func (s *Selection) Set() map[string]bool {
	return s.ids
}

// IDs returns the selected ids sorted for deterministic output.
func (s *Selection) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
