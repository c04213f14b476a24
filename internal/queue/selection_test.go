package queue

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSelectionToggleAndIDs(t *testing.T) {
	s := NewSelection()
	s.Toggle("b")
	s.Toggle("a")
	require.Equal(t, []string{"a", "b"}, s.IDs())

	s.Toggle("a")
	require.Equal(t, []string{"b"}, s.IDs())
	require.True(t, s.Has("b"))
	require.Equal(t, 1, s.Count())
}

func TestSelectionClearsWhenCriteriaChange(t *testing.T) {
	s := NewSelection()
	ids := []string{"a", "b", "c"}

	c := NewCriteria()
	s.Sync(UniverseSignature(ids, 20, c))
	s.SelectAll(ids)
	require.Equal(t, 3, s.Count())

	// Same universe: selection survives.
	require.False(t, s.Sync(UniverseSignature(ids, 20, c)))
	require.Equal(t, 3, s.Count())

	// Criteria changed: selection resets.
	c.HideCompleted = true
	require.True(t, s.Sync(UniverseSignature(ids, 20, c)))
	require.Equal(t, 0, s.Count())
}

func TestSelectionClearsWhenPageSizeChanges(t *testing.T) {
	s := NewSelection()
	ids := []string{"a", "b"}
	c := NewCriteria()

	s.Sync(UniverseSignature(ids, 20, c))
	s.SelectAll(ids)
	require.True(t, s.Sync(UniverseSignature(ids, 50, c)))
	require.Equal(t, 0, s.Count())
}

func TestSelectionClearsWhenUniverseChanges(t *testing.T) {
	s := NewSelection()
	c := NewCriteria()

	s.Sync(UniverseSignature([]string{"a", "b"}, 20, c))
	s.SelectAll([]string{"a", "b"})
	require.True(t, s.Sync(UniverseSignature([]string{"a", "b", "new"}, 20, c)))
	require.Equal(t, 0, s.Count())
}
