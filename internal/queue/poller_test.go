package queue

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"jobdeck/internal/model"
)

func TestPollerBatchBoundAndFullCoverage(t *testing.T) {
	const n, batch = 57, 25
	active := make([]string, 0, n)
	for i := 0; i < n; i++ {
		active = append(active, fmt.Sprintf("job-%02d", i))
	}

	p := NewPoller(batch)
	seen := map[string]bool{}
	ticks := (n + batch - 1) / batch
	for i := 0; i < ticks; i++ {
		slice := p.NextBatch(active)
		require.LessOrEqual(t, len(slice), batch)
		for _, id := range slice {
			seen[id] = true
		}
	}
	require.Len(t, seen, n)
}

func TestPollerCursorWraps(t *testing.T) {
	p := NewPoller(2)
	active := []string{"a", "b", "c"}

	require.Equal(t, []string{"a", "b"}, p.NextBatch(active))
	require.Equal(t, []string{"c", "a"}, p.NextBatch(active))
	require.Equal(t, []string{"b", "c"}, p.NextBatch(active))
}

func TestPollerEmptyActiveClearsOverlay(t *testing.T) {
	p := NewPoller(5)
	p.Merge(map[string]model.ProgressCounts{"a": {Done: 1, Total: 4}})
	require.Equal(t, 1, p.Len())

	require.Nil(t, p.NextBatch(nil))
	require.Equal(t, 0, p.Len())
}

func TestPollerMergeKeepsEntriesOnPartialFailure(t *testing.T) {
	p := NewPoller(5)
	p.Merge(map[string]model.ProgressCounts{
		"a": {Done: 1, Total: 4},
		"b": {Done: 2, Total: 4},
	})

	// b's fetch failed this tick: it is simply absent from the results and
	// its previous entry survives.
	p.Merge(map[string]model.ProgressCounts{"a": {Done: 3, Total: 4}})

	pc, ok := p.Overlay()["b"]
	require.True(t, ok)
	require.Equal(t, 2, pc.Done)
	require.Equal(t, 3, p.Overlay()["a"].Done)
}

func TestPollerEvictDropsInactive(t *testing.T) {
	p := NewPoller(5)
	p.Merge(map[string]model.ProgressCounts{
		"a": {Done: 1, Total: 2},
		"b": {Done: 1, Total: 2},
	})

	p.Evict([]string{"a"})
	_, ok := p.Overlay()["b"]
	require.False(t, ok)
	_, ok = p.Overlay()["a"]
	require.True(t, ok)
}

func TestPollerCursorStaysValidWhenActiveShrinks(t *testing.T) {
	p := NewPoller(3)
	_ = p.NextBatch([]string{"a", "b", "c", "d", "e"})

	// Active set shrinks below the cursor; the modulo keeps it in range.
	got := p.NextBatch([]string{"a", "b"})
	require.Len(t, got, 2)
}
