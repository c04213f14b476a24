package queue

import "jobdeck/internal/model"

// DefaultBatchSize caps how many progress requests one poll tick may issue.
const DefaultBatchSize = 25

// Poller owns the progress overlay and the rotating cursor over active job
// ids. The bounded round-robin trades per-job refresh latency for a hard
// cap on request fan-out: with N active ids and batch size B, every id is
// fetched at least once within ceil(N/B) ticks and no tick exceeds B.
type Poller struct {
	overlay map[string]model.ProgressCounts
	cursor  int
	batch   int
}

func NewPoller(batch int) *Poller {
	if batch <= 0 {
		batch = DefaultBatchSize
	}
	return &Poller{
		overlay: make(map[string]model.ProgressCounts),
		batch:   batch,
	}
}

// NextBatch returns the slice of active ids to fetch this tick, advancing
// the wrapping cursor. An empty active list clears the whole overlay and
// returns nothing, so no requests are issued while the queue is idle.
func (p *Poller) NextBatch(activeIDs []string) []string {
	if len(activeIDs) == 0 {
		p.Clear()
		return nil
	}
	n := p.batch
	if n > len(activeIDs) {
		n = len(activeIDs)
	}
	start := p.cursor % len(activeIDs)
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, activeIDs[(start+i)%len(activeIDs)])
	}
	p.cursor = (start + n) % len(activeIDs)
	return out
}

// Merge folds successful fetches into the overlay. Per-id failures are
// simply absent from results; any existing entry stays untouched.
func (p *Poller) Merge(results map[string]model.ProgressCounts) {
	for id, pc := range results {
		p.overlay[id] = pc
	}
}

// Evict drops overlay entries for jobs no longer active.
func (p *Poller) Evict(activeIDs []string) {
	active := make(map[string]bool, len(activeIDs))
	for _, id := range activeIDs {
		active[id] = true
	}
	for id := range p.overlay {
		if !active[id] {
			delete(p.overlay, id)
		}
	}
}

func (p *Poller) Clear() {
	if len(p.overlay) > 0 {
		p.overlay = make(map[string]model.ProgressCounts)
	}
	p.cursor = 0
}

// Overlay exposes the live overlay map for read-only merging into rows.
func (p *Poller) Overlay() map[string]model.ProgressCounts {
	return p.overlay
}

func (p *Poller) Len() int {
	return len(p.overlay)
}
