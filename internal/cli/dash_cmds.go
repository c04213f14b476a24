package cli

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"jobdeck/internal/api"
	"jobdeck/internal/model"
)

// Timer ticks. Snapshot refresh and progress polling are independent
// timers writing to disjoint state, so both firing in the same pass is
// harmless.
type snapshotTickMsg time.Time
type progressTickMsg time.Time
type exportTickMsg time.Time

type snapshotMsg struct {
	jobs []model.Job
	rate *api.RateLimit
	err  error
}

type progressResultMsg struct {
	results map[string]model.ProgressCounts
}

type orderSavedMsg struct {
	ids []string
	err error
}

type priorityResultMsg struct {
	id       string
	priority int
	err      error
}

type bulkResultMsg struct {
	action    model.Action
	attempted int
	failed    int
	firstErr  string
}

type statsResultMsg struct {
	seq   int
	stats model.JobStats
	err   error
}

type exportCreatedMsg struct {
	exp model.Export
	err error
}

type exportStatusMsg struct {
	exp model.Export
	err error
}

func snapshotTickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg { return snapshotTickMsg(t) })
}

func progressTickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg { return progressTickMsg(t) })
}

func exportTickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg { return exportTickMsg(t) })
}

func fetchSnapshotCmd(client *api.Client, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		jobs, rate, err := client.ListJobs(ctx, api.ListOptions{})
		return snapshotMsg{jobs: jobs, rate: rate, err: err}
	}
}

// fetchProgressCmd fans out one request per id in the batch. Per-id
// failures are skipped; whatever succeeded merges into the overlay.
func fetchProgressCmd(client *api.Client, ids []string, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		var mu sync.Mutex
		var wg sync.WaitGroup
		results := make(map[string]model.ProgressCounts, len(ids))
		for _, id := range ids {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				pc, err := client.JobProgress(ctx, id)
				if err != nil {
					return
				}
				mu.Lock()
				results[id] = pc
				mu.Unlock()
			}(id)
		}
		wg.Wait()
		return progressResultMsg{results: results}
	}
}

func saveOrderCmd(client *api.Client, ids []string, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		err := client.Reorder(ctx, ids)
		return orderSavedMsg{ids: ids, err: err}
	}
}

func priorityCmd(client *api.Client, id string, priority int, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		err := client.UpdatePriority(ctx, id, priority)
		return priorityResultMsg{id: id, priority: priority, err: err}
	}
}

// bulkCmd dispatches one action to every eligible target concurrently and
// reports a single aggregate outcome.
func bulkCmd(client *api.Client, action model.Action, ids []string, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		var mu sync.Mutex
		var wg sync.WaitGroup
		failed := 0
		firstErr := ""
		for _, id := range ids {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				if err := client.Do(ctx, action, id); err != nil {
					mu.Lock()
					failed++
					if firstErr == "" {
						firstErr = err.Error()
					}
					mu.Unlock()
				}
			}(id)
		}
		wg.Wait()
		return bulkResultMsg{action: action, attempted: len(ids), failed: failed, firstErr: firstErr}
	}
}

func statsCmd(client *api.Client, id string, seq int, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		stats, err := client.JobStats(ctx, id)
		return statsResultMsg{seq: seq, stats: stats, err: err}
	}
}

func createExportCmd(client *api.Client, renames map[string]string, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		exp, err := client.CreateExport(ctx, renames)
		return exportCreatedMsg{exp: exp, err: err}
	}
}

func exportStatusCmd(client *api.Client, id string, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		exp, err := client.ExportStatus(ctx, id)
		return exportStatusMsg{exp: exp, err: err}
	}
}
