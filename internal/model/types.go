package model

import "time"

// Job is one entry of the backend queue as reported by the list endpoint.
// Position in the queue is implicit (index in the snapshot), never a field.
type Job struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Owner          string `json:"owner"`
	Status         string `json:"status"`
	Priority       int    `json:"priority"`
	TotalUnits     int    `json:"total_units"`
	ProcessedUnits int    `json:"processed_units"`
	ErrorUnits     int    `json:"error_units"`
	CreatedAt      string `json:"created_at"`
	StartedAt      string `json:"started_at,omitempty"`
	FinishedAt     string `json:"finished_at,omitempty"`
}

// Snapshot is the full job list as last received from the backend.
// Immutable once produced; a refresh supersedes it wholesale.
type Snapshot struct {
	Jobs       []Job
	ReceivedAt time.Time
}

// ProgressCounts are per-job unit counts by state from the progress endpoint.
type ProgressCounts struct {
	Pending    int `json:"pending"`
	Processing int `json:"processing"`
	Done       int `json:"done"`
	Error      int `json:"error"`
	Total      int `json:"total"`
}

// DomainStat is one per-domain completeness row of the detail statistics.
type DomainStat struct {
	Domain string `json:"domain"`
	Done   int    `json:"done"`
	Total  int    `json:"total"`
}

// JobStats is the on-demand detail view payload for a single job.
type JobStats struct {
	JobID          string       `json:"job_id"`
	Domains        []DomainStat `json:"domains"`
	CostUSD        float64      `json:"cost_usd"`
	ElapsedSeconds float64      `json:"elapsed_seconds"`
}

const (
	ExportStatusCreating = "creating"
	ExportStatusReady    = "ready"
	ExportStatusExpired  = "expired"
	ExportStatusFailed   = "failed"
)

// Export describes one export lifecycle object.
type Export struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	ExpiresAt string `json:"expires_at,omitempty"`
}

const (
	PriorityHighest = 1
	PriorityLowest  = 5
)

// ClampPriority forces a priority into the valid 1..5 range.
func ClampPriority(p int) int {
	if p < PriorityHighest {
		return PriorityHighest
	}
	if p > PriorityLowest {
		return PriorityLowest
	}
	return p
}
