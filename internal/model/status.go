package model

const (
	StatusQueued    = "queued"
	StatusRunning   = "running"
	StatusPausing   = "pausing"
	StatusPaused    = "paused"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusCanceled  = "canceled"
)

// displayLabels maps a backend status to the text shown (and searched) in
// the client. Completed jobs render as "done"; free-text search matches the
// label, so the mapping is observable behavior.
var displayLabels = map[string]string{
	StatusQueued:    "queued",
	StatusRunning:   "running",
	StatusPausing:   "pausing",
	StatusPaused:    "paused",
	StatusCompleted: "done",
	StatusFailed:    "failed",
	StatusCanceled:  "canceled",
}

func IsKnownStatus(status string) bool {
	_, ok := displayLabels[status]
	return ok
}

// StatusLabel returns the display text for a status. Unknown statuses pass
// through unchanged so new backend states degrade to raw text.
func StatusLabel(status string) string {
	if label, ok := displayLabels[status]; ok {
		return label
	}
	return status
}

// IsActive reports whether a job is eligible for progress polling.
func IsActive(status string) bool {
	return status == StatusRunning || status == StatusPausing
}

// Action is a per-job mutation verb accepted by the backend.
type Action string

const (
	ActionPause       Action = "pause"
	ActionResume      Action = "resume"
	ActionCancel      Action = "cancel"
	ActionDelete      Action = "delete"
	ActionReset       Action = "reset"
	ActionResetFailed Action = "reset-failed"
)

// ActionEligible reports whether an action may target a job in the given
// status. Ineligible jobs are silently excluded from bulk dispatch, never
// errored.
func ActionEligible(action Action, status string) bool {
	switch action {
	case ActionPause:
		return status == StatusQueued || status == StatusRunning
	case ActionResume:
		return status == StatusPaused || status == StatusPausing
	case ActionCancel:
		return status == StatusRunning
	case ActionDelete:
		return status != StatusRunning && status != StatusPausing
	case ActionReset:
		return status == StatusCanceled || status == StatusCompleted || status == StatusFailed
	case ActionResetFailed:
		return status == StatusFailed
	default:
		return false
	}
}
