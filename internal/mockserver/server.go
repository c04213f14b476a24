package mockserver

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"jobdeck/internal/model"
)

// Server is an in-memory stand-in for the job queue backend. It implements
// every endpoint the client consumes, which makes it good enough for local
// development (cmd/jobdeck-mockd) and for httptest-driven client tests.
type Server struct {
	mu       sync.Mutex
	jobs     []model.Job
	progress map[string]model.ProgressCounts
	exports  map[string]*exportRecord

	// ExportReadyDelay is how long an export stays "creating". Tests set
	// zero to observe the ready state immediately.
	ExportReadyDelay time.Duration

	rateRemaining int
}

type exportRecord struct {
	createdAt time.Time
	expiresAt time.Time
	failed    bool
	renames   map[string]string
}

func New(jobs []model.Job) *Server {
	s := &Server{
		jobs:             append([]model.Job(nil), jobs...),
		progress:         make(map[string]model.ProgressCounts),
		exports:          make(map[string]*exportRecord),
		ExportReadyDelay: 2 * time.Second,
		rateRemaining:    1000,
	}
	for _, j := range s.jobs {
		s.progress[j.ID] = deriveProgress(j)
	}
	return s
}

func deriveProgress(j model.Job) model.ProgressCounts {
	processing := 0
	if model.IsActive(j.Status) && j.ProcessedUnits+j.ErrorUnits < j.TotalUnits {
		processing = 1
	}
	return model.ProgressCounts{
		Pending:    j.TotalUnits - j.ProcessedUnits - j.ErrorUnits - processing,
		Processing: processing,
		Done:       j.ProcessedUnits,
		Error:      j.ErrorUnits,
		Total:      j.TotalUnits,
	}
}

// SeedJobs builds a demo queue for the mock daemon.
func SeedJobs(n int) []model.Job {
	owners := []string{"ada", "bob", "cleo"}
	statuses := []string{
		model.StatusQueued, model.StatusRunning, model.StatusRunning,
		model.StatusPaused, model.StatusCompleted, model.StatusFailed,
	}
	jobs := make([]model.Job, 0, n)
	base := time.Now().Add(-time.Duration(n) * time.Hour)
	for i := 0; i < n; i++ {
		status := statuses[i%len(statuses)]
		total := 100 + i*10
		processed := 0
		if status == model.StatusRunning {
			processed = total / 3
		}
		if status == model.StatusCompleted {
			processed = total
		}
		jobs = append(jobs, model.Job{
			ID:             uuid.NewString(),
			Name:           fmt.Sprintf("batch-%03d", i+1),
			Owner:          owners[i%len(owners)],
			Status:         status,
			Priority:       i%5 + 1,
			TotalUnits:     total,
			ProcessedUnits: processed,
			ErrorUnits:     i % 3,
			CreatedAt:      base.Add(time.Duration(i) * time.Hour).UTC().Format(time.RFC3339),
		})
	}
	return jobs
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/jobs", s.handleList).Methods(http.MethodGet)
	r.HandleFunc("/api/jobs/order", s.handleReorder).Methods(http.MethodPost)
	r.HandleFunc("/api/jobs/{id}", s.handleDelete).Methods(http.MethodDelete)
	r.HandleFunc("/api/jobs/{id}/priority", s.handlePriority).Methods(http.MethodPatch)
	r.HandleFunc("/api/jobs/{id}/progress", s.handleProgress).Methods(http.MethodGet)
	r.HandleFunc("/api/jobs/{id}/stats", s.handleStats).Methods(http.MethodGet)
	r.HandleFunc("/api/jobs/{id}/{action}", s.handleAction).Methods(http.MethodPost)
	r.HandleFunc("/api/exports", s.handleCreateExport).Methods(http.MethodPost)
	r.HandleFunc("/api/exports/{id}", s.handleExportStatus).Methods(http.MethodGet)
	r.HandleFunc("/api/exports/{id}/download", s.handleExportDownload).Methods(http.MethodGet)
	return r
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	owner := r.URL.Query().Get("owner")
	status := r.URL.Query().Get("status")

	out := make([]model.Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		if owner != "" && j.Owner != owner {
			continue
		}
		if status != "" && j.Status != status {
			continue
		}
		out = append(out, j)
	}

	if s.rateRemaining > 0 {
		s.rateRemaining--
	}
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(s.rateRemaining))
	w.Header().Set("X-RateLimit-Reset", time.Now().Add(time.Minute).UTC().Format(time.RFC3339))
	writeJSON(w, map[string]any{"jobs": out})
}

func (s *Server) handleReorder(w http.ResponseWriter, r *http.Request) {
	var input struct {
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	byID := make(map[string]model.Job, len(s.jobs))
	for _, j := range s.jobs {
		byID[j.ID] = j
	}

	// Replace server order unconditionally: listed ids first in the given
	// order, unlisted survivors keep their relative order at the end.
	reordered := make([]model.Job, 0, len(s.jobs))
	placed := make(map[string]bool, len(input.IDs))
	for _, id := range input.IDs {
		if j, ok := byID[id]; ok && !placed[id] {
			reordered = append(reordered, j)
			placed[id] = true
		}
	}
	for _, j := range s.jobs {
		if !placed[j.ID] {
			reordered = append(reordered, j)
		}
	}
	s.jobs = reordered
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	if !model.ActionEligible(model.ActionDelete, s.jobs[idx].Status) {
		writeError(w, http.StatusConflict, "job is running")
		return
	}
	s.jobs = append(s.jobs[:idx], s.jobs[idx+1:]...)
	delete(s.progress, id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePriority(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var input struct {
		Priority int `json:"priority"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if input.Priority < model.PriorityHighest || input.Priority > model.PriorityLowest {
		writeError(w, http.StatusBadRequest, "priority must be 1..5")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	s.jobs[idx].Priority = input.Priority
	writeJSON(w, s.jobs[idx])
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]
	action := model.Action(vars["action"])

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}

	job := &s.jobs[idx]
	switch action {
	case model.ActionPause:
		if job.Status == model.StatusRunning {
			job.Status = model.StatusPausing
		} else if job.Status == model.StatusQueued {
			job.Status = model.StatusPaused
		}
	case model.ActionResume:
		if job.Status == model.StatusPaused || job.Status == model.StatusPausing {
			job.Status = model.StatusQueued
		}
	case model.ActionCancel:
		if job.Status == model.StatusRunning {
			job.Status = model.StatusCanceled
		}
	case model.ActionReset:
		job.Status = model.StatusQueued
		job.ProcessedUnits = 0
		job.ErrorUnits = 0
	case model.ActionResetFailed:
		if job.Status == model.StatusFailed {
			job.Status = model.StatusQueued
			job.ErrorUnits = 0
		}
	default:
		writeError(w, http.StatusNotFound, "unknown action")
		return
	}
	s.progress[job.ID] = deriveProgress(*job)
	writeJSON(w, job)
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	s.mu.Lock()
	defer s.mu.Unlock()

	pc, ok := s.progress[id]
	if !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, pc)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	j := s.jobs[idx]
	writeJSON(w, model.JobStats{
		JobID: j.ID,
		Domains: []model.DomainStat{
			{Domain: "extraction", Done: j.ProcessedUnits, Total: j.TotalUnits},
			{Domain: "validation", Done: j.ProcessedUnits - j.ErrorUnits, Total: j.TotalUnits},
		},
		CostUSD:        float64(j.ProcessedUnits) * 0.0004,
		ElapsedSeconds: float64(j.ProcessedUnits) * 1.7,
	})
}

func (s *Server) handleCreateExport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ColumnRenames map[string]string `json:"column_renames"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	now := time.Now()
	s.exports[id] = &exportRecord{createdAt: now, expiresAt: now.Add(time.Hour), renames: req.ColumnRenames}
	writeJSON(w, model.Export{
		ID:        id,
		Status:    model.ExportStatusCreating,
		ExpiresAt: s.exports[id].expiresAt.UTC().Format(time.RFC3339),
	})
}

func (s *Server) exportStatus(rec *exportRecord) string {
	switch {
	case rec.failed:
		return model.ExportStatusFailed
	case time.Now().After(rec.expiresAt):
		return model.ExportStatusExpired
	case time.Since(rec.createdAt) >= s.ExportReadyDelay:
		return model.ExportStatusReady
	default:
		return model.ExportStatusCreating
	}
}

func (s *Server) handleExportStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.exports[id]
	if !ok {
		writeError(w, http.StatusNotFound, "export not found")
		return
	}
	writeJSON(w, model.Export{
		ID:        id,
		Status:    s.exportStatus(rec),
		ExpiresAt: rec.expiresAt.UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleExportDownload(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.exports[id]
	if !ok {
		writeError(w, http.StatusNotFound, "export not found")
		return
	}
	if s.exportStatus(rec) != model.ExportStatusReady {
		writeError(w, http.StatusConflict, "export not ready")
		return
	}

	header := []string{"id", "name", "owner", "status", "priority"}
	for i, col := range header {
		if to, ok := rec.renames[col]; ok {
			header[i] = to
		}
	}

	w.Header().Set("Content-Type", "text/csv")
	cw := csv.NewWriter(w)
	_ = cw.Write(header)
	for _, j := range s.jobs {
		_ = cw.Write([]string{j.ID, j.Name, j.Owner, j.Status, strconv.Itoa(j.Priority)})
	}
	cw.Flush()
}

// Advance simulates backend processing: running jobs make progress,
// pausing jobs settle into paused. The mock daemon calls this on a ticker.
func (s *Server) Advance() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339)
	for i := range s.jobs {
		j := &s.jobs[i]
		switch j.Status {
		case model.StatusPausing:
			j.Status = model.StatusPaused
		case model.StatusRunning:
			step := j.TotalUnits / 20
			if step < 1 {
				step = 1
			}
			j.ProcessedUnits += step
			if j.ProcessedUnits+j.ErrorUnits >= j.TotalUnits {
				j.ProcessedUnits = j.TotalUnits - j.ErrorUnits
				j.Status = model.StatusCompleted
				j.FinishedAt = now
			}
		case model.StatusQueued:
			if j.StartedAt == "" {
				j.Status = model.StatusRunning
				j.StartedAt = now
			}
		}
		s.progress[j.ID] = deriveProgress(*j)
	}
}

func (s *Server) indexOf(id string) int {
	for i, j := range s.jobs {
		if j.ID == id {
			return i
		}
	}
	return -1
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
