package cli

import (
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"jobdeck/internal/mockserver"
	"jobdeck/internal/model"
)

func startBackend(t *testing.T, jobs []model.Job) *httptest.Server {
	t.Helper()
	backend := mockserver.New(jobs)
	backend.ExportReadyDelay = 0
	srv := httptest.NewServer(backend.Router())
	t.Cleanup(srv.Close)

	t.Setenv("JOBDECK_API_URL", srv.URL)
	t.Setenv("JOBDECK_LOG_FILE", filepath.Join(t.TempDir(), "jobdeck.log"))
	t.Setenv("JOBDECK_SETTINGS_PATH", filepath.Join(t.TempDir(), "settings.json"))
	return srv
}

func captureStdout(t *testing.T, fn func() error) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stdout = w
	runErr := fn()
	_ = w.Close()
	os.Stdout = old

	out := new(strings.Builder)
	buf := make([]byte, 4096)
	for {
		n, readErr := r.Read(buf)
		out.Write(buf[:n])
		if readErr != nil {
			break
		}
	}
	if runErr != nil {
		t.Fatalf("command failed: %v\noutput:\n%s", runErr, out.String())
	}
	return out.String()
}

func TestHarnessPauseThenListRoundTrip(t *testing.T) {
	startBackend(t, []model.Job{
		{ID: "a", Name: "crawl-a", Owner: "ana", Status: model.StatusRunning, Priority: 3, CreatedAt: "2026-08-20T10:00:00Z"},
		{ID: "b", Name: "crawl-b", Owner: "bob", Status: model.StatusQueued, Priority: 2, CreatedAt: "2026-08-21T10:00:00Z"},
	})

	if err := Run([]string{"pause", "--yes", "b"}); err != nil {
		t.Fatalf("pause failed: %v", err)
	}

	out := captureStdout(t, func() error {
		return Run([]string{"list", "--json"})
	})

	var payload struct {
		Jobs []model.Job `json:"jobs"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("list --json produced invalid JSON: %v\n%s", err, out)
	}
	if len(payload.Jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(payload.Jobs))
	}
	for _, j := range payload.Jobs {
		if j.ID == "b" && j.Status != model.StatusPaused {
			t.Fatalf("expected job b paused after pause command, got %q", j.Status)
		}
	}
}

func TestHarnessPriorityValidation(t *testing.T) {
	startBackend(t, []model.Job{
		{ID: "a", Name: "crawl-a", Owner: "ana", Status: model.StatusQueued, Priority: 3, CreatedAt: "2026-08-20T10:00:00Z"},
	})

	if err := Run([]string{"prio", "a", "9"}); err == nil {
		t.Fatal("expected out-of-range priority to be rejected")
	}
	if err := Run([]string{"prio", "a", "1"}); err != nil {
		t.Fatalf("prio failed: %v", err)
	}
}

func TestHarnessExportWithRenameRecordsHistory(t *testing.T) {
	startBackend(t, []model.Job{
		{ID: "a", Name: "crawl-a", Owner: "ana", Status: model.StatusQueued, Priority: 3, CreatedAt: "2026-08-20T10:00:00Z"},
	})

	out := captureStdout(t, func() error {
		return Run([]string{"export", "--wait", "10s", "--poll", "20ms", "--rename", "owner=team", "--json"})
	})
	if !strings.Contains(out, "\"download_url\"") {
		t.Fatalf("expected download URL in output, got:\n%s", out)
	}

	data, err := os.ReadFile(os.Getenv("JOBDECK_SETTINGS_PATH"))
	if err != nil {
		t.Fatalf("settings not written: %v", err)
	}
	if !strings.Contains(string(data), "\"owner\": \"team\"") {
		t.Fatalf("expected rename recorded in settings, got: %s", data)
	}
}

func TestHarnessSettingsResetWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	t.Setenv("JOBDECK_SETTINGS_PATH", path)

	if err := Run([]string{"settings", "--reset"}); err != nil {
		t.Fatalf("settings --reset failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("settings file not written: %v", err)
	}
	if !strings.Contains(string(data), "\"page_size\"") {
		t.Fatalf("unexpected settings payload: %s", data)
	}
}
