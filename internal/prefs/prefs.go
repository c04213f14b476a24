package prefs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	DefaultPageSize = 20
	maxPageSize     = 200
)

// Settings is the client-side state that survives reloads: filter
// selections, page size, and the key-rename history used to pre-fill
// recurring attribute mappings during upload. The free-text query is
// deliberately session-only. There is no schema versioning beyond the file
// name; anything malformed loads as defaults.
type Settings struct {
	Owners        []string          `json:"owners,omitempty"`
	Statuses      []string          `json:"statuses,omitempty"`
	Priorities    []int             `json:"priorities,omitempty"`
	HideCompleted bool              `json:"hide_completed,omitempty"`
	PageSize      int               `json:"page_size,omitempty"`
	RenameHistory map[string]string `json:"rename_history,omitempty"`
}

func Default() Settings {
	return Settings{
		PageSize:      DefaultPageSize,
		RenameHistory: map[string]string{},
	}
}

// DefaultPath resolves the settings file location, honoring
// JOBDECK_SETTINGS_PATH for tests and unusual setups.
func DefaultPath() string {
	if p := strings.TrimSpace(os.Getenv("JOBDECK_SETTINGS_PATH")); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "jobdeck", "settings.json")
}

// Load reads settings from disk. Missing or malformed files fail safe to
// defaults; a corrupt settings file must never take the dashboard down.
func Load(path string) Settings {
	data, err := os.ReadFile(path)
	if err != nil {
		return Default()
	}
	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return Default()
	}
	return normalize(s)
}

// Save persists settings atomically (temp file + rename) so a crash
// mid-write cannot corrupt the previous state.
func Save(path string, s Settings) error {
	data, err := json.MarshalIndent(normalize(s), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	data = append(data, '\n')
	return writeBytes(path, data)
}

func normalize(s Settings) Settings {
	if s.PageSize <= 0 {
		s.PageSize = DefaultPageSize
	}
	if s.PageSize > maxPageSize {
		s.PageSize = maxPageSize
	}
	prios := make([]int, 0, len(s.Priorities))
	for _, p := range s.Priorities {
		if p >= 1 && p <= 5 {
			prios = append(prios, p)
		}
	}
	s.Priorities = prios
	s.Owners = dedupeStrings(s.Owners)
	s.Statuses = dedupeStrings(s.Statuses)
	if s.RenameHistory == nil {
		s.RenameHistory = map[string]string{}
	}
	return s
}

func dedupeStrings(raw []string) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, v := range raw {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// RecordRename remembers an attribute-mapping rename so the next upload
// can pre-fill it.
func (s *Settings) RecordRename(from, to string) {
	from = strings.TrimSpace(from)
	to = strings.TrimSpace(to)
	if from == "" || to == "" || from == to {
		return
	}
	if s.RenameHistory == nil {
		s.RenameHistory = map[string]string{}
	}
	s.RenameHistory[from] = to
}

// PrefillRename returns the remembered target for a key, if any.
func (s Settings) PrefillRename(from string) (string, bool) {
	to, ok := s.RenameHistory[strings.TrimSpace(from)]
	return to, ok
}

func writeBytes(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create parent for %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(dir, ".jobdeck-tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", path, err)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = os.Remove(tmpPath)
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write temp file for %s: %w", path, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("chmod temp file for %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp file for %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		cleanup()
		return fmt.Errorf("atomic rename for %s: %w", path, err)
	}
	return nil
}
