package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"jobdeck/internal/model"
	"jobdeck/internal/prefs"
)

// renameFlags collects repeated --rename old=new pairs.
type renameFlags map[string]string

func (r renameFlags) String() string { return fmt.Sprintf("%v", map[string]string(r)) }

func (r renameFlags) Set(v string) error {
	from, to, ok := strings.Cut(v, "=")
	from = strings.TrimSpace(from)
	to = strings.TrimSpace(to)
	if !ok || from == "" || to == "" {
		return fmt.Errorf("expected old=new, got %q", v)
	}
	r[from] = to
	return nil
}

func runExport(args []string) error {
	renames := renameFlags{}
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	wait := fs.Duration("wait", 2*time.Minute, "how long to wait for the export to become ready")
	poll := fs.Duration("poll", 2*time.Second, "status poll interval")
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.Var(renames, "rename", "rename a CSV column, old=new (repeatable; remembered for next time)")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	// Remembered renames pre-fill the mapping; explicit flags win and are
	// recorded for the next export.
	prefsPath := prefs.DefaultPath()
	settings := prefs.Load(prefsPath)
	effective := map[string]string{}
	for from, to := range settings.RenameHistory {
		effective[from] = to
	}
	for from, to := range renames {
		effective[from] = to
		settings.RecordRename(from, to)
	}
	if len(renames) > 0 {
		if err := prefs.Save(prefsPath, settings); err != nil {
			return fmt.Errorf("record renames: %w", err)
		}
	}

	client, _, cleanup := newClient()
	defer func() { _ = cleanup() }()

	ctx, cancel := context.WithTimeout(context.Background(), *wait)
	defer cancel()

	exp, err := client.CreateExport(ctx, effective)
	if err != nil {
		return err
	}
	if !*jsonOut {
		fmt.Printf("export created: %s (expires %s)\n", exp.ID, exp.ExpiresAt)
	}

	ticker := time.NewTicker(*poll)
	defer ticker.Stop()
	for exp.Status == model.ExportStatusCreating {
		select {
		case <-ctx.Done():
			return fmt.Errorf("export %s not ready after %s", exp.ID, *wait)
		case <-ticker.C:
		}
		exp, err = client.ExportStatus(ctx, exp.ID)
		if err != nil {
			return err
		}
	}

	switch exp.Status {
	case model.ExportStatusReady:
		url := client.ExportDownloadURL(exp.ID)
		if *jsonOut {
			return printJSON(map[string]string{"export_id": exp.ID, "status": exp.Status, "download_url": url})
		}
		fmt.Println("download:", url)
		return nil
	default:
		return fmt.Errorf("export %s finished in state %q", exp.ID, exp.Status)
	}
}
