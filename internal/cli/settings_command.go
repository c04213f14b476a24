package cli

import (
	"flag"
	"fmt"
	"strings"

	"jobdeck/internal/prefs"
)

func runSettings(args []string) error {
	fs := flag.NewFlagSet("settings", flag.ContinueOnError)
	reset := fs.Bool("reset", false, "reset persisted settings to defaults")
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	path := prefs.DefaultPath()
	if *reset {
		if err := prefs.Save(path, prefs.Default()); err != nil {
			return err
		}
		fmt.Println("settings reset:", path)
		return nil
	}

	s := prefs.Load(path)
	if *jsonOut {
		return printJSON(map[string]any{"path": path, "settings": s})
	}

	fmt.Println("settings file:", path)
	fmt.Println("  owners:        ", orNone(strings.Join(s.Owners, ", ")))
	fmt.Println("  statuses:      ", orNone(strings.Join(s.Statuses, ", ")))
	fmt.Println("  priorities:    ", orNone(joinInts(s.Priorities)))
	fmt.Println("  hide completed:", s.HideCompleted)
	fmt.Println("  page size:     ", s.PageSize)
	fmt.Println("  rename history:", len(s.RenameHistory), "entries")
	return nil
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(none)"
	}
	return s
}

func joinInts(vals []int) string {
	parts := make([]string, 0, len(vals))
	for _, v := range vals {
		parts = append(parts, fmt.Sprintf("%d", v))
	}
	return strings.Join(parts, ", ")
}
