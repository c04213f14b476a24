package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"jobdeck/internal/api"
	"jobdeck/internal/model"
)

func runList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	owner := fs.String("owner", "", "filter by owner (server-side)")
	status := fs.String("status", "", "filter by status (server-side)")
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, cfg, cleanup := newClient()
	defer func() { _ = cleanup() }()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	defer cancel()

	jobs, rate, err := client.ListJobs(ctx, api.ListOptions{Owner: strings.TrimSpace(*owner), Status: strings.TrimSpace(*status)})
	if err != nil {
		return err
	}

	if *jsonOut {
		return printJSON(map[string]any{"jobs": jobs})
	}

	fmt.Printf("%-3s %-28s %-10s %-9s %-4s %-12s %s\n", "#", "NAME", "OWNER", "STATUS", "PRI", "UNITS", "CREATED")
	for i, j := range jobs {
		created := j.CreatedAt
		if len(created) > 10 {
			created = created[:10]
		}
		fmt.Printf("%-3d %-28s %-10s %-9s %-4d %5d/%-6d %s\n",
			i+1, truncateRunes(j.Name, 28), truncateRunes(j.Owner, 10),
			model.StatusLabel(j.Status), j.Priority, j.ProcessedUnits, j.TotalUnits, created)
	}
	if rate != nil {
		fmt.Printf("\nrate limit: %d requests remaining\n", rate.Remaining)
	}
	return nil
}
