package cli

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"jobdeck/internal/model"
)

func runAction(verb string, args []string) error {
	fs := flag.NewFlagSet(verb, flag.ContinueOnError)
	yes := fs.Bool("yes", false, "skip confirmation")
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: jobdeck %s [--yes] <job-id>", verb)
	}
	id := strings.TrimSpace(fs.Arg(0))
	action := model.Action(verb)

	if action == model.ActionDelete && !*yes {
		ok, err := promptConfirm(fmt.Sprintf("delete job %s? [y/N] ", id))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("delete cancelled")
			return nil
		}
	}

	client, cfg, cleanup := newClient()
	defer func() { _ = cleanup() }()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	defer cancel()

	if err := client.Do(ctx, action, id); err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(map[string]string{"job_id": id, "action": verb, "result": "ok"})
	}
	fmt.Printf("%s: ok (%s)\n", verb, id)
	return nil
}

func runPriority(args []string) error {
	fs := flag.NewFlagSet("prio", flag.ContinueOnError)
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("usage: jobdeck prio <job-id> <1-5>")
	}
	id := strings.TrimSpace(fs.Arg(0))
	prio, err := strconv.Atoi(fs.Arg(1))
	if err != nil || prio < model.PriorityHighest || prio > model.PriorityLowest {
		return fmt.Errorf("priority must be an integer between 1 and 5")
	}

	client, cfg, cleanup := newClient()
	defer func() { _ = cleanup() }()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	defer cancel()

	if err := client.UpdatePriority(ctx, id, prio); err != nil {
		return err
	}
	if *jsonOut {
		return printJSON(map[string]any{"job_id": id, "priority": prio})
	}
	fmt.Printf("priority: %s -> %d\n", id, prio)
	return nil
}
