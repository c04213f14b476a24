package cli

import "fmt"

func Run(args []string) error {
	if len(args) == 0 {
		printRootUsage()
		return nil
	}

	switch args[0] {
	case "dash":
		return runDash(args[1:])
	case "list":
		return runList(args[1:])
	case "pause", "resume", "cancel", "delete", "reset", "reset-failed":
		return runAction(args[0], args[1:])
	case "prio":
		return runPriority(args[1:])
	case "export":
		return runExport(args[1:])
	case "settings":
		return runSettings(args[1:])
	case "help", "-h", "--help":
		printRootUsage()
		return nil
	default:
		printRootUsage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func printRootUsage() {
	fmt.Println("jobdeck: terminal dashboard for the batch job queue")
	fmt.Println()
	fmt.Println("Quick Start:")
	fmt.Println("  jobdeck dash")
	fmt.Println("  jobdeck list --owner <name>")
	fmt.Println("  jobdeck export")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  dash          interactive queue dashboard (live progress, reorder, bulk actions)")
	fmt.Println("  list          print the current queue")
	fmt.Println("  pause         pause a job by id")
	fmt.Println("  resume        resume a job by id")
	fmt.Println("  cancel        cancel a running job by id")
	fmt.Println("  delete        delete a job by id")
	fmt.Println("  reset         reset a finished job back to queued")
	fmt.Println("  reset-failed  requeue a failed job")
	fmt.Println("  prio          set a job's priority (1 highest .. 5 lowest)")
	fmt.Println("  export        create an export and wait for the download URL")
	fmt.Println("  settings      show persisted dashboard settings")
	fmt.Println()
	fmt.Println("Notes:")
	fmt.Println("  - Use --json on commands for machine-readable output")
	fmt.Println("  - Backend location comes from JOBDECK_API_URL (default http://localhost:8080)")
}
