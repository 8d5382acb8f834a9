package commands

import (
	"flag"
	"fmt"
	"time"

	"github.com/slyt3/Gyre/internal/journal/store"
)

func StatusCommand(args []string) error {
	statusFlags := flag.NewFlagSet("status", flag.ExitOnError)
	dbPath := statusFlags.String("db", defaultDBPath(), "Journal database path")
	_ = statusFlags.Parse(args)

	return showStatus(*dbPath)
}

func showStatus(dbPath string) error {
	db, err := store.NewDB(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	runID, err := latestRun(db, "")
	if err != nil {
		return err
	}
	if runID == "" {
		fmt.Println("No runs found in database")
		return nil
	}

	run, err := db.Run(runID)
	if err != nil {
		return fmt.Errorf("loading run: %w", err)
	}
	if run == nil {
		return fmt.Errorf("run %s not found", runID)
	}
	stats, err := db.RunStats(runID)
	if err != nil {
		return fmt.Errorf("loading run stats: %w", err)
	}

	fmt.Println("Gyre Status")
	fmt.Println("===========")
	fmt.Printf("Run ID:        %s\n", run.ID)
	fmt.Printf("Source:        %s\n", run.Source)
	fmt.Printf("Capacity:      %d\n", run.Capacity)
	fmt.Printf("Started:       %s\n", formatTime(run.CreatedAt))
	fmt.Printf("Genesis hash:  %s\n", shortID(run.GenesisHash))
	fmt.Println()
	fmt.Printf("Records:       %d\n", stats.TotalRecords)
	fmt.Printf("Pushes:        %d (%d rejected full)\n", stats.Pushes, stats.RejectedFull)
	fmt.Printf("Pulls:         %d (%d empty)\n", stats.Pulls, stats.EmptyPulls)
	return nil
}

func formatTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04:05")
}
