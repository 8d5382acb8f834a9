package commands

import (
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/slyt3/Gyre/internal/config"
	"github.com/slyt3/Gyre/internal/core"
	"github.com/slyt3/Gyre/internal/scenario"
)

// ErrScenarioFailed is returned when at least one step missed its expectation.
var ErrScenarioFailed = errors.New("scenario failed")

func RunCommand(args []string) error {
	runFlags := flag.NewFlagSet("run", flag.ExitOnError)
	dbPath := runFlags.String("db", defaultDBPath(), "Journal database path")
	_ = runFlags.Parse(reorderFlags(args))

	if runFlags.NArg() < 1 {
		return errors.New("run requires a scenario file\nUsage: gyre run <scenario.yaml> [-db path]")
	}
	return runScenario(runFlags.Arg(0), *dbPath)
}

func runScenario(path, dbPath string) error {
	sc, err := scenario.Load(path)
	if err != nil {
		return err
	}

	worker, err := startJournal(dbPath, config.DefaultQueueSize, "block", "scenario:"+sc.Name, sc.Capacity)
	if err != nil {
		return err
	}
	engine, err := core.NewEngine(sc.Capacity, core.WithJournal(worker), core.WithActor("scenario"))
	if err != nil {
		_ = worker.Shutdown(shutdownTimeout)
		return err
	}

	report, runErr := scenario.Run(engine, sc)
	runID := worker.RunID()
	if err := worker.Shutdown(shutdownTimeout); err != nil {
		return fmt.Errorf("closing journal: %w", err)
	}
	if runErr != nil {
		return runErr
	}

	fmt.Printf("Scenario %s (capacity %d), run %s\n", sc.Name, sc.Capacity, shortID(runID))
	for _, st := range report.Steps {
		status := "[OK]    "
		if !st.Passed {
			status = "[FAILED]"
		}
		label := st.Op
		if st.Value != "" {
			label = fmt.Sprintf("%s %s", st.Op, st.Value)
		}
		fmt.Printf("  %s %3d %-16s expect=%-8s got=%s\n", status, st.Index, label, st.Expect, st.Got)
	}

	if !report.Passed() {
		fmt.Printf("%d of %d steps failed\n", report.Failures, len(report.Steps))
		return ErrScenarioFailed
	}
	fmt.Printf("All %d steps passed\n", len(report.Steps))
	return nil
}

// reorderFlags moves flags ahead of positional arguments so
// "run file.yaml -db x" parses like "run -db x file.yaml".
func reorderFlags(args []string) []string {
	var flags, positional []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		if len(a) > 1 && a[0] == '-' {
			flags = append(flags, a)
			if !strings.Contains(a, "=") && i+1 < len(args) {
				flags = append(flags, args[i+1])
				i++
			}
			continue
		}
		positional = append(positional, a)
	}
	return append(flags, positional...)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
