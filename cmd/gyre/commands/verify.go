package commands

import (
	"errors"
	"flag"
	"fmt"

	"github.com/slyt3/Gyre/internal/journal"
	"github.com/slyt3/Gyre/internal/journal/store"
)

// ErrChainInvalid is returned when verification finds a broken chain.
var ErrChainInvalid = errors.New("chain verification failed")

func VerifyCommand(args []string) error {
	verifyFlags := flag.NewFlagSet("verify", flag.ExitOnError)
	dbPath := verifyFlags.String("db", defaultDBPath(), "Journal database path")
	runFlag := verifyFlags.String("run", "", "Run ID to verify (default: latest)")
	_ = verifyFlags.Parse(args)

	return verifyRun(*dbPath, *runFlag)
}

func verifyRun(dbPath, runFlag string) error {
	db, err := store.NewDB(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	runID, err := latestRun(db, runFlag)
	if err != nil {
		return err
	}
	if runID == "" {
		fmt.Println("No runs found in database")
		return nil
	}

	fmt.Printf("Verifying chain for run: %s\n", shortID(runID))
	result, err := journal.Verify(db, runID)
	if err != nil {
		return fmt.Errorf("verification error: %w", err)
	}

	if !result.Valid {
		fmt.Print("[FAILED] Chain verification failed\n")
		fmt.Printf("  Error: %s\n", result.ErrorMessage)
		fmt.Printf("  Failed at sequence: %d\n", result.FailedAtSeq)
		return ErrChainInvalid
	}
	fmt.Printf("[OK] Chain is valid (%d records verified)\n", result.TotalRecords)
	return nil
}
