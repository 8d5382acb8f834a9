package commands

import (
	"fmt"

	"github.com/slyt3/Gyre/internal/config"
	"github.com/slyt3/Gyre/internal/journal"
	"github.com/slyt3/Gyre/internal/journal/store"
)

// startJournal opens the database and starts a worker for a new run.
// Shutting the worker down closes the database.
func startJournal(dbPath string, queueSize int, backpressure string, source string, capacity int) (*journal.Worker, error) {
	mode, err := journal.ParseBackpressure(backpressure)
	if err != nil {
		return nil, err
	}

	db, err := store.NewDB(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}

	worker, err := journal.NewWorker(queueSize, db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating journal worker: %w", err)
	}
	if err := worker.SetBackpressureMode(mode); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := worker.Start(source, capacity); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("starting journal worker: %w", err)
	}
	return worker, nil
}

// latestRun resolves runID, falling back to the most recent run.
func latestRun(db journal.Repository, runID string) (string, error) {
	if runID != "" {
		return runID, nil
	}
	id, err := db.LatestRun()
	if err != nil {
		return "", fmt.Errorf("finding latest run: %w", err)
	}
	return id, nil
}

// defaultDBPath honors GYRE_DB so the CLI finds the same journal as serve.
func defaultDBPath() string {
	cfg, err := config.Load("")
	if err != nil {
		return config.DefaultDBPath
	}
	return cfg.Journal.Path
}
