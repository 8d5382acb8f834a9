package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/slyt3/Gyre/internal/assert"
	"github.com/slyt3/Gyre/internal/models"
)

// InsertRun records a new buffer run.
func (db *DB) InsertRun(run models.RunInfo) error {
	if err := assert.Check(run.ID != "", "run id must not be empty"); err != nil {
		return err
	}
	if err := assert.Check(run.GenesisHash != "", "genesis hash must not be empty"); err != nil {
		return err
	}
	_, err := db.conn.Exec(
		`INSERT INTO runs (id, source, capacity, genesis_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Source, run.Capacity, run.GenesisHash, run.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}
	return nil
}

// HasRuns reports whether any run has been journaled.
func (db *DB) HasRuns() (bool, error) {
	var count int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&count); err != nil {
		return false, fmt.Errorf("counting runs: %w", err)
	}
	return count > 0, nil
}

// LatestRun returns the most recently created run ID, or "" if none exist.
func (db *DB) LatestRun() (string, error) {
	var runID string
	err := db.conn.QueryRow(`SELECT id FROM runs ORDER BY created_at DESC, rowid DESC LIMIT 1`).Scan(&runID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("querying latest run: %w", err)
	}
	return runID, nil
}

// Run returns the run's metadata, or nil if the run does not exist.
func (db *DB) Run(runID string) (*models.RunInfo, error) {
	if err := assert.Check(runID != "", "runID must not be empty"); err != nil {
		return nil, err
	}
	var run models.RunInfo
	var createdAt string
	err := db.conn.QueryRow(
		`SELECT id, source, capacity, genesis_hash, created_at FROM runs WHERE id = ?`, runID,
	).Scan(&run.ID, &run.Source, &run.Capacity, &run.GenesisHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying run: %w", err)
	}
	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		run.CreatedAt = t
	}
	return &run, nil
}
