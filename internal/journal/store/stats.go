package store

import (
	"fmt"

	"github.com/slyt3/Gyre/internal/assert"
	"github.com/slyt3/Gyre/internal/models"
)

// RunStats returns per-op and per-outcome counts for a run.
func (db *DB) RunStats(runID string) (*models.RunStats, error) {
	if err := assert.Check(runID != "", "runID must not be empty"); err != nil {
		return nil, err
	}
	stats := &models.RunStats{RunID: runID}

	err := db.conn.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN op = 'push' AND outcome = 'ok' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN op = 'pull' AND outcome = 'ok' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN op = 'push' AND outcome = 'full' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN op = 'pull' AND outcome = 'empty' THEN 1 ELSE 0 END), 0)
		FROM records WHERE run_id = ?`, runID,
	).Scan(&stats.TotalRecords, &stats.Pushes, &stats.Pulls, &stats.RejectedFull, &stats.EmptyPulls)
	if err != nil {
		return nil, fmt.Errorf("querying run stats: %w", err)
	}
	return stats, nil
}
