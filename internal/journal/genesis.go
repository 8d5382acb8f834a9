package journal

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/slyt3/Gyre/internal/assert"
	"github.com/slyt3/Gyre/internal/models"
)

// CreateGenesis starts a new run for a buffer of the given capacity and
// stores its seq 0 record. Returns the new run ID.
func CreateGenesis(repo Repository, source string, capacity int) (string, error) {
	if err := assert.NotNil(repo, "repository"); err != nil {
		return "", err
	}
	if err := assert.Check(source != "", "source must not be empty"); err != nil {
		return "", err
	}
	if err := assert.Check(capacity > 0, "capacity must be positive"); err != nil {
		return "", err
	}

	runID := uuid.New().String()
	now := time.Now().UTC()

	genesis := &models.Record{
		ID:        uuid.New().String(),
		RunID:     runID,
		Seq:       0,
		Timestamp: now,
		Actor:     "system",
		Op:        models.OpGenesis,
		Value:     source,
		Outcome:   models.OutcomeOK,
		Depth:     0,
		Capacity:  capacity,
		PrevHash:  GenesisPrevHash,
	}
	hash, err := HashRecord(genesis)
	if err != nil {
		return "", fmt.Errorf("calculating genesis hash: %w", err)
	}
	genesis.Hash = hash

	run := models.RunInfo{
		ID:          runID,
		Source:      source,
		Capacity:    capacity,
		GenesisHash: hash,
		CreatedAt:   now,
	}
	if err := repo.InsertRun(run); err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}
	if err := repo.StoreRecord(genesis); err != nil {
		return "", fmt.Errorf("inserting genesis record: %w", err)
	}
	return runID, nil
}
