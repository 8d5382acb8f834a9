package journal

import (
	"fmt"

	"github.com/slyt3/Gyre/internal/assert"
	"github.com/slyt3/Gyre/internal/logging"
	"github.com/slyt3/Gyre/internal/models"
)

// Processor chains records onto a run: it assigns the sequence number and
// prev hash, hashes, and stores. Not safe for concurrent use; the worker
// drives it from a single goroutine.
type Processor struct {
	repo     Repository
	runID    string
	loaded   bool
	lastSeq  uint64
	lastHash string
}

func NewProcessor(repo Repository, runID string) *Processor {
	return &Processor{repo: repo, runID: runID}
}

// Process appends rec to the run's hash chain.
func (p *Processor) Process(rec *models.Record) error {
	if err := assert.NotNil(rec, "record"); err != nil {
		return err
	}
	if err := assert.NotNil(p.repo, "repository"); err != nil {
		return err
	}
	if err := assert.Check(p.runID != "", "processor has no run"); err != nil {
		return err
	}

	if !p.loaded {
		seq, hash, err := p.repo.LastRecord(p.runID)
		if err != nil {
			return fmt.Errorf("loading chain head: %w", err)
		}
		if err := assert.Check(hash != "", "run %s has no genesis record", p.runID); err != nil {
			return err
		}
		p.lastSeq, p.lastHash, p.loaded = seq, hash, true
	}

	rec.RunID = p.runID
	rec.Seq = p.lastSeq + 1
	rec.PrevHash = p.lastHash

	hash, err := HashRecord(rec)
	if err != nil {
		return fmt.Errorf("calculating hash: %w", err)
	}
	rec.Hash = hash

	if err := p.repo.StoreRecord(rec); err != nil {
		// Reload the head next time; the store may or may not have the row.
		p.loaded = false
		return fmt.Errorf("storing record: %w", err)
	}
	p.lastSeq, p.lastHash = rec.Seq, rec.Hash

	logging.Debug("record_chained", logging.Fields{
		Component: "journal",
		Op:        rec.Op,
		RunID:     rec.RunID,
		RecordID:  rec.ID,
		Value:     rec.Value,
		Outcome:   rec.Outcome,
	})
	return nil
}
