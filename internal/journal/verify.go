package journal

import (
	"fmt"

	"github.com/slyt3/Gyre/internal/assert"
)

// VerificationResult contains the results of chain verification
type VerificationResult struct {
	Valid        bool   `json:"valid"`
	TotalRecords int    `json:"total_records"`
	ErrorMessage string `json:"error,omitempty"`
	FailedAtSeq  uint64 `json:"failed_at_seq,omitempty"`
}

// Verify recomputes every hash of a run and checks sequence and linkage.
// A broken chain is reported in the result; err is only for storage failures.
func Verify(repo Repository, runID string) (*VerificationResult, error) {
	if err := assert.NotNil(repo, "repository"); err != nil {
		return nil, err
	}
	if err := assert.Check(runID != "", "runID must not be empty"); err != nil {
		return nil, err
	}

	records, err := repo.Records(runID)
	if err != nil {
		return nil, fmt.Errorf("loading records: %w", err)
	}

	result := &VerificationResult{Valid: true, TotalRecords: len(records)}
	if len(records) == 0 {
		result.Valid = false
		result.ErrorMessage = "no records found for run"
		return result, nil
	}

	fail := func(seq uint64, format string, args ...interface{}) (*VerificationResult, error) {
		result.Valid = false
		result.FailedAtSeq = seq
		result.ErrorMessage = fmt.Sprintf(format, args...)
		return result, nil
	}

	for i := range records {
		rec := &records[i]
		if rec.Seq != uint64(i) {
			return fail(rec.Seq, "sequence gap: expected %d, got %d", i, rec.Seq)
		}
		if i == 0 {
			if rec.PrevHash != GenesisPrevHash {
				return fail(rec.Seq, "genesis prev_hash is not zero")
			}
		} else if rec.PrevHash != records[i-1].Hash {
			return fail(rec.Seq, "hash chain broken at seq %d: prev_hash mismatch", rec.Seq)
		}

		calculated, err := HashRecord(rec)
		if err != nil {
			return fail(rec.Seq, "recomputing hash at seq %d: %v", rec.Seq, err)
		}
		if calculated != rec.Hash {
			return fail(rec.Seq, "hash mismatch at seq %d: stored %s, computed %s", rec.Seq, rec.Hash, calculated)
		}
	}
	return result, nil
}
