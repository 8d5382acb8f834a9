package models

import "time"

// Journal operations.
const (
	OpGenesis = "genesis"
	OpPush    = "push"
	OpPull    = "pull"
)

// Operation outcomes. A push rejected by a full buffer is OutcomeFull;
// a pull from an empty buffer is OutcomeEmpty.
const (
	OutcomeOK    = "ok"
	OutcomeFull  = "full"
	OutcomeEmpty = "empty"
)

// Record is one journaled buffer operation. Seq, PrevHash and Hash are
// assigned by the journal processor, not by the submitter.
type Record struct {
	ID        string    `json:"id"`
	RunID     string    `json:"run_id"`
	Seq       uint64    `json:"seq"`
	Timestamp time.Time `json:"timestamp"`
	Actor     string    `json:"actor"`
	Op        string    `json:"op"`
	Value     string    `json:"value,omitempty"`
	Outcome   string    `json:"outcome"`
	Depth     int       `json:"depth"`
	Capacity  int       `json:"capacity"`
	PrevHash  string    `json:"prev_hash"`
	Hash      string    `json:"hash"`
}

// RunInfo describes one journaled buffer lifetime.
type RunInfo struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	Capacity    int       `json:"capacity"`
	GenesisHash string    `json:"genesis_hash"`
	CreatedAt   time.Time `json:"created_at"`
}

// RunStats aggregates the records of a run.
type RunStats struct {
	RunID        string `json:"run_id"`
	TotalRecords uint64 `json:"total_records"`
	Pushes       uint64 `json:"pushes"`
	Pulls        uint64 `json:"pulls"`
	RejectedFull uint64 `json:"rejected_full"`
	EmptyPulls   uint64 `json:"empty_pulls"`
}
