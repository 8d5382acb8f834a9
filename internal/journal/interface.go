package journal

import "github.com/slyt3/Gyre/internal/models"

// Repository is the storage interface for the buffer journal.
// The SQLite implementation lives in journal/store.
type Repository interface {
	// Writer
	InsertRun(run models.RunInfo) error
	StoreRecord(rec *models.Record) error

	// Reader
	LastRecord(runID string) (seq uint64, hash string, err error)
	Records(runID string) ([]models.Record, error)

	// Meta
	HasRuns() (bool, error)
	LatestRun() (string, error)
	Run(runID string) (*models.RunInfo, error)
	RunStats(runID string) (*models.RunStats, error)

	// Lifecycle
	Close() error
}
