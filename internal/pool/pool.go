package pool

import (
	"sync"
	"sync/atomic"

	"github.com/slyt3/Gyre/internal/assert"
	"github.com/slyt3/Gyre/internal/models"
)

// Metrics tracks pool performance
type Metrics struct {
	RecordHits   uint64 `json:"record_hits"`
	RecordMisses uint64 `json:"record_misses"`
	RecordPuts   uint64 `json:"record_puts"`
}

var globalMetrics Metrics

// GetMetrics returns a copy of the current pool metrics
func GetMetrics() Metrics {
	return Metrics{
		RecordHits:   atomic.LoadUint64(&globalMetrics.RecordHits),
		RecordMisses: atomic.LoadUint64(&globalMetrics.RecordMisses),
		RecordPuts:   atomic.LoadUint64(&globalMetrics.RecordPuts),
	}
}

var recordPool = sync.Pool{
	New: func() interface{} {
		atomic.AddUint64(&globalMetrics.RecordMisses, 1)
		return &models.Record{}
	},
}

// GetRecord acquires a zeroed record from the pool.
// New() only runs on a miss, so every Get counts as a hit and misses are
// tracked separately.
func GetRecord() *models.Record {
	if err := assert.Check(recordPool.New != nil, "recordPool.New must be defined"); err != nil {
		return &models.Record{}
	}
	atomic.AddUint64(&globalMetrics.RecordHits, 1)
	return recordPool.Get().(*models.Record)
}

// PutRecord resets rec and returns it to the pool.
// The caller must not touch rec afterwards.
func PutRecord(rec *models.Record) {
	if rec == nil {
		return
	}
	*rec = models.Record{}
	atomic.AddUint64(&globalMetrics.RecordPuts, 1)
	recordPool.Put(rec)
}
