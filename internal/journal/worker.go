package journal

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/slyt3/Gyre/internal/assert"
	"github.com/slyt3/Gyre/internal/logging"
	"github.com/slyt3/Gyre/internal/models"
	"github.com/slyt3/Gyre/internal/pool"
	"github.com/slyt3/Gyre/internal/ring"
)

// BackpressureMode defines how the worker handles a full queue.
type BackpressureMode int

const (
	// BackpressureDrop drops records when the queue is full (fail-open, default).
	BackpressureDrop BackpressureMode = iota
	// BackpressureBlock waits for space, then drops after maxBlockAttempts.
	BackpressureBlock
)

// ParseBackpressure maps "drop" and "block" to a mode.
func ParseBackpressure(s string) (BackpressureMode, error) {
	switch s {
	case "", "drop":
		return BackpressureDrop, nil
	case "block":
		return BackpressureBlock, nil
	}
	return BackpressureDrop, fmt.Errorf("unknown backpressure mode %q", s)
}

func (m BackpressureMode) String() string {
	if m == BackpressureBlock {
		return "block"
	}
	return "drop"
}

// Worker journals records asynchronously. Submit pushes onto a ring buffer
// guarded by mu; a background goroutine pulls and chains them. Records are
// returned to the pool once processed.
type Worker struct {
	mu               sync.Mutex
	drainMu          sync.Mutex
	queue            *ring.Buffer[*models.Record]
	signalChan       chan struct{} // Signal to wake up processor
	db               Repository
	runID            string
	processor        *Processor
	backpressureMode BackpressureMode
	isUnhealthy      atomic.Bool
	processedRecords atomic.Uint64
	droppedRecords   atomic.Uint64
	blockedSubmits   atomic.Uint64
	latencySumNs     atomic.Uint64
	latencyCount     atomic.Uint64
	latencyBuckets   [maxLatencyBuckets]atomic.Uint64
	started          atomic.Bool
	closing          atomic.Bool
	wg               sync.WaitGroup
	shutdownOnce     sync.Once
}

const (
	maxSignalBatches  = 1 << 30
	maxDrainRecords   = 1 << 20
	maxShutdownTicks  = 1 << 12
	maxBlockAttempts  = 1000
	maxLatencyBuckets = 7
)

var latencyBucketUpperNs = [maxLatencyBuckets]uint64{
	1 * uint64(time.Millisecond),
	5 * uint64(time.Millisecond),
	10 * uint64(time.Millisecond),
	25 * uint64(time.Millisecond),
	50 * uint64(time.Millisecond),
	100 * uint64(time.Millisecond),
	^uint64(0),
}

// LatencySnapshot captures record processing latency with histogram buckets.
// BoundsNs are upper bounds in nanoseconds; the last bucket is +Inf.
type LatencySnapshot struct {
	BoundsNs [maxLatencyBuckets]uint64
	Counts   [maxLatencyBuckets]uint64
	SumNs    uint64
	Count    uint64
}

// NewWorker creates a journal worker with a queue of queueSize records.
// The worker must be started with Start() and stopped with Shutdown().
func NewWorker(queueSize int, db Repository) (*Worker, error) {
	if err := assert.NotNil(db, "database repository"); err != nil {
		return nil, err
	}
	if err := assert.Check(queueSize <= maxDrainRecords, "queue size exceeds max: %d", queueSize); err != nil {
		return nil, err
	}
	q, err := ring.New[*models.Record](queueSize)
	if err != nil {
		return nil, fmt.Errorf("creating journal queue: %w", err)
	}

	return &Worker{
		queue:            q,
		signalChan:       make(chan struct{}, 1),
		db:               db,
		backpressureMode: BackpressureDrop,
	}, nil
}

// SetBackpressureMode configures how Submit handles a full queue.
// Must be called before Start().
func (w *Worker) SetBackpressureMode(mode BackpressureMode) error {
	if err := assert.Check(mode == BackpressureDrop || mode == BackpressureBlock, "invalid backpressure mode"); err != nil {
		return err
	}
	w.backpressureMode = mode
	logging.Info("backpressure_mode_set", logging.Fields{Component: "journal", Op: mode.String()})
	return nil
}

func (w *Worker) BackpressureMode() BackpressureMode {
	return w.backpressureMode
}

// BlockedSubmits returns how many wait rounds Submit spent on a full queue.
func (w *Worker) BlockedSubmits() uint64 {
	return w.blockedSubmits.Load()
}

func (w *Worker) DB() Repository {
	return w.db
}

func (w *Worker) RunID() string {
	return w.runID
}

func (w *Worker) IsHealthy() bool {
	if w == nil {
		return false
	}
	return !w.isUnhealthy.Load()
}

// Start creates the genesis record for a new run and starts the drain loop.
func (w *Worker) Start(source string, capacity int) error {
	if err := assert.NotNil(w, "worker"); err != nil {
		return err
	}
	if !w.started.CompareAndSwap(false, true) {
		return errors.New("journal worker already started")
	}

	runID, err := CreateGenesis(w.db, source, capacity)
	if err != nil {
		w.started.Store(false)
		return fmt.Errorf("creating genesis record: %w", err)
	}
	w.runID = runID
	w.processor = NewProcessor(w.db, runID)
	logging.Info("run_started", logging.Fields{Component: "journal", RunID: runID, Value: source})

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.processRecords()
	}()
	w.signal()
	return nil
}

// Submit queues rec for journaling. It never returns an error: on overflow
// the record is dropped, counted and logged. Ownership of rec passes to the
// worker, dropped or not. Records queued before Start are chained once the
// run exists.
func (w *Worker) Submit(rec *models.Record) {
	if err := assert.NotNil(rec, "record"); err != nil {
		return
	}
	if w.closing.Load() {
		w.drop(rec, "record_dropped_shutdown")
		return
	}

	if w.tryPush(rec) {
		w.signal()
		return
	}
	if w.backpressureMode == BackpressureDrop {
		w.drop(rec, "record_dropped_backpressure")
		return
	}

	for i := 0; i < maxBlockAttempts; i++ {
		if w.closing.Load() {
			w.drop(rec, "record_dropped_shutdown_blocking")
			return
		}
		w.blockedSubmits.Add(1)
		w.signal()
		time.Sleep(1 * time.Millisecond)
		if w.tryPush(rec) {
			w.signal()
			return
		}
	}
	w.drop(rec, "record_dropped_block_timeout")
}

func (w *Worker) tryPush(rec *models.Record) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.queue.Push(rec) == nil
}

func (w *Worker) pull() (*models.Record, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.queue.Pull()
}

func (w *Worker) signal() {
	defer func() {
		// signalChan is closed during shutdown; a late signal is harmless.
		_ = recover()
	}()
	select {
	case w.signalChan <- struct{}{}:
	default:
	}
}

func (w *Worker) drop(rec *models.Record, reason string) {
	w.droppedRecords.Add(1)
	logging.Warn(reason, logging.Fields{Component: "journal", Op: rec.Op, RecordID: rec.ID, Outcome: rec.Outcome})
	pool.PutRecord(rec)
}

// Stats returns processed and dropped record counts.
func (w *Worker) Stats() (processed, dropped uint64) {
	return w.processedRecords.Load(), w.droppedRecords.Load()
}

// QueueDepth returns the current queue depth and capacity.
func (w *Worker) QueueDepth() (int, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.queue.Len(), w.queue.Cap()
}

// LatencyMetrics returns a snapshot of the latency histogram.
func (w *Worker) LatencyMetrics() LatencySnapshot {
	var snap LatencySnapshot
	for i := 0; i < maxLatencyBuckets; i++ {
		snap.BoundsNs[i] = latencyBucketUpperNs[i]
		snap.Counts[i] = w.latencyBuckets[i].Load()
	}
	snap.SumNs = w.latencySumNs.Load()
	snap.Count = w.latencyCount.Load()
	return snap
}

// Close shuts down with a default timeout.
func (w *Worker) Close() error {
	return w.Shutdown(5 * time.Second)
}

// Shutdown stops accepting records, drains the queue, and closes the repository.
func (w *Worker) Shutdown(timeout time.Duration) error {
	if err := assert.Check(timeout > 0, "timeout must be positive"); err != nil {
		return err
	}

	w.closing.Store(true)
	w.shutdownOnce.Do(func() {
		close(w.signalChan)
	})

	if err := w.waitForStop(timeout); err != nil {
		logging.Warn("shutdown_wait_timeout", logging.Fields{Component: "journal", Error: err.Error()})
	}
	w.drain()
	return w.db.Close()
}

func (w *Worker) waitForStop(timeout time.Duration) error {
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	step := timeout / maxShutdownTicks
	if step == 0 {
		step = time.Millisecond
	}
	ticker := time.NewTicker(step)
	defer ticker.Stop()

	for i := 0; i < maxShutdownTicks; i++ {
		select {
		case <-done:
			return nil
		case <-ticker.C:
		}
	}
	return errors.New("journal worker shutdown wait exceeded timeout")
}

// processRecords is the main worker loop
func (w *Worker) processRecords() {
	for i := 0; i < maxSignalBatches; i++ {
		if _, ok := <-w.signalChan; !ok {
			return
		}
		w.drain()
	}
	_ = assert.Check(false, "processRecords exceeded max signal batches")
}

func (w *Worker) drain() {
	w.drainMu.Lock()
	defer w.drainMu.Unlock()
	if w.processor == nil {
		return
	}
	for j := 0; j < maxDrainRecords; j++ {
		rec, ok := w.pull()
		if !ok {
			return
		}
		start := time.Now()
		if err := w.processor.Process(rec); err != nil {
			logging.Critical("record_processing_failed", logging.Fields{Component: "journal", RecordID: rec.ID, RunID: w.runID, Error: err.Error()})
			w.isUnhealthy.Store(true)
		}
		w.recordLatency(time.Since(start))
		w.processedRecords.Add(1)
		pool.PutRecord(rec)
	}
}

func (w *Worker) recordLatency(d time.Duration) {
	if d < 0 {
		d = 0
	}
	latencyNs := uint64(d.Nanoseconds())
	for i := 0; i < maxLatencyBuckets; i++ {
		if latencyNs <= latencyBucketUpperNs[i] {
			w.latencyBuckets[i].Add(1)
			break
		}
	}
	w.latencySumNs.Add(latencyNs)
	w.latencyCount.Add(1)
}
