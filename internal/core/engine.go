package core

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/slyt3/Gyre/internal/logging"
	"github.com/slyt3/Gyre/internal/models"
	"github.com/slyt3/Gyre/internal/pool"
	"github.com/slyt3/Gyre/internal/ring"
)

// Buffer states reported by State.
const (
	StateEmpty   = "empty"
	StateFull    = "full"
	StatePartial = "partial"
)

// State is a point-in-time view of the buffer.
type State struct {
	State    string `json:"state"`
	Len      int    `json:"len"`
	Capacity int    `json:"capacity"`
}

// Journal receives one record per buffer operation.
// *journal.Worker satisfies it.
type Journal interface {
	Submit(rec *models.Record)
}

// Observer is notified after every operation; metrics hook in here.
type Observer interface {
	ObservePush(outcome string)
	ObservePull(outcome string)
}

// Engine owns a string ring buffer shared by concurrent callers. Every call
// takes mu; the buffer itself does no locking.
type Engine struct {
	mu       sync.Mutex
	buf      *ring.Buffer[string]
	actor    string
	journal  Journal
	observer Observer
}

// Option configures an Engine.
type Option func(*Engine)

// WithJournal records every operation to j.
func WithJournal(j Journal) Option {
	return func(e *Engine) { e.journal = j }
}

// WithObserver reports every operation outcome to o.
func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observer = o }
}

// WithActor sets the actor stamped on journal records (default "engine").
func WithActor(actor string) Option {
	return func(e *Engine) { e.actor = actor }
}

// NewEngine creates an engine around a new buffer of the given capacity.
func NewEngine(capacity int, opts ...Option) (*Engine, error) {
	buf, err := ring.New[string](capacity)
	if err != nil {
		return nil, fmt.Errorf("creating buffer: %w", err)
	}
	e := &Engine{buf: buf, actor: "engine"}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Push appends value. Returns ring.ErrFull when the buffer has no vacant slot.
func (e *Engine) Push(value string) error {
	e.mu.Lock()
	err := e.buf.Push(value)
	outcome := models.OutcomeOK
	if errors.Is(err, ring.ErrFull) {
		outcome = models.OutcomeFull
	}
	e.record(models.OpPush, value, outcome)
	e.mu.Unlock()

	if e.observer != nil {
		e.observer.ObservePush(outcome)
	}
	return err
}

// Pull removes the oldest value. ok is false when the buffer is empty.
func (e *Engine) Pull() (string, bool) {
	e.mu.Lock()
	value, ok := e.buf.Pull()
	outcome := models.OutcomeOK
	if !ok {
		outcome = models.OutcomeEmpty
	}
	e.record(models.OpPull, value, outcome)
	e.mu.Unlock()

	if e.observer != nil {
		e.observer.ObservePull(outcome)
	}
	return value, ok
}

// IsEmpty reports whether the buffer holds no values.
func (e *Engine) IsEmpty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buf.IsEmpty()
}

// IsFull reports whether every slot holds a value.
func (e *Engine) IsFull() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buf.IsFull()
}

// State returns the buffer's state, length and capacity under one lock.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := State{State: StatePartial, Len: e.buf.Len(), Capacity: e.buf.Cap()}
	switch {
	case e.buf.IsEmpty():
		s.State = StateEmpty
	case e.buf.IsFull():
		s.State = StateFull
	}
	return s
}

// Capacity returns the fixed buffer capacity.
func (e *Engine) Capacity() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buf.Cap()
}

// record must be called with mu held so journal order matches buffer order.
func (e *Engine) record(op, value, outcome string) {
	logging.Debug("buffer_op", logging.Fields{Component: "engine", Op: op, Value: value, Outcome: outcome})
	if e.journal == nil {
		return
	}
	rec := pool.GetRecord()
	rec.ID = uuid.New().String()
	rec.Timestamp = time.Now().UTC()
	rec.Actor = e.actor
	rec.Op = op
	rec.Value = value
	rec.Outcome = outcome
	rec.Depth = e.buf.Len()
	rec.Capacity = e.buf.Cap()
	e.journal.Submit(rec)
}
