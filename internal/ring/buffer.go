package ring

import (
	"errors"
	"fmt"

	"github.com/slyt3/Gyre/internal/assert"
)

var (
	// ErrFull is returned by Push when every slot is occupied. The buffer is left unchanged.
	ErrFull = errors.New("ring buffer is full")
	// ErrInvalidCapacity is returned by New for a capacity below 1.
	ErrInvalidCapacity = errors.New("ring buffer capacity must be positive")
)

type slot[T any] struct {
	value    T
	occupied bool
}

// Buffer is a fixed-size FIFO ring of slots. Read and write positions cycle
// modulo capacity; when they meet, the occupancy of that slot says whether the
// buffer is empty or full. There is no element counter.
//
// Buffer is not safe for concurrent use. Callers sharing one across goroutines
// must wrap every call in their own lock.
type Buffer[T any] struct {
	slots []slot[T]
	read  int
	write int
}

// New creates a buffer with capacity vacant slots.
// Returns an error wrapping ErrInvalidCapacity if capacity <= 0.
func New[T any](capacity int) (*Buffer[T], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
	}
	return &Buffer[T]{
		slots: make([]slot[T], capacity),
	}, nil
}

// IsEmpty reports whether no slot holds a value.
func (b *Buffer[T]) IsEmpty() bool {
	return b.read == b.write && !b.slots[b.write].occupied
}

// IsFull reports whether every slot holds a value.
func (b *Buffer[T]) IsFull() bool {
	return b.read == b.write && b.slots[b.write].occupied
}

// Push stores item at the write position.
// Returns ErrFull if no slot is vacant; the item is not stored.
func (b *Buffer[T]) Push(item T) error {
	if b.IsFull() {
		return ErrFull
	}
	b.slots[b.write] = slot[T]{value: item, occupied: true}
	b.write = b.next(b.write)
	return nil
}

// Pull removes and returns the oldest item. ok is false on an empty buffer.
// The vacated slot is zeroed so the buffer keeps no reference to the value.
func (b *Buffer[T]) Pull() (item T, ok bool) {
	if b.IsEmpty() {
		return item, false
	}
	s := b.slots[b.read]
	assert.Invariant(s.occupied, "ring slot %d vacant while buffer is not empty (read=%d write=%d)", b.read, b.read, b.write)

	b.slots[b.read] = slot[T]{}
	b.read = b.next(b.read)
	return s.value, true
}

// Len returns the number of live items, derived from the indices.
func (b *Buffer[T]) Len() int {
	if b.IsFull() {
		return len(b.slots)
	}
	return (b.write - b.read + len(b.slots)) % len(b.slots)
}

// Cap returns the fixed number of slots.
func (b *Buffer[T]) Cap() int {
	return len(b.slots)
}

func (b *Buffer[T]) next(i int) int {
	return (i + 1) % len(b.slots)
}
