package ring

import (
	"errors"
	"testing"

	"github.com/slyt3/Gyre/internal/assert"
)

// TestNew_EdgeCases tests buffer creation with various edge case inputs
func TestNew_EdgeCases(t *testing.T) {
	tests := []struct {
		name      string
		capacity  int
		wantError bool
	}{
		{"zero capacity", 0, true},
		{"negative capacity", -1, true},
		{"valid small capacity", 1, false},
		{"valid large capacity", 10000, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, err := New[int](tt.capacity)
			if tt.wantError {
				if !errors.Is(err, ErrInvalidCapacity) {
					t.Errorf("expected ErrInvalidCapacity for capacity %d, got %v", tt.capacity, err)
				}
				if buf != nil {
					t.Errorf("expected nil buffer for capacity %d", tt.capacity)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error for capacity %d: %v", tt.capacity, err)
			}
			if buf == nil {
				t.Fatalf("expected non-nil buffer for capacity %d", tt.capacity)
			}
			if buf.Cap() != tt.capacity {
				t.Errorf("expected cap %d, got %d", tt.capacity, buf.Cap())
			}
		})
	}
}

func TestNew_StartsEmpty(t *testing.T) {
	for capacity := 1; capacity <= 16; capacity++ {
		buf, err := New[int](capacity)
		if err != nil {
			t.Fatalf("capacity %d: %v", capacity, err)
		}
		if !buf.IsEmpty() {
			t.Errorf("capacity %d: new buffer should be empty", capacity)
		}
		if buf.IsFull() {
			t.Errorf("capacity %d: new buffer should not be full", capacity)
		}
		if buf.Len() != 0 {
			t.Errorf("capacity %d: new buffer should have length 0, got %d", capacity, buf.Len())
		}
	}
}

func TestPush_OneObject(t *testing.T) {
	buf, _ := New[int](5)
	if err := buf.Push(42); err != nil {
		t.Fatalf("push failed: %v", err)
	}
	if buf.IsEmpty() {
		t.Error("buffer should not be empty after push")
	}
}

func TestPushPull_RoundTrip(t *testing.T) {
	buf, _ := New[int](5)
	if err := buf.Push(1312); err != nil {
		t.Fatalf("push failed: %v", err)
	}
	got, ok := buf.Pull()
	if !ok {
		t.Fatal("expected a value")
	}
	if got != 1312 {
		t.Errorf("expected 1312, got %d", got)
	}
	if !buf.IsEmpty() {
		t.Error("buffer should be empty after round trip")
	}
}

// TestPushPull_EdgeCases tests push/pull with boundary conditions
func TestPushPull_EdgeCases(t *testing.T) {
	const capacity = 3
	buf, err := New[string](capacity)
	if err != nil {
		t.Fatalf("failed to create buffer: %v", err)
	}

	if v, ok := buf.Pull(); ok {
		t.Errorf("expected no value from empty buffer, got %q", v)
	}

	for i := 0; i < capacity; i++ {
		if err := buf.Push("item"); err != nil {
			t.Fatalf("failed to push item %d: %v", i, err)
		}
	}

	if err := buf.Push("overflow"); !errors.Is(err, ErrFull) {
		t.Errorf("expected ErrFull, got %v", err)
	}
	if !buf.IsFull() {
		t.Error("buffer should be full")
	}
	if buf.IsEmpty() {
		t.Error("buffer should not be empty")
	}

	for i := 0; i < capacity; i++ {
		v, ok := buf.Pull()
		if !ok {
			t.Fatalf("failed to pull item %d", i)
		}
		if v != "item" {
			t.Errorf("overflow item leaked into buffer: %q", v)
		}
	}

	if buf.IsFull() {
		t.Error("buffer should not be full")
	}
	if !buf.IsEmpty() {
		t.Error("buffer should be empty")
	}
	if _, ok := buf.Pull(); ok {
		t.Error("expected no value after drain")
	}
}

func TestPush_FullLeavesContentUnchanged(t *testing.T) {
	for capacity := 1; capacity <= 8; capacity++ {
		buf, _ := New[int](capacity)
		for i := 0; i < capacity; i++ {
			if err := buf.Push(i); err != nil {
				t.Fatalf("capacity %d: push %d failed: %v", capacity, i, err)
			}
		}
		if err := buf.Push(-1); !errors.Is(err, ErrFull) {
			t.Fatalf("capacity %d: expected ErrFull, got %v", capacity, err)
		}
		if !buf.IsFull() {
			t.Errorf("capacity %d: should still be full after rejected push", capacity)
		}
		for i := 0; i < capacity; i++ {
			got, ok := buf.Pull()
			if !ok || got != i {
				t.Errorf("capacity %d: pull %d = (%d, %v), want (%d, true)", capacity, i, got, ok, i)
			}
		}
	}
}

func TestPushAllStorage(t *testing.T) {
	buf, _ := New[int](5)
	for _, v := range []int{13, 12, 13, 12} {
		if err := buf.Push(v); err != nil {
			t.Fatalf("push %d failed: %v", v, err)
		}
	}
	if err := buf.Push(666); err != nil {
		t.Fatalf("fifth push should succeed: %v", err)
	}
	if err := buf.Push(42); !errors.Is(err, ErrFull) {
		t.Fatalf("expected ErrFull, got %v", err)
	}
	if !buf.IsFull() {
		t.Error("buffer should report full after rejected push")
	}
}

func TestRingItOnce(t *testing.T) {
	buf, _ := New[int](5)
	for _, v := range []int{13, 12, 42, 64} {
		if err := buf.Push(v); err != nil {
			t.Fatalf("push %d failed: %v", v, err)
		}
	}
	if err := buf.Push(666); err != nil {
		t.Fatalf("push 666 failed: %v", err)
	}
	if !buf.IsFull() {
		t.Fatal("buffer should be full at 5/5")
	}

	for _, want := range []int{13, 12} {
		got, ok := buf.Pull()
		if !ok || got != want {
			t.Fatalf("pull = (%d, %v), want (%d, true)", got, ok, want)
		}
	}
	if buf.IsFull() || buf.IsEmpty() {
		t.Fatalf("buffer at 2/5 pulled should be neither full nor empty (len %d)", buf.Len())
	}

	if err := buf.Push(7); err != nil {
		t.Fatalf("push 7 failed: %v", err)
	}
	for _, want := range []int{42, 64, 666, 7} {
		got, ok := buf.Pull()
		if !ok || got != want {
			t.Fatalf("pull = (%d, %v), want (%d, true)", got, ok, want)
		}
	}
	if !buf.IsEmpty() {
		t.Error("buffer should end empty")
	}
}

// TestPushPull_Wraparound tests ring buffer wraparound behavior
func TestPushPull_Wraparound(t *testing.T) {
	const capacity = 4
	buf, err := New[int](capacity)
	if err != nil {
		t.Fatalf("failed to create buffer: %v", err)
	}

	for cycle := 0; cycle < 3; cycle++ {
		for i := 0; i < capacity; i++ {
			value := cycle*capacity + i
			if err := buf.Push(value); err != nil {
				t.Fatalf("cycle %d: failed to push %d: %v", cycle, value, err)
			}
		}

		// Partial drain (2 items)
		for i := 0; i < 2; i++ {
			expected := cycle*capacity + i
			got, ok := buf.Pull()
			if !ok {
				t.Fatalf("cycle %d: pull returned nothing", cycle)
			}
			if got != expected {
				t.Errorf("cycle %d: expected %d, got %d", cycle, expected, got)
			}
		}

		// Push 2 more items (wraps past index 0)
		for i := 0; i < 2; i++ {
			value := (cycle+1)*capacity*10 + i
			if err := buf.Push(value); err != nil {
				t.Fatalf("cycle %d: failed to push wraparound %d: %v", cycle, value, err)
			}
		}

		want := []int{
			cycle*capacity + 2,
			cycle*capacity + 3,
			(cycle + 1) * capacity * 10,
			(cycle+1)*capacity*10 + 1,
		}
		for _, expected := range want {
			got, ok := buf.Pull()
			if !ok || got != expected {
				t.Fatalf("cycle %d: pull = (%d, %v), want (%d, true)", cycle, got, ok, expected)
			}
		}
		if !buf.IsEmpty() {
			t.Fatalf("cycle %d: buffer should be empty", cycle)
		}
	}
}

func TestWraparound_AllOffsets(t *testing.T) {
	for capacity := 1; capacity <= 7; capacity++ {
		for k := 0; k < capacity; k++ {
			buf, _ := New[int](capacity)
			next := 0
			for i := 0; i < capacity; i++ {
				_ = buf.Push(next)
				next++
			}
			for i := 0; i < k; i++ {
				_, _ = buf.Pull()
			}
			for i := 0; i < k; i++ {
				if err := buf.Push(next); err != nil {
					t.Fatalf("cap %d k %d: refill push failed: %v", capacity, k, err)
				}
				next++
			}
			for want := k; want < next; want++ {
				got, ok := buf.Pull()
				if !ok || got != want {
					t.Fatalf("cap %d k %d: pull = (%d, %v), want (%d, true)", capacity, k, got, ok, want)
				}
			}
		}
	}
}

func TestState_NeverBothEmptyAndFull(t *testing.T) {
	const capacity = 3
	buf, _ := New[int](capacity)
	ops := []bool{true, true, false, true, true, true, false, false, false, false, true}
	for i, push := range ops {
		if push {
			_ = buf.Push(i)
		} else {
			_, _ = buf.Pull()
		}
		empty, full := buf.IsEmpty(), buf.IsFull()
		if empty && full {
			t.Fatalf("step %d: buffer both empty and full", i)
		}
		switch n := buf.Len(); {
		case n == 0 && !empty:
			t.Errorf("step %d: len 0 but not empty", i)
		case n == capacity && !full:
			t.Errorf("step %d: len %d but not full", i, n)
		case n > 0 && n < capacity && (empty || full):
			t.Errorf("step %d: len %d but empty=%v full=%v", i, n, empty, full)
		}
	}
}

// TestLen_Consistency tests length tracking across operations
func TestLen_Consistency(t *testing.T) {
	const capacity = 5
	buf, _ := New[int](capacity)

	for i := 1; i <= capacity; i++ {
		if err := buf.Push(i * 10); err != nil {
			t.Fatalf("failed to push: %v", err)
		}
		if buf.Len() != i {
			t.Errorf("expected length %d after %d pushes, got %d", i, i, buf.Len())
		}
	}

	for i := capacity - 1; i >= 0; i-- {
		if _, ok := buf.Pull(); !ok {
			t.Fatal("failed to pull")
		}
		if buf.Len() != i {
			t.Errorf("expected length %d after pull, got %d", i, buf.Len())
		}
	}
}

// TestCap_Immutable tests that capacity remains constant
func TestCap_Immutable(t *testing.T) {
	const capacity = 7
	buf, _ := New[int](capacity)

	for i := 0; i < capacity*2; i++ {
		_ = buf.Push(i)
		if buf.Cap() != capacity {
			t.Errorf("capacity changed to %d after push", buf.Cap())
		}
		if !buf.IsEmpty() {
			_, _ = buf.Pull()
			if buf.Cap() != capacity {
				t.Errorf("capacity changed to %d after pull", buf.Cap())
			}
		}
	}
}

// TestBuffer_NilItems tests buffer behavior with nil pointer types
func TestBuffer_NilItems(t *testing.T) {
	buf, _ := New[*int](3)

	if err := buf.Push(nil); err != nil {
		t.Errorf("failed to push nil: %v", err)
	}
	if buf.IsEmpty() {
		t.Error("a stored nil still occupies a slot")
	}
	val, ok := buf.Pull()
	if !ok {
		t.Fatal("expected a value")
	}
	if val != nil {
		t.Errorf("expected nil, got %v", val)
	}
	if !buf.IsEmpty() {
		t.Error("buffer should be empty")
	}
}

func TestPull_ReleasesSlot(t *testing.T) {
	buf, _ := New[*int](2)
	v := 9
	_ = buf.Push(&v)
	_, _ = buf.Pull()

	if buf.slots[0].value != nil || buf.slots[0].occupied {
		t.Error("pulled slot should be zeroed")
	}
}

func TestPull_CorruptSlotPanics(t *testing.T) {
	oldSuppressLogs := assert.SuppressLogs
	assert.SuppressLogs = true
	defer func() { assert.SuppressLogs = oldSuppressLogs }()

	buf, _ := New[int](3)
	_ = buf.Push(1)
	_ = buf.Push(2)
	// Vacate the read slot behind the buffer's back.
	buf.slots[buf.read] = slot[int]{}

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on vacant slot in non-empty buffer")
		}
	}()
	buf.Pull()
}

func TestNext(t *testing.T) {
	buf, _ := New[int](3)
	for i, want := range []int{1, 2, 0} {
		if got := buf.next(i); got != want {
			t.Errorf("next(%d) = %d, want %d", i, got, want)
		}
	}
}

// FuzzFIFO drives random push/pull sequences against a slice model.
func FuzzFIFO(f *testing.F) {
	f.Add(uint8(5), []byte{1, 1, 1, 1, 1, 0, 0, 1, 0, 0, 0, 0, 0})
	f.Add(uint8(1), []byte{1, 1, 0, 0, 1})
	f.Add(uint8(3), []byte{})

	f.Fuzz(func(t *testing.T, capacity uint8, ops []byte) {
		c := int(capacity%32) + 1
		buf, err := New[int](c)
		if err != nil {
			t.Fatalf("New(%d): %v", c, err)
		}
		var model []int
		for i, op := range ops {
			if op%2 == 1 {
				err := buf.Push(i)
				if len(model) == c {
					if !errors.Is(err, ErrFull) {
						t.Fatalf("step %d: expected ErrFull, got %v", i, err)
					}
					continue
				}
				if err != nil {
					t.Fatalf("step %d: push failed: %v", i, err)
				}
				model = append(model, i)
				continue
			}
			got, ok := buf.Pull()
			if len(model) == 0 {
				if ok {
					t.Fatalf("step %d: pulled %d from empty buffer", i, got)
				}
				continue
			}
			if !ok || got != model[0] {
				t.Fatalf("step %d: pull = (%d, %v), want (%d, true)", i, got, ok, model[0])
			}
			model = model[1:]

			if buf.Len() != len(model) {
				t.Fatalf("step %d: len %d, model %d", i, buf.Len(), len(model))
			}
		}
		if buf.IsEmpty() != (len(model) == 0) || buf.IsFull() != (len(model) == c) {
			t.Fatalf("state mismatch: empty=%v full=%v model=%d cap=%d", buf.IsEmpty(), buf.IsFull(), len(model), c)
		}
	})
}

// BenchmarkPush_SingleThread measures push performance on a single goroutine
func BenchmarkPush_SingleThread(b *testing.B) {
	buf, _ := New[int](10000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := buf.Push(i); err != nil {
			_, _ = buf.Pull()
			_ = buf.Push(i)
		}
	}
}

// BenchmarkPull_SingleThread measures pull performance on a single goroutine
func BenchmarkPull_SingleThread(b *testing.B) {
	buf, _ := New[int](10000)
	for i := 0; i < 10000; i++ {
		_ = buf.Push(i)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, ok := buf.Pull(); !ok {
			_ = buf.Push(i)
			_, _ = buf.Pull()
		}
	}
}

// BenchmarkBuffer_ZeroAllocation verifies push/pull do not allocate
func BenchmarkBuffer_ZeroAllocation(b *testing.B) {
	buf, _ := New[int](1024)
	for i := 0; i < 512; i++ {
		_ = buf.Push(i)
	}
	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_ = buf.Push(i)
		_, _ = buf.Pull()
	}
}
