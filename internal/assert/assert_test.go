package assert

import (
	"errors"
	"testing"
)

func quiet(t *testing.T) {
	t.Helper()
	oldStrictMode := StrictMode
	oldSuppressLogs := SuppressLogs
	StrictMode = false
	SuppressLogs = true
	t.Cleanup(func() {
		StrictMode = oldStrictMode
		SuppressLogs = oldSuppressLogs
	})
}

func TestCheck(t *testing.T) {
	quiet(t)

	if err := Check(true, "never"); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	err := Check(false, "value %d too big", 7)
	if !errors.Is(err, ErrViolation) {
		t.Fatalf("expected ErrViolation, got %v", err)
	}
	if err.Error() != "assertion failed: value 7 too big" {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestCheck_StrictModePanics(t *testing.T) {
	quiet(t)
	StrictMode = true

	defer func() {
		if recover() == nil {
			t.Error("expected panic in strict mode")
		}
	}()
	_ = Check(false, "boom")
}

func TestNotNil(t *testing.T) {
	quiet(t)

	var nilPtr *int
	var nilMap map[string]int
	value := 3

	tests := []struct {
		name    string
		v       interface{}
		wantErr bool
	}{
		{"untyped nil", nil, true},
		{"typed nil pointer", nilPtr, true},
		{"nil map", nilMap, true},
		{"pointer", &value, false},
		{"plain value", 0, false},
		{"empty string", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NotNil(tt.v, "thing")
			if (err != nil) != tt.wantErr {
				t.Errorf("NotNil(%v) err = %v, wantErr %v", tt.v, err, tt.wantErr)
			}
		})
	}
}

func TestInRange(t *testing.T) {
	quiet(t)

	if err := InRange(0, 0, 4, "idx"); err != nil {
		t.Errorf("lower bound should pass: %v", err)
	}
	if err := InRange(4, 0, 4, "idx"); err != nil {
		t.Errorf("upper bound should pass: %v", err)
	}
	if err := InRange(5, 0, 4, "idx"); err == nil {
		t.Error("expected error above range")
	}
	if err := InRange(-1, 0, 4, "idx"); err == nil {
		t.Error("expected error below range")
	}
}

func TestInvariant(t *testing.T) {
	quiet(t)

	Invariant(true, "fine")

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic")
		}
		if r != "invariant violated: slot 3 vacant" {
			t.Errorf("unexpected panic value: %v", r)
		}
	}()
	Invariant(false, "slot %d vacant", 3)
}
