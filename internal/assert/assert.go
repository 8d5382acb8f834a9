package assert

import (
	"errors"
	"fmt"
	"log"
	"os"
	"reflect"
)

// ErrViolation is wrapped by every error returned from a failed check.
var ErrViolation = errors.New("assertion failed")

var (
	// StrictMode turns failed checks into panics. Enabled with GYRE_STRICT=1.
	StrictMode = os.Getenv("GYRE_STRICT") == "1"
	// SuppressLogs silences the [ASSERT] log line (tests flip it).
	SuppressLogs = false
)

// Check returns an error wrapping ErrViolation when cond is false.
// msg is a printf format for args. In StrictMode the failure panics instead.
func Check(cond bool, msg string, args ...interface{}) error {
	if cond {
		return nil
	}
	text := msg
	if len(args) > 0 {
		text = fmt.Sprintf(msg, args...)
	}
	if !SuppressLogs {
		log.Printf("[ASSERT] %s", text)
	}
	if StrictMode {
		panic(fmt.Sprintf("%s: %s", ErrViolation, text))
	}
	return fmt.Errorf("%w: %s", ErrViolation, text)
}

// NotNil checks that v is neither nil nor a typed nil pointer, map, slice, chan or func.
func NotNil(v interface{}, name string) error {
	return Check(!isNil(v), "%s must not be nil", name)
}

// InRange checks lo <= v <= hi.
func InRange(v, lo, hi int, name string) error {
	return Check(v >= lo && v <= hi, "%s out of range: %d not in [%d, %d]", name, v, lo, hi)
}

// Invariant panics when cond is false, regardless of StrictMode.
// Reserved for broken internal state where continuing would return corrupt data.
func Invariant(cond bool, msg string, args ...interface{}) {
	if cond {
		return
	}
	text := msg
	if len(args) > 0 {
		text = fmt.Sprintf(msg, args...)
	}
	if !SuppressLogs {
		log.Printf("[INVARIANT] %s", text)
	}
	panic(fmt.Sprintf("invariant violated: %s", text))
}

func isNil(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
