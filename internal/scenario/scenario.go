// Package scenario replays scripted push/pull sequences against a buffer and
// checks each outcome.
package scenario

import (
	"errors"
	"fmt"
	"os"

	"github.com/slyt3/Gyre/internal/assert"
	"github.com/slyt3/Gyre/internal/logging"
	"github.com/slyt3/Gyre/internal/ring"
	"gopkg.in/yaml.v3"
)

// Step ops.
const (
	OpPush  = "push"
	OpPull  = "pull"
	OpState = "state"
)

// Expectations. A pull step expects either the pulled value or ExpectEmpty.
const (
	ExpectOK      = "ok"
	ExpectFull    = "full"
	ExpectEmpty   = "empty"
	ExpectPartial = "partial"
)

const maxSteps = 1 << 16

// Target is the buffer surface a scenario drives. *ring.Buffer[string] and
// *core.Engine both satisfy it.
type Target interface {
	Push(value string) error
	Pull() (string, bool)
	IsEmpty() bool
	IsFull() bool
}

// Step is one scripted operation.
type Step struct {
	Op     string `yaml:"op"`
	Value  string `yaml:"value,omitempty"`
	Expect string `yaml:"expect"`
}

// Scenario is the YAML document loaded by Load.
type Scenario struct {
	Name     string `yaml:"name"`
	Capacity int    `yaml:"capacity"`
	Steps    []Step `yaml:"steps"`
}

// StepResult records what one step observed.
type StepResult struct {
	Index  int    `json:"index"`
	Op     string `json:"op"`
	Value  string `json:"value,omitempty"`
	Expect string `json:"expect"`
	Got    string `json:"got"`
	Passed bool   `json:"passed"`
}

// Report summarizes a scenario run.
type Report struct {
	Name     string       `json:"name"`
	Steps    []StepResult `json:"steps"`
	Failures int          `json:"failures"`
}

// Passed reports whether every step matched its expectation.
func (r *Report) Passed() bool {
	return r.Failures == 0
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parsing scenario YAML: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate checks capacity and that every step names a known op with an
// expectation that op can produce.
func (sc *Scenario) Validate() error {
	if sc.Capacity <= 0 {
		return fmt.Errorf("%w: %d", ring.ErrInvalidCapacity, sc.Capacity)
	}
	if len(sc.Steps) > maxSteps {
		return fmt.Errorf("scenario has %d steps, max %d", len(sc.Steps), maxSteps)
	}
	for i, st := range sc.Steps {
		switch st.Op {
		case OpPush:
			if st.Expect != ExpectOK && st.Expect != ExpectFull {
				return fmt.Errorf("step %d: push expects %q or %q, got %q", i, ExpectOK, ExpectFull, st.Expect)
			}
		case OpPull:
			if st.Expect == "" {
				return fmt.Errorf("step %d: pull needs an expected value or %q", i, ExpectEmpty)
			}
		case OpState:
			if st.Expect != ExpectEmpty && st.Expect != ExpectFull && st.Expect != ExpectPartial {
				return fmt.Errorf("step %d: unknown state %q", i, st.Expect)
			}
		default:
			return fmt.Errorf("step %d: unknown op %q", i, st.Op)
		}
	}
	return nil
}

// Run executes every step against target, continuing past failures so the
// report shows the whole run.
func Run(target Target, sc *Scenario) (*Report, error) {
	if err := assert.NotNil(target, "target"); err != nil {
		return nil, err
	}
	if err := assert.NotNil(sc, "scenario"); err != nil {
		return nil, err
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	report := &Report{Name: sc.Name, Steps: make([]StepResult, 0, len(sc.Steps))}
	for i, st := range sc.Steps {
		res := StepResult{Index: i, Op: st.Op, Value: st.Value, Expect: st.Expect}
		got, err := execute(target, st)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		res.Got = got
		res.Passed = got == st.Expect
		if !res.Passed {
			report.Failures++
			logging.Warn("scenario_step_failed", logging.Fields{
				Component: "scenario",
				Op:        st.Op,
				Value:     st.Value,
				Outcome:   got,
				Error:     fmt.Sprintf("step %d expected %q", i, st.Expect),
			})
		}
		report.Steps = append(report.Steps, res)
	}
	logging.Info("scenario_finished", logging.Fields{Component: "scenario", Value: sc.Name, Outcome: outcomeOf(report)})
	return report, nil
}

func execute(target Target, st Step) (string, error) {
	switch st.Op {
	case OpPush:
		err := target.Push(st.Value)
		if err == nil {
			return ExpectOK, nil
		}
		if errors.Is(err, ring.ErrFull) {
			return ExpectFull, nil
		}
		return "", err
	case OpPull:
		v, ok := target.Pull()
		if !ok {
			return ExpectEmpty, nil
		}
		return v, nil
	case OpState:
		switch {
		case target.IsEmpty():
			return ExpectEmpty, nil
		case target.IsFull():
			return ExpectFull, nil
		}
		return ExpectPartial, nil
	}
	return "", fmt.Errorf("unknown op %q", st.Op)
}

func outcomeOf(r *Report) string {
	if r.Passed() {
		return "passed"
	}
	return "failed"
}
