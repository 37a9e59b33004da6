// Package demo drives the interactive variant of the timeline from a script
// of timed actions. Playback runs on a wall clock and is not deterministic;
// Script.Rules turns the same script into a state table that is.
package demo

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/idamadam/promovideo/internal/state"
)

// Idle is the state before the first action fires
const Idle = "idle"

var ErrScript = errors.New("invalid demo script")

// Step fires Action after waiting Delay since the previous step
type Step struct {
	Delay  time.Duration `yaml:"delay"`
	Action string        `yaml:"action"`
}

// Script is an ordered list of steps
type Script struct {
	Name  string        `yaml:"name"`
	Steps []Step        `yaml:"steps"`
	Hold  time.Duration `yaml:"hold,omitempty"` // how long the last action lasts; 1s when unset
	Loop  bool          `yaml:"loop,omitempty"`
}

// DefaultScript replays the editor walkthrough of the promo video
func DefaultScript() Script {
	return Script{
		Name: "editor",
		Steps: []Step{
			{Delay: 500 * time.Millisecond, Action: "drafting"},
			{Delay: 4 * time.Second, Action: "generating"},
			{Delay: 4 * time.Second, Action: "updated"},
		},
		Hold: 3 * time.Second,
	}
}

func (s Script) Validate() error {
	var errs error
	if len(s.Steps) == 0 {
		return fmt.Errorf("%w: no steps", ErrScript)
	}
	var total time.Duration
	for i, st := range s.Steps {
		if st.Action == "" {
			errs = multierr.Append(errs, fmt.Errorf("%w: step %d has no action", ErrScript, i))
		}
		if st.Delay < 0 {
			errs = multierr.Append(errs, fmt.Errorf("%w: step %d has negative delay %s", ErrScript, i, st.Delay))
		}
		total += st.Delay
	}
	if s.Loop && total <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("%w: a looping script needs a positive delay", ErrScript))
	}
	if s.Hold < 0 {
		errs = multierr.Append(errs, fmt.Errorf("%w: negative hold %s", ErrScript, s.Hold))
	}
	return errs
}

func frames(d time.Duration, fps int) int {
	return int(math.Round(d.Seconds() * float64(fps)))
}

// Rules converts one pass of the script into a threshold table at fps and
// returns it with the timeline length it covers. Steps that land on the
// same frame are rejected, since a state must own at least one frame.
func (s Script) Rules(fps int) ([]state.Rule, int, error) {
	if err := s.Validate(); err != nil {
		return nil, 0, err
	}
	if fps <= 0 {
		return nil, 0, fmt.Errorf("%w: fps %d", ErrScript, fps)
	}

	var (
		rules []state.Rule
		errs  error
		at    time.Duration
	)
	cur := state.Rule{Start: 0, State: Idle}
	for i, st := range s.Steps {
		at += st.Delay
		start := frames(at, fps)
		if start == cur.Start {
			if i > 0 {
				errs = multierr.Append(errs, fmt.Errorf("%w: step %d (%s) lands on frame %d with %q",
					ErrScript, i, st.Action, start, cur.State))
			}
			cur.State = st.Action
			continue
		}
		cur.End = start
		rules = append(rules, cur)
		cur = state.Rule{Start: start, State: st.Action}
	}
	rules = append(rules, cur)

	hold := s.Hold
	if hold == 0 {
		hold = time.Second
	}
	total := cur.Start + max(frames(hold, fps), 1)

	if errs != nil {
		return nil, 0, errs
	}
	return rules, total, nil
}

// Machine builds a state machine from Rules
func (s Script) Machine(fps int) (*state.Machine, error) {
	rules, total, err := s.Rules(fps)
	if err != nil {
		return nil, err
	}
	name := s.Name
	if name == "" {
		name = "demo"
	}
	return state.NewMachine(name, total, state.Table{Rules: rules})
}

// LoadScript reads a YAML script. Delays use Go duration syntax ("1.5s").
func LoadScript(path string) (Script, error) {
	var s Script
	data, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parse %s: %w", path, err)
	}
	return s, s.Validate()
}
