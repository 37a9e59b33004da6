// Package state derives discrete application state from the global frame.
//
// A Table maps contiguous frame ranges to named states. Tables may refine a
// coarse range into finer sub-ranges; Flatten turns the tree into a single
// exhaustive, non-overlapping list of leaves that Machine searches.
package state

import (
	"errors"
	"fmt"
	"sort"

	"go.uber.org/multierr"
)

// DefaultFade is the cross-fade length used when a table does not set one
const DefaultFade = 15

var (
	ErrEmptyTable    = errors.New("rule table is empty")
	ErrGap           = errors.New("rule table has a gap")
	ErrOverlap       = errors.New("rule table has overlapping rules")
	ErrBadRange      = errors.New("rule range is empty or inverted")
	ErrNotExhaustive = errors.New("rule table does not cover the timeline")
	ErrPrevious      = errors.New("previous state does not match the preceding rule")
	ErrMissingState  = errors.New("rule has no state")
)

// Rule maps [Start, End) to State. End may be left at 0 on the last rule of
// a list, meaning "until the end of the enclosing range".
//
// Previous, when set, must name the state just before Start: either the
// preceding leaf or, when that leaf comes from a refined rule, the top-level
// rule it belongs to. Resolve always reports the leaf.
type Rule struct {
	Start    int    `yaml:"start"`
	End      int    `yaml:"end,omitempty"`
	State    string `yaml:"state"`
	Previous string `yaml:"previous,omitempty"`
	Fade     int    `yaml:"fade,omitempty"`
	Refine   []Rule `yaml:"refine,omitempty"`
}

// Table is a named rule list as stored in scenario files
type Table struct {
	Fade  int    `yaml:"fade,omitempty"`
	Rules []Rule `yaml:"rules"`
}

// Leaf is one flattened rule
type Leaf struct {
	Start    int
	End      int
	State    string
	Previous string // state of the preceding leaf, empty for the first
	Group    string // state of the top-level rule this leaf came from
	Fade     int
}

// Resolution is the discrete state at one frame
type Resolution struct {
	State           string  `json:"state"`
	Previous        string  `json:"previous,omitempty"`
	TransitionStart int     `json:"transition_start"`
	Progress        float64 `json:"progress"`
	Group           string  `json:"group,omitempty"`
}

// Transitioning reports whether a cross-fade from Previous is running
func (r Resolution) Transitioning() bool {
	return r.Previous != ""
}

// Flatten validates rules against [0, total) and returns the leaves in frame
// order. Every problem found is reported.
func Flatten(rules []Rule, total int, fade int) ([]Leaf, error) {
	if len(rules) == 0 {
		return nil, ErrEmptyTable
	}
	if total <= 0 {
		return nil, fmt.Errorf("%w: timeline length %d", ErrNotExhaustive, total)
	}
	if fade <= 0 {
		fade = DefaultFade
	}

	var leaves []Leaf
	errs := flatten(rules, 0, total, "", fade, &leaves)

	for i := range leaves {
		if i == 0 {
			continue
		}
		leaves[i].Previous = leaves[i-1].State
	}
	errs = multierr.Append(errs, checkPrevious(rules, leaves))
	if errs != nil {
		return nil, errs
	}
	return leaves, nil
}

// flatten checks that rules partition [from, to) and appends the leaves
func flatten(rules []Rule, from, to int, group string, fade int, leaves *[]Leaf) error {
	var errs error
	cursor := from
	for i, r := range rules {
		end := r.End
		if end == 0 && i == len(rules)-1 {
			end = to
		}

		switch {
		case r.State == "":
			errs = multierr.Append(errs, fmt.Errorf("%w: [%d, %d)", ErrMissingState, r.Start, end))
		case end <= r.Start:
			errs = multierr.Append(errs, fmt.Errorf("%w: %q [%d, %d)", ErrBadRange, r.State, r.Start, end))
		}

		if r.Start > cursor {
			errs = multierr.Append(errs, fmt.Errorf("%w: frames [%d, %d) before %q", ErrGap, cursor, r.Start, r.State))
		} else if r.Start < cursor {
			errs = multierr.Append(errs, fmt.Errorf("%w: %q starts at %d, previous rule ends at %d", ErrOverlap, r.State, r.Start, cursor))
		}
		if end > cursor {
			cursor = end
		}

		g := group
		if g == "" {
			g = r.State
		}
		f := r.Fade
		if f <= 0 {
			f = fade
		}

		if len(r.Refine) > 0 {
			errs = multierr.Append(errs, flatten(r.Refine, r.Start, end, g, f, leaves))
			continue
		}
		*leaves = append(*leaves, Leaf{Start: r.Start, End: end, State: r.State, Group: g, Fade: f})
	}

	if cursor < to {
		errs = multierr.Append(errs, fmt.Errorf("%w: frames [%d, %d) have no rule", ErrNotExhaustive, cursor, to))
	} else if cursor > to {
		errs = multierr.Append(errs, fmt.Errorf("%w: rules run to %d, range ends at %d", ErrOverlap, cursor, to))
	}
	return errs
}

// checkPrevious compares every explicit Previous with the flattened order
func checkPrevious(rules []Rule, leaves []Leaf) error {
	var errs error
	var visit func([]Rule)
	visit = func(list []Rule) {
		for _, r := range list {
			if r.Previous != "" {
				i := sort.Search(len(leaves), func(i int) bool { return leaves[i].End > r.Start })
				if i < len(leaves) && !precededBy(leaves, i, r.Previous) {
					errs = multierr.Append(errs, fmt.Errorf("%w: %q declares %q, preceding state is %q",
						ErrPrevious, r.State, r.Previous, leaves[i].Previous))
				}
			}
			visit(r.Refine)
		}
	}
	visit(rules)
	return errs
}

func precededBy(leaves []Leaf, i int, state string) bool {
	if i == 0 {
		return state == ""
	}
	prev := leaves[i-1]
	return state == prev.State || state == prev.Group
}

// Machine resolves frames against a flattened table
type Machine struct {
	name   string
	total  int
	leaves []Leaf
}

// NewMachine flattens and validates t over a timeline of total frames
func NewMachine(name string, total int, t Table) (*Machine, error) {
	leaves, err := Flatten(t.Rules, total, t.Fade)
	if err != nil {
		return nil, fmt.Errorf("state machine %q: %w", name, err)
	}
	return &Machine{name: name, total: total, leaves: leaves}, nil
}

// Name returns the machine's name
func (m *Machine) Name() string { return m.name }

// Leaves returns a copy of the flattened table
func (m *Machine) Leaves() []Leaf {
	return append([]Leaf(nil), m.leaves...)
}

// Resolve returns the state at frame. Frames before 0 resolve like frame 0
// and frames past the end like the last frame.
func (m *Machine) Resolve(frame int) Resolution {
	frame = max(0, min(frame, m.total-1))
	i := m.index(frame)
	l := m.leaves[i]

	res := Resolution{State: l.State, Group: l.Group, TransitionStart: l.Start, Progress: 1}
	if i == 0 {
		return res
	}
	if elapsed := frame - l.Start; elapsed < l.Fade {
		res.Previous = l.Previous
		res.Progress = float64(elapsed) / float64(l.Fade)
	}
	return res
}

// index finds the leaf owning frame
func (m *Machine) index(frame int) int {
	return sort.Search(len(m.leaves), func(i int) bool { return m.leaves[i].End > frame })
}
