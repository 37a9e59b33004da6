package director

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"sort"

	"go.uber.org/multierr"

	"github.com/idamadam/promovideo/internal/effects"
	"github.com/idamadam/promovideo/internal/state"
)

var (
	ErrNoScenes         = errors.New("scenario has no scenes")
	ErrBadFPS           = errors.New("fps must be positive")
	ErrBadScene         = errors.New("invalid scene")
	ErrBadWindow        = errors.New("invalid transition window")
	ErrSceneOverlap     = errors.New("scenes overlap outside a transition window")
	ErrSceneGap         = errors.New("frames are covered by no scene")
	ErrWindowOverlap    = errors.New("transition windows overlap")
	ErrDuplicateElement = errors.New("element id used in more than one scene")
)

// Plan is a validated scenario with everything evaluation needs compiled
type Plan struct {
	Scenario   *Scenario
	Total      int
	Evaluators map[string]*effects.Evaluator // by scene id
	Machines   []*state.Machine              // sorted by name
}

// Validate checks the whole scenario and reports every problem at once
func (sc *Scenario) Validate() error {
	_, err := sc.Compile()
	return err
}

// Compile validates the scenario and compiles its element specs and state
// tables. Nothing here is deferred to render time.
func (sc *Scenario) Compile() (*Plan, error) {
	if sc.FPS <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrBadFPS, sc.FPS)
	}
	if len(sc.Scenes) == 0 {
		return nil, ErrNoScenes
	}

	plan := &Plan{
		Scenario:   sc,
		Total:      sc.TotalFrames(),
		Evaluators: make(map[string]*effects.Evaluator, len(sc.Scenes)),
	}

	errs := sc.checkScenes()
	errs = multierr.Append(errs, sc.checkWindows())
	errs = multierr.Append(errs, sc.checkCoverage())

	owner := make(map[string]string)
	for _, s := range sc.Scenes {
		effects.Walk(s.Elements, func(spec effects.ElementSpec, _ int) {
			if prev, ok := owner[spec.ID]; ok && prev != s.ID && spec.ID != "" {
				errs = multierr.Append(errs, fmt.Errorf("%w: %q in %q and %q", ErrDuplicateElement, spec.ID, prev, s.ID))
			}
			owner[spec.ID] = s.ID
		})
		if s.Duration <= 0 {
			continue
		}
		ev, err := effects.Compile(s.Elements, effects.Context{FPS: sc.FPS, Duration: s.Duration})
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("scene %q: %w", s.ID, err))
			continue
		}
		plan.Evaluators[s.ID] = ev
	}

	names := make([]string, 0, len(sc.Machines))
	for name := range sc.Machines {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		m, err := state.NewMachine(name, plan.Total, sc.Machines[name])
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		plan.Machines = append(plan.Machines, m)
	}

	if errs != nil {
		return nil, errs
	}
	return plan, nil
}

func (sc *Scenario) checkScenes() error {
	var errs error
	seen := make(map[string]bool)
	for i, s := range sc.Scenes {
		switch {
		case s.ID == "":
			errs = multierr.Append(errs, fmt.Errorf("%w: scene %d has no id", ErrBadScene, i))
		case seen[s.ID]:
			errs = multierr.Append(errs, fmt.Errorf("%w: duplicate id %q", ErrBadScene, s.ID))
		}
		seen[s.ID] = true
		if s.Start < 0 {
			errs = multierr.Append(errs, fmt.Errorf("%w: %q starts at %d", ErrBadScene, s.ID, s.Start))
		}
		if s.Duration <= 0 {
			errs = multierr.Append(errs, fmt.Errorf("%w: %q has duration %d", ErrBadScene, s.ID, s.Duration))
		}
	}
	return errs
}

func (sc *Scenario) checkWindows() error {
	var errs error
	for _, w := range sc.Transitions {
		from, okFrom := sc.Scene(w.From)
		to, okTo := sc.Scene(w.To)
		switch {
		case !okFrom || !okTo:
			errs = multierr.Append(errs, fmt.Errorf("%w: %s -> %s references an unknown scene", ErrBadWindow, w.From, w.To))
			continue
		case w.From == w.To:
			errs = multierr.Append(errs, fmt.Errorf("%w: %s fades into itself", ErrBadWindow, w.From))
			continue
		case w.End <= w.Start:
			errs = multierr.Append(errs, fmt.Errorf("%w: %s -> %s [%d, %d) is empty", ErrBadWindow, w.From, w.To, w.Start, w.End))
			continue
		}
		for _, s := range []Scene{from, to} {
			if w.Start < s.Start || w.End > s.End() {
				errs = multierr.Append(errs, fmt.Errorf("%w: %s -> %s [%d, %d) is outside scene %q [%d, %d)",
					ErrBadWindow, w.From, w.To, w.Start, w.End, s.ID, s.Start, s.End()))
			}
		}
		if to.Start < from.Start {
			errs = multierr.Append(errs, fmt.Errorf("%w: %s starts before %s", ErrBadWindow, w.To, w.From))
		}
	}

	for i := 0; i < len(sc.Transitions); i++ {
		for j := i + 1; j < len(sc.Transitions); j++ {
			a, b := sc.Transitions[i], sc.Transitions[j]
			if a.Start < b.End && b.Start < a.End {
				errs = multierr.Append(errs, fmt.Errorf("%w: %s -> %s and %s -> %s", ErrWindowOverlap, a.From, a.To, b.From, b.To))
			}
		}
	}

	for i := 0; i < len(sc.Scenes); i++ {
		for j := i + 1; j < len(sc.Scenes); j++ {
			a, b := sc.Scenes[i], sc.Scenes[j]
			o, ok := a.Span().Overlap(b.Span())
			if !ok {
				continue
			}
			w, found := sc.windowBetween(a.ID, b.ID)
			switch {
			case !found:
				errs = multierr.Append(errs, fmt.Errorf("%w: %q and %q share [%d, %d)", ErrSceneOverlap, a.ID, b.ID, o.Start, o.End()))
			case w.Start != o.Start || w.End != o.End():
				errs = multierr.Append(errs, fmt.Errorf("%w: %q and %q share [%d, %d) but the window is [%d, %d)",
					ErrSceneOverlap, a.ID, b.ID, o.Start, o.End(), w.Start, w.End))
			case o.Duration >= min(a.Duration, b.Duration):
				errs = multierr.Append(errs, fmt.Errorf("%w: overlap of %q and %q must be shorter than both scenes",
					ErrSceneOverlap, a.ID, b.ID))
			}
		}
	}
	return errs
}

// checkCoverage requires the scenes to cover [0, total) with no gap
func (sc *Scenario) checkCoverage() error {
	scenes := slices.Clone(sc.Scenes)
	slices.SortStableFunc(scenes, func(a, b Scene) int { return cmp.Compare(a.Start, b.Start) })

	var errs error
	covered := 0
	for _, s := range scenes {
		if s.Duration <= 0 {
			continue
		}
		if s.Start > covered {
			errs = multierr.Append(errs, fmt.Errorf("%w: [%d, %d) before %q", ErrSceneGap, covered, s.Start, s.ID))
		}
		covered = max(covered, s.End())
	}
	return errs
}

func (sc *Scenario) windowBetween(a, b string) (TransitionWindow, bool) {
	for _, w := range sc.Transitions {
		if (w.From == a && w.To == b) || (w.From == b && w.To == a) {
			return w, true
		}
	}
	return TransitionWindow{}, false
}
