package director

import (
	"errors"
	"fmt"

	"github.com/idamadam/promovideo/internal/clock"
	"github.com/idamadam/promovideo/internal/effects"
	"github.com/idamadam/promovideo/internal/state"
)

// DefaultOverlap is the cross-fade length between adjacent scenes
const DefaultOverlap = 15

var ErrLayout = errors.New("invalid scene layout")

// Director lays scenes out end to end with a fixed cross-fade between them
type Director struct {
	FPS     int
	Width   int
	Height  int
	Overlap int // frames shared by adjacent scenes
}

// NewDirector creates a new Director with default settings
func NewDirector(fps, width, height int) *Director {
	return &Director{
		FPS:     fps,
		Width:   width,
		Height:  height,
		Overlap: DefaultOverlap,
	}
}

// SceneDraft is a scene before it has been placed on the timeline
type SceneDraft struct {
	ID       string
	Duration int
	Elements []effects.ElementSpec
}

// GenerateScenario places drafts on the timeline and adds a transition
// window for every pair of neighbours.
func (d *Director) GenerateScenario(drafts []SceneDraft, machines map[string]state.Table) (*Scenario, error) {
	durations := make([]int, len(drafts))
	for i, dr := range drafts {
		durations[i] = dr.Duration
	}

	starts, windows, _, err := LayoutSeries(durations, d.Overlap)
	if err != nil {
		return nil, err
	}

	scenario := &Scenario{
		Version:  "1.0",
		FPS:      d.FPS,
		Width:    d.Width,
		Height:   d.Height,
		Machines: machines,
	}
	for i, dr := range drafts {
		scenario.Scenes = append(scenario.Scenes, Scene{
			ID:       dr.ID,
			Start:    starts[i],
			Duration: dr.Duration,
			Elements: dr.Elements,
		})
	}
	for i, w := range windows {
		scenario.Transitions = append(scenario.Transitions, TransitionWindow{
			From:  drafts[i].ID,
			To:    drafts[i+1].ID,
			Start: w.Start,
			End:   w.End(),
		})
	}

	if err := scenario.Validate(); err != nil {
		return nil, err
	}
	return scenario, nil
}

// LayoutSeries computes scene starts for back-to-back scenes that share
// overlap frames with each neighbour. The total is sum(durations) minus
// (n-1)*overlap.
func LayoutSeries(durations []int, overlap int) (starts []int, windows []clock.Span, total int, err error) {
	if len(durations) == 0 {
		return nil, nil, 0, fmt.Errorf("%w: no scenes", ErrLayout)
	}
	if overlap < 0 {
		return nil, nil, 0, fmt.Errorf("%w: negative overlap %d", ErrLayout, overlap)
	}
	for i, d := range durations {
		if d <= 0 {
			return nil, nil, 0, fmt.Errorf("%w: scene %d has duration %d", ErrLayout, i, d)
		}
		if i > 0 && overlap >= min(d, durations[i-1]) {
			return nil, nil, 0, fmt.Errorf("%w: overlap %d must be shorter than scenes %d (%d) and %d (%d)",
				ErrLayout, overlap, i-1, durations[i-1], i, d)
		}
	}

	starts = make([]int, len(durations))
	cursor := 0
	for i, d := range durations {
		starts[i] = cursor
		if i > 0 && overlap > 0 {
			windows = append(windows, clock.Span{Start: cursor, Duration: overlap})
		}
		cursor += d - overlap
	}
	total = cursor + overlap
	return starts, windows, total, nil
}
