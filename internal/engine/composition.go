package engine

import (
	"errors"
	"fmt"

	"github.com/idamadam/promovideo/internal/director"
	"github.com/idamadam/promovideo/internal/effects"
	"github.com/idamadam/promovideo/internal/state"
)

var ErrFrameOutOfRange = errors.New("frame out of range")

// ElementState is an element's properties after the scene blend
type ElementState struct {
	effects.Properties
	Scene string `json:"scene"`
}

// RenderState is everything the renderer needs to draw one frame
type RenderState struct {
	Frame    int                         `json:"frame"`
	Layers   []Layer                     `json:"layers"`
	Elements map[string]ElementState     `json:"elements"`
	States   map[string]state.Resolution `json:"states,omitempty"`
}

// Composition evaluates a validated scenario frame by frame. It holds no
// mutable state and is safe for concurrent use.
type Composition struct {
	fps     int
	total   int
	scenes  []director.Scene
	windows []director.TransitionWindow
	plan    *director.Plan
}

// NewComposition validates sc and compiles it. Every configuration problem
// is reported here, never during evaluation.
func NewComposition(sc *director.Scenario) (*Composition, error) {
	plan, err := sc.Compile()
	if err != nil {
		return nil, fmt.Errorf("compile scenario: %w", err)
	}

	c := &Composition{
		fps:     sc.FPS,
		total:   plan.Total,
		scenes:  make([]director.Scene, len(sc.Scenes)),
		windows: append([]director.TransitionWindow(nil), sc.Transitions...),
		plan:    plan,
	}
	// element specs live in the compiled evaluators; only timing is kept
	for i, s := range sc.Scenes {
		c.scenes[i] = director.Scene{ID: s.ID, Start: s.Start, Duration: s.Duration}
	}
	return c, nil
}

func (c *Composition) FPS() int         { return c.fps }
func (c *Composition) TotalFrames() int { return c.total }

// Scenes returns the scene timing, without element specs
func (c *Composition) Scenes() []director.Scene {
	return append([]director.Scene(nil), c.scenes...)
}

// MachineNames lists the state machines in evaluation order
func (c *Composition) MachineNames() []string {
	names := make([]string, len(c.plan.Machines))
	for i, m := range c.plan.Machines {
		names[i] = m.Name()
	}
	return names
}

// Evaluate computes the RenderState of frame
func (c *Composition) Evaluate(frame int) (RenderState, error) {
	if frame < 0 || frame >= c.total {
		return RenderState{}, fmt.Errorf("%w: %d not in [0, %d)", ErrFrameOutOfRange, frame, c.total)
	}

	rs := RenderState{
		Frame:    frame,
		Layers:   ActiveScenes(frame, c.scenes, c.windows),
		Elements: make(map[string]ElementState),
	}
	for _, l := range rs.Layers {
		for id, p := range c.plan.Evaluators[l.SceneID].Evaluate(l.LocalFrame) {
			p.Opacity *= l.Blend
			rs.Elements[id] = ElementState{Properties: p, Scene: l.SceneID}
		}
	}

	if len(c.plan.Machines) > 0 {
		rs.States = make(map[string]state.Resolution, len(c.plan.Machines))
		for _, m := range c.plan.Machines {
			rs.States[m.Name()] = m.Resolve(frame)
		}
	}
	return rs, nil
}

// Visible reports whether id is present at the frame
func (rs RenderState) Visible(id string) bool {
	_, ok := rs.Elements[id]
	return ok
}
