package director

import (
	"github.com/idamadam/promovideo/internal/clock"
	"github.com/idamadam/promovideo/internal/effects"
	"github.com/idamadam/promovideo/internal/state"
)

// Scenario is the complete static configuration of a promo video
type Scenario struct {
	Version     string                 `yaml:"version"`
	FPS         int                    `yaml:"fps"`
	Width       int                    `yaml:"width"`
	Height      int                    `yaml:"height"`
	Scenes      []Scene                `yaml:"scenes"`
	Transitions []TransitionWindow     `yaml:"transitions,omitempty"`
	Machines    map[string]state.Table `yaml:"machines,omitempty"`
}

// Scene is a bounded sub-timeline of the video
type Scene struct {
	ID       string                `yaml:"id"`
	Start    int                   `yaml:"start"`
	Duration int                   `yaml:"duration"` // frames
	Elements []effects.ElementSpec `yaml:"elements,omitempty"`
}

// TransitionWindow is the cross-fade between two adjacent scenes, owning
// frames [Start, End)
type TransitionWindow struct {
	From  string `yaml:"from"`
	To    string `yaml:"to"`
	Start int    `yaml:"start"`
	End   int    `yaml:"end"`
}

// Span returns the frames the scene is active on
func (s Scene) Span() clock.Span {
	return clock.Span{Start: s.Start, Duration: s.Duration}
}

// End returns the first frame after the scene
func (s Scene) End() int {
	return s.Start + s.Duration
}

// LocalFrame converts a global frame into the scene's frame; ok is false
// outside [Start, Start+Duration).
func (s Scene) LocalFrame(global int) (int, bool) {
	return s.Span().Local(global)
}

// Contains reports whether frame is inside the window
func (w TransitionWindow) Contains(frame int) bool {
	return frame >= w.Start && frame < w.End
}

// TotalFrames is the end of the last scene
func (sc *Scenario) TotalFrames() int {
	total := 0
	for _, s := range sc.Scenes {
		total = max(total, s.End())
	}
	return total
}

// Scene looks a scene up by id
func (sc *Scenario) Scene(id string) (Scene, bool) {
	for _, s := range sc.Scenes {
		if s.ID == id {
			return s, true
		}
	}
	return Scene{}, false
}
