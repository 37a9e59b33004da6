package director

import (
	"github.com/idamadam/promovideo/internal/effects"
	"github.com/idamadam/promovideo/internal/renderer"
	"github.com/idamadam/promovideo/internal/state"
)

// Reference timeline constants
const (
	ReferenceFPS    = 30
	ReferenceWidth  = 1920
	ReferenceHeight = 1080

	IntroFrames  = 90
	EditorFrames = 660
	OutroFrames  = 120

	// PresetSwitchFrame is the global frame where the preset flips to Latest
	PresetSwitchFrame = 320
)

var (
	snappy = renderer.SpringConfig{Mass: 1, Stiffness: 180, Damping: 18}
	bouncy = renderer.SpringConfig{Mass: 0.6, Stiffness: 120, Damping: 8}
)

func scale(v float64) *float64 { return &v }

// Reference builds the timeline of the site's promo video: an intro card,
// the editor walkthrough and an outro, cross-faded over 15 frames each.
func Reference() *Scenario {
	d := NewDirector(ReferenceFPS, ReferenceWidth, ReferenceHeight)

	// local frame of the preset switch inside the editor scene
	switchAt := PresetSwitchFrame - (IntroFrames - DefaultOverlap)

	drafts := []SceneDraft{
		{
			ID:       "intro",
			Duration: IntroFrames,
			Elements: []effects.ElementSpec{
				{ID: "logo", Motion: effects.MotionSpring, Spring: &snappy, ScaleFrom: scale(0.8),
					Box: effects.Box{X: 860, Y: 380, W: 200, H: 200}},
				{ID: "headline", Enter: 15, Fade: 15, Slide: effects.Offset{Y: 40}, Easing: "out-cubic",
					Box: effects.Box{X: 460, Y: 620, W: 1000, H: 90}},
				{ID: "tagline", Enter: 30, Fade: 15, Slide: effects.Offset{Y: 24},
					Box: effects.Box{X: 560, Y: 730, W: 800, H: 50}},
			},
		},
		{
			ID:       "editor",
			Duration: EditorFrames,
			Elements: []effects.ElementSpec{
				{ID: "window", Fade: 15, ScaleFrom: scale(0.96), Slide: effects.Offset{Y: 30},
					Box: effects.Box{X: 260, Y: 120, W: 1400, H: 840},
					Children: []effects.ElementSpec{
						{ID: "preset-picker", Enter: 20, Fade: 12, Slide: effects.Offset{X: -30},
							Box: effects.Box{X: 300, Y: 170, W: 320, H: 60}},
						{ID: "prompt", Enter: 40, Fade: 12,
							Box: effects.Box{X: 300, Y: 260, W: 1320, H: 120},
							Children: []effects.ElementSpec{
								{ID: "cursor", Enter: 15, Exit: 160,
									Tracks: []effects.Track{{
										Property: "opacity",
										Frames:   []float64{0, 8, 9, 16},
										Values:   []float64{1, 1, 0, 0},
									}},
									Box: effects.Box{X: 320, Y: 290, W: 4, H: 60}},
							}},
						{ID: "result-card", Enter: switchAt, Motion: effects.MotionSpring, Spring: &bouncy,
							ScaleFrom: scale(0.9), Slide: effects.Offset{Y: 60},
							Box: effects.Box{X: 300, Y: 420, W: 1320, H: 480}},
					}},
				{ID: "status-toast", Enter: switchAt - 120, Exit: switchAt + 90, Fade: 10, FadeOut: 10,
					Slide: effects.Offset{Y: -20}, SlideOut: effects.Offset{Y: -20},
					Box: effects.Box{X: 1460, Y: 40, W: 400, H: 60}},
			},
		},
		{
			ID:       "outro",
			Duration: OutroFrames,
			Elements: []effects.ElementSpec{
				{ID: "cta", Motion: effects.MotionSpring, Spring: &snappy, SpringDuration: ReferenceFPS, ScaleFrom: scale(0.9),
					Box: effects.Box{X: 560, Y: 420, W: 800, H: 120}},
				{ID: "url", Enter: 15, Fade: 15, Slide: effects.Offset{Y: 20}, FadeOut: 20,
					Box: effects.Box{X: 710, Y: 580, W: 500, H: 50}},
			},
		},
	}

	editorStart := IntroFrames - DefaultOverlap
	editorEnd := editorStart + EditorFrames

	machines := map[string]state.Table{
		"activePreset": {Rules: []state.Rule{
			{Start: 0, End: PresetSwitchFrame, State: "Previous"},
			{Start: PresetSwitchFrame, State: "Latest", Previous: "Previous"},
		}},
		"statusBanner": {Fade: 10, Rules: []state.Rule{
			{Start: 0, End: editorStart, State: "hidden"},
			{Start: editorStart, End: editorEnd, State: "editing", Refine: []state.Rule{
				{Start: editorStart, End: PresetSwitchFrame - 120, State: "drafting"},
				{Start: PresetSwitchFrame - 120, End: PresetSwitchFrame, State: "generating"},
				{Start: PresetSwitchFrame, State: "updated"},
			}},
			{Start: editorEnd, State: "hidden"},
		}},
	}

	scenario, err := d.GenerateScenario(drafts, machines)
	if err != nil {
		// the reference timeline is a literal; failing here is a programming error
		panic(err)
	}
	return scenario
}
