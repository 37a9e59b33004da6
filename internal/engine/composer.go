package engine

import (
	"cmp"
	"slices"

	"github.com/idamadam/promovideo/internal/director"
	"github.com/idamadam/promovideo/internal/renderer"
)

// Layer is one scene active at a frame
type Layer struct {
	SceneID    string  `json:"scene"`
	LocalFrame int     `json:"local"`
	Blend      float64 `json:"blend"`
}

var (
	fadeOut = []float64{1, 0}
	fadeIn  = []float64{0, 1}
)

// ActiveScenes returns the scenes visible at frame with their cross-fade
// opacity. Scenes own [Start, Start+Duration) and windows own [Start, End),
// so a frame at a window's end belongs to the incoming scene alone. Layers
// come back in scene start order, outgoing scene first.
func ActiveScenes(frame int, scenes []director.Scene, windows []director.TransitionWindow) []Layer {
	ordered := slices.Clone(scenes)
	slices.SortStableFunc(ordered, func(a, b director.Scene) int {
		return cmp.Compare(a.Start, b.Start)
	})

	var layers []Layer
	for _, s := range ordered {
		local, ok := s.LocalFrame(frame)
		if !ok {
			continue
		}
		layers = append(layers, Layer{
			SceneID:    s.ID,
			LocalFrame: local,
			Blend:      blend(frame, s.ID, windows),
		})
	}
	return layers
}

// blend multiplies every window ramp that applies to the scene at frame.
// Outgoing and incoming ramps are evaluated separately, never as 1-x.
func blend(frame int, sceneID string, windows []director.TransitionWindow) float64 {
	b := 1.0
	f := float64(frame)
	for _, w := range windows {
		if !w.Contains(frame) {
			continue
		}
		span := []float64{float64(w.Start), float64(w.End)}
		switch sceneID {
		case w.From:
			b *= renderer.Interpolate(f, span, fadeOut, renderer.ClampBoth)
		case w.To:
			b *= renderer.Interpolate(f, span, fadeIn, renderer.ClampBoth)
		}
	}
	return b
}
