package effects

import "github.com/idamadam/promovideo/internal/renderer"

// ElementSpec describes how one element of a scene enters, holds and leaves.
// Frames are local to the owner: the scene for top-level elements, the parent
// element for children.
type ElementSpec struct {
	ID    string `yaml:"id"`
	Enter int    `yaml:"enter"`
	// Exit is the first frame the element is gone; 0 keeps it until the end
	// of its owner
	Exit int `yaml:"exit,omitempty"`

	Fade    int    `yaml:"fade,omitempty"`     // entrance ramp length
	FadeOut int    `yaml:"fade_out,omitempty"` // exit ramp length
	Motion  string `yaml:"motion,omitempty"`   // linear | spring
	Easing  string `yaml:"easing,omitempty"`

	Spring *renderer.SpringConfig `yaml:"spring,omitempty"`
	// SpringDelay holds a spring back for that many frames after Enter;
	// SpringDuration stretches it to settle that many frames after the delay
	SpringDelay    int `yaml:"spring_delay,omitempty"`
	SpringDuration int `yaml:"spring_duration,omitempty"`

	Slide     Offset   `yaml:"slide,omitempty"`
	SlideOut  Offset   `yaml:"slide_out,omitempty"`
	ScaleFrom *float64 `yaml:"scale_from,omitempty"`

	Box      Box           `yaml:"box,omitempty"`
	Tracks   []Track       `yaml:"tracks,omitempty"`
	Children []ElementSpec `yaml:"children,omitempty"`
}

// Offset is a translation in pixels
type Offset struct {
	X float64 `yaml:"x,omitempty"`
	Y float64 `yaml:"y,omitempty"`
}

// Box is the element's resting layout rectangle, used by previews
type Box struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	W int `yaml:"w"`
	H int `yaml:"h"`
}

// Track is an extra keyframed curve on one property. Frames are relative to
// the element's enter frame. Opacity and scale tracks multiply, x and y
// tracks add.
type Track struct {
	Property string    `yaml:"property"` // opacity | x | y | scale
	Frames   []float64 `yaml:"frames"`
	Values   []float64 `yaml:"values"`
	Easing   string    `yaml:"easing,omitempty"`
	Left     string    `yaml:"left,omitempty"`
	Right    string    `yaml:"right,omitempty"`
}

// Properties are the visual values of one element at one frame
type Properties struct {
	Opacity    float64 `json:"opacity"`
	TranslateX float64 `json:"translate_x"`
	TranslateY float64 `json:"translate_y"`
	Scale      float64 `json:"scale"`
	// Local is the element's own frame counter, counted from its enter frame
	Local int `json:"local"`
}

// identity is what a parent contributes when there is none
var identity = Properties{Opacity: 1, Scale: 1}

// Walk visits every spec depth first, children after their parent
func Walk(specs []ElementSpec, fn func(spec ElementSpec, depth int)) {
	var visit func([]ElementSpec, int)
	visit = func(list []ElementSpec, depth int) {
		for _, s := range list {
			fn(s, depth)
			visit(s.Children, depth+1)
		}
	}
	visit(specs, 0)
}
