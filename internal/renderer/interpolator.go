package renderer

import (
	"errors"
	"fmt"

	"github.com/tanema/gween/ease"
)

// Extrapolation decides what happens to inputs outside the keyframe range
type Extrapolation int

const (
	// Clamp holds the boundary output value
	Clamp Extrapolation = iota
	// Extend continues the slope of the boundary segment
	Extend
	// Identity returns the input unchanged
	Identity
)

var (
	ErrTooFewKeyframes      = errors.New("at least two keyframes are required")
	ErrKeyframesNotIncrease = errors.New("keyframe input frames must be strictly increasing")
	ErrKeyframeMismatch     = errors.New("input and output ranges differ in length")
)

// Options control extrapolation and easing of a curve
type Options struct {
	Left   Extrapolation
	Right  Extrapolation
	Easing ease.TweenFunc // nil means linear
}

// ClampBoth is the usual choice for opacity ramps
var ClampBoth = Options{Left: Clamp, Right: Clamp}

// Interpolate maps frame through the piecewise-linear function defined by
// in/out. in must be strictly increasing with at least two entries; the
// check lives in NewCurve so this stays cheap on the hot path.
func Interpolate(frame float64, in, out []float64, opts Options) float64 {
	last := len(in) - 1

	if frame < in[0] {
		switch opts.Left {
		case Identity:
			return frame
		case Clamp:
			return out[0]
		}
		return segment(frame, in[0], in[1], out[0], out[1], nil)
	}

	if frame > in[last] {
		switch opts.Right {
		case Identity:
			return frame
		case Clamp:
			return out[last]
		}
		return segment(frame, in[last-1], in[last], out[last-1], out[last], nil)
	}

	i := findSegment(frame, in)
	return segment(frame, in[i], in[i+1], out[i], out[i+1], opts.Easing)
}

// InterpolateVec is Interpolate for tuple outputs. Every component shares the
// same segment and fraction.
func InterpolateVec(frame float64, in []float64, out [][]float64, opts Options) []float64 {
	if len(out) == 0 {
		return nil
	}
	res := make([]float64, len(out[0]))
	column := make([]float64, len(out))
	for c := range res {
		for k := range out {
			column[k] = out[k][c]
		}
		res[c] = Interpolate(frame, in, column, opts)
	}
	return res
}

// findSegment returns the index of the left keyframe of the segment that
// contains frame. A frame equal to an inner keyframe belongs to the segment
// on its left.
func findSegment(frame float64, in []float64) int {
	i := 1
	for ; i < len(in)-1; i++ {
		if in[i] >= frame {
			break
		}
	}
	return i - 1
}

func segment(frame, x0, x1, y0, y1 float64, fn ease.TweenFunc) float64 {
	t := (frame - x0) / (x1 - x0)
	if fn != nil && t >= 0 && t <= 1 {
		t = float64(fn(float32(t), 0, 1, 1))
	}
	return lerp(y0, y1, t)
}

// lerp performs linear interpolation between a and b
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Curve is a validated keyframe track
type Curve struct {
	in   []float64
	out  []float64
	opts Options
}

// NewCurve validates the keyframes once so that At can skip every check.
func NewCurve(in, out []float64, opts Options) (Curve, error) {
	if len(in) != len(out) {
		return Curve{}, fmt.Errorf("%w: %d inputs, %d outputs", ErrKeyframeMismatch, len(in), len(out))
	}
	if err := ValidateKeyframes(in); err != nil {
		return Curve{}, err
	}
	c := Curve{
		in:   append([]float64(nil), in...),
		out:  append([]float64(nil), out...),
		opts: opts,
	}
	return c, nil
}

// MustCurve is NewCurve for literal tables known to be valid
func MustCurve(in, out []float64, opts Options) Curve {
	c, err := NewCurve(in, out, opts)
	if err != nil {
		panic(err)
	}
	return c
}

// At evaluates the curve at frame
func (c Curve) At(frame float64) float64 {
	return Interpolate(frame, c.in, c.out, c.opts)
}

// Span returns the first and last keyframe inputs
func (c Curve) Span() (float64, float64) {
	return c.in[0], c.in[len(c.in)-1]
}

// ValidateKeyframes checks the construction-time requirements of an input range
func ValidateKeyframes(in []float64) error {
	if len(in) < 2 {
		return fmt.Errorf("%w: got %d", ErrTooFewKeyframes, len(in))
	}
	for i := 1; i < len(in); i++ {
		if !(in[i] > in[i-1]) {
			return fmt.Errorf("%w: %v at index %d follows %v", ErrKeyframesNotIncrease, in[i], i, in[i-1])
		}
	}
	return nil
}
