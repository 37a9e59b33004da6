package renderer

import (
	"errors"
	"fmt"
	"math"

	"github.com/charmbracelet/harmonica"
)

var ErrInvalidSpring = errors.New("invalid spring config")

// SpringConfig describes a damped harmonic oscillator
type SpringConfig struct {
	Mass              float64 `yaml:"mass"`
	Stiffness         float64 `yaml:"stiffness"`
	Damping           float64 `yaml:"damping"`
	OvershootClamping bool    `yaml:"overshoot_clamping,omitempty"`
}

// DefaultSpring is the house motion used by the promo video
var DefaultSpring = SpringConfig{Mass: 1, Stiffness: 100, Damping: 10}

// Validate rejects configs that would otherwise produce NaN mid-render
func (c SpringConfig) Validate() error {
	switch {
	case !(c.Mass > 0):
		return fmt.Errorf("%w: mass must be > 0, got %v", ErrInvalidSpring, c.Mass)
	case !(c.Stiffness > 0):
		return fmt.Errorf("%w: stiffness must be > 0, got %v", ErrInvalidSpring, c.Stiffness)
	case !(c.Damping >= 0):
		return fmt.Errorf("%w: damping must be >= 0, got %v", ErrInvalidSpring, c.Damping)
	}
	return nil
}

// AngularFrequency is ω = √(stiffness/mass)
func (c SpringConfig) AngularFrequency() float64 {
	return math.Sqrt(c.Stiffness / c.Mass)
}

// DampingRatio is ζ = damping / (2√(stiffness·mass))
func (c SpringConfig) DampingRatio() float64 {
	return c.Damping / (2 * math.Sqrt(c.Stiffness*c.Mass))
}

// SpringProgress returns the unit step response of the spring after
// elapsedFrames. It starts at 0 and settles at 1; underdamped configs
// overshoot on purpose. The result is computed in closed form from rest, so
// equal inputs always give bit-identical outputs.
func SpringProgress(elapsedFrames float64, fps int, c SpringConfig) float64 {
	if !(elapsedFrames > 0) || fps <= 0 {
		return 0
	}
	seconds := elapsedFrames / float64(fps)
	s := harmonica.NewSpring(seconds, c.AngularFrequency(), c.DampingRatio())
	pos, _ := s.Update(0, 0, 1)
	if c.OvershootClamping && pos > 1 {
		return 1
	}
	return pos
}

// springVelocity is the progress derivative in units per second
func springVelocity(elapsedFrames float64, fps int, c SpringConfig) float64 {
	if !(elapsedFrames > 0) || fps <= 0 {
		return 0
	}
	s := harmonica.NewSpring(elapsedFrames/float64(fps), c.AngularFrequency(), c.DampingRatio())
	_, vel := s.Update(0, 0, 1)
	return vel
}

// SettleThreshold is how close to rest a spring must be to count as settled
const SettleThreshold = 0.005

// maxSettleFrames bounds MeasureSpring for undamped springs that never rest
const maxSettleFrames = 100000

// MeasureSpring returns the first frame from which the spring stays within
// threshold of 1. Springs with zero damping never settle and report
// maxSettleFrames.
func MeasureSpring(fps int, c SpringConfig, threshold float64) int {
	if threshold <= 0 {
		threshold = SettleThreshold
	}
	if c.Damping == 0 {
		return maxSettleFrames
	}
	// x² + v²/ω² is proportional to the oscillator energy, which never grows
	// with damping >= 0. Once it drops under threshold² the position can not
	// leave the band again.
	omega := c.AngularFrequency()
	for f := 1; f < maxSettleFrames; f++ {
		x := 1 - SpringProgress(float64(f), fps, c)
		v := springVelocity(float64(f), fps, c) / omega
		if x*x+v*v < threshold*threshold {
			return f
		}
	}
	return maxSettleFrames
}

// Spring maps spring progress onto a value range
type Spring struct {
	Config SpringConfig
	From   float64
	To     float64
	// Delay shifts the start; frames before it return From
	Delay int
	// DurationInFrames stretches time so the spring settles at that frame;
	// zero keeps the natural timing
	DurationInFrames int

	natural int // cached MeasureSpring result, see Prepare
}

// Prepare measures the natural settle frame once for fps. Evaluating a
// prepared spring with another fps keeps the measured timing.
func (s Spring) Prepare(fps int) Spring {
	if s.natural == 0 {
		s.natural = MeasureSpring(fps, s.Config, SettleThreshold)
	}
	return s
}

// SettleFrame returns the frame, counted like At, from which the value stays
// within SettleThreshold of To
func (s Spring) SettleFrame(fps int) int {
	if s.DurationInFrames > 0 {
		return s.Delay + s.DurationInFrames
	}
	return s.Delay + s.Prepare(fps).natural
}

// At evaluates the spring at frame, counted from the owner's local start.
// Unprepared springs with a DurationInFrames measure themselves on every call.
func (s Spring) At(frame int, fps int) float64 {
	elapsed := float64(frame - s.Delay)
	if s.DurationInFrames > 0 {
		natural := s.Prepare(fps).natural
		elapsed = elapsed * float64(natural) / float64(s.DurationInFrames)
	}
	p := SpringProgress(elapsed, fps, s.Config)
	return Interpolate(p, []float64{0, 1}, []float64{s.From, s.To}, Options{Left: Extend, Right: Extend})
}
