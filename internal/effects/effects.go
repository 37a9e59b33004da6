package effects

import (
	"errors"
	"fmt"
	"maps"
	"strings"

	"github.com/tanema/gween/ease"
	"go.uber.org/multierr"

	"github.com/idamadam/promovideo/internal/clock"
	"github.com/idamadam/promovideo/internal/renderer"
)

var ErrInvalidElement = errors.New("invalid element")

const (
	MotionLinear = "linear"
	MotionSpring = "spring"
)

// Context carries what an element needs from its scene
type Context struct {
	FPS      int
	Duration int // scene length in frames
}

type track struct {
	property string
	curve    renderer.Curve
}

// element is a validated ElementSpec with its curves resolved
type element struct {
	id        string
	span      clock.Span // in owner-local frames
	fade      int
	fadeOut   int
	spring    *renderer.Spring // progress from 0 to 1, prepared for the scene fps
	settle    int
	easing    ease.TweenFunc
	slide     Offset
	slideOut  Offset
	scaleFrom float64
	tracks    []track
	children  []*element
}

// Evaluator is the compiled, immutable form of a scene's element specs
type Evaluator struct {
	fps      int
	elements []*element
	size     int
	settle   map[string]int
}

// Compile validates specs and resolves easing names, springs and tracks.
// All problems are reported together.
func Compile(specs []ElementSpec, ctx Context) (*Evaluator, error) {
	if ctx.FPS <= 0 {
		return nil, fmt.Errorf("%w: fps must be positive, got %d", ErrInvalidElement, ctx.FPS)
	}
	ev := &Evaluator{fps: ctx.FPS, settle: make(map[string]int)}
	seen := make(map[string]bool)

	var err error
	ev.elements, err = ev.compileList(specs, ctx.Duration, "", seen)
	if err != nil {
		return nil, err
	}
	return ev, nil
}

func (ev *Evaluator) compileList(specs []ElementSpec, ownerLen int, path string, seen map[string]bool) ([]*element, error) {
	var (
		out  []*element
		errs error
	)
	for _, spec := range specs {
		el, err := ev.compileOne(spec, ownerLen, path, seen)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		out = append(out, el)
	}
	return out, errs
}

func (ev *Evaluator) compileOne(spec ElementSpec, ownerLen int, path string, seen map[string]bool) (*element, error) {
	where := path + spec.ID
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%w %q: %s", ErrInvalidElement, where, fmt.Sprintf(format, args...))
	}

	var errs error
	if spec.ID == "" {
		return nil, fail("missing id")
	}
	if seen[spec.ID] {
		errs = multierr.Append(errs, fail("duplicate id"))
	}
	seen[spec.ID] = true

	exit := spec.Exit
	if exit == 0 {
		exit = ownerLen
	}
	switch {
	case spec.Enter < 0:
		errs = multierr.Append(errs, fail("enter must be >= 0, got %d", spec.Enter))
	case spec.Enter >= ownerLen:
		errs = multierr.Append(errs, fail("enters at %d but its owner lasts %d frames", spec.Enter, ownerLen))
	case exit <= spec.Enter:
		errs = multierr.Append(errs, fail("exit %d must follow enter %d", exit, spec.Enter))
	case exit > ownerLen:
		errs = multierr.Append(errs, fail("exit %d is past the owner's %d frames", exit, ownerLen))
	}
	if spec.Fade < 0 || spec.FadeOut < 0 {
		errs = multierr.Append(errs, fail("fade lengths must be >= 0"))
	}

	el := &element{
		id:        spec.ID,
		span:      clock.Span{Start: spec.Enter, Duration: exit - spec.Enter},
		fade:      spec.Fade,
		fadeOut:   spec.FadeOut,
		slide:     spec.Slide,
		slideOut:  spec.SlideOut,
		scaleFrom: 1,
	}
	if spec.ScaleFrom != nil {
		el.scaleFrom = *spec.ScaleFrom
	}

	switch strings.ToLower(spec.Motion) {
	case "", MotionLinear:
		if spec.Spring != nil || spec.SpringDelay != 0 || spec.SpringDuration != 0 {
			errs = multierr.Append(errs, fail("spring settings given for linear motion"))
		}
	case MotionSpring:
		cfg := renderer.DefaultSpring
		if spec.Spring != nil {
			cfg = *spec.Spring
		}
		if err := cfg.Validate(); err != nil {
			errs = multierr.Append(errs, fail("%v", err))
			break
		}
		if spec.SpringDelay < 0 || spec.SpringDuration < 0 {
			errs = multierr.Append(errs, fail("spring delay and duration must be >= 0"))
			break
		}
		sp := renderer.Spring{
			Config:           cfg,
			From:             0,
			To:               1,
			Delay:            spec.SpringDelay,
			DurationInFrames: spec.SpringDuration,
		}.Prepare(ev.fps)
		el.spring = &sp
		el.settle = sp.SettleFrame(ev.fps)
	default:
		errs = multierr.Append(errs, fail("unknown motion %q", spec.Motion))
	}

	fn, err := renderer.LookupEasing(spec.Easing)
	if err != nil {
		errs = multierr.Append(errs, fail("%v", err))
	}
	el.easing = fn

	for i, t := range spec.Tracks {
		tr, err := compileTrack(t)
		if err != nil {
			errs = multierr.Append(errs, fail("track %d: %v", i, err))
			continue
		}
		el.tracks = append(el.tracks, tr)
	}

	children, err := ev.compileList(spec.Children, el.span.Duration, where+"/", seen)
	errs = multierr.Append(errs, err)
	el.children = children

	if errs != nil {
		return nil, errs
	}
	ev.size++
	if el.spring != nil {
		ev.settle[el.id] = el.settle
	}
	return el, nil
}

func compileTrack(t Track) (track, error) {
	switch t.Property {
	case "opacity", "x", "y", "scale":
	default:
		return track{}, fmt.Errorf("unknown property %q", t.Property)
	}
	left, err := renderer.ParseExtrapolation(t.Left)
	if err != nil {
		return track{}, err
	}
	right, err := renderer.ParseExtrapolation(t.Right)
	if err != nil {
		return track{}, err
	}
	fn, err := renderer.LookupEasing(t.Easing)
	if err != nil {
		return track{}, err
	}
	c, err := renderer.NewCurve(t.Frames, t.Values, renderer.Options{Left: left, Right: right, Easing: fn})
	if err != nil {
		return track{}, err
	}
	return track{property: t.Property, curve: c}, nil
}

// Evaluate returns the properties of every element present at localFrame.
// Elements before their enter frame or at/after their exit frame are left
// out of the map entirely.
func (ev *Evaluator) Evaluate(localFrame int) map[string]Properties {
	out := make(map[string]Properties, ev.size)
	for _, el := range ev.elements {
		ev.evaluate(el, localFrame, identity, out)
	}
	return out
}

func (ev *Evaluator) evaluate(el *element, ownerFrame int, parent Properties, out map[string]Properties) {
	local, ok := el.span.Local(ownerFrame)
	if !ok {
		return
	}

	f := float64(local)
	in := 1.0
	if el.fade > 0 {
		in = renderer.Interpolate(f, []float64{0, float64(el.fade)}, []float64{0, 1},
			renderer.Options{Easing: el.easing})
	}
	motion := in
	if el.spring != nil {
		// overshoot is kept for motion only; a fade still ramps opacity
		motion = el.spring.At(local, ev.fps)
		in *= min(max(motion, 0), 1)
	}

	exit := 1.0
	if el.fadeOut > 0 {
		end := float64(el.span.Duration)
		exit = renderer.Interpolate(f, []float64{end - float64(el.fadeOut), end}, []float64{1, 0}, renderer.ClampBoth)
	}

	p := Properties{
		Opacity:    in * exit,
		TranslateX: el.slide.X*(1-motion) + el.slideOut.X*(1-exit),
		TranslateY: el.slide.Y*(1-motion) + el.slideOut.Y*(1-exit),
		Scale:      el.scaleFrom + (1-el.scaleFrom)*motion,
		Local:      local,
	}

	for _, t := range el.tracks {
		v := t.curve.At(f)
		switch t.property {
		case "opacity":
			p.Opacity *= v
		case "scale":
			p.Scale *= v
		case "x":
			p.TranslateX += v
		case "y":
			p.TranslateY += v
		}
	}

	p.Opacity *= parent.Opacity
	p.Scale *= parent.Scale
	p.TranslateX += parent.TranslateX
	p.TranslateY += parent.TranslateY
	out[el.id] = p

	for _, child := range el.children {
		ev.evaluate(child, local, p, out)
	}
}

// SettleFrames returns, for every spring-driven element, the element frame
// from which its spring stays at rest
func (ev *Evaluator) SettleFrames() map[string]int {
	return maps.Clone(ev.settle)
}

// Evaluate compiles specs and evaluates them at one frame. Renders should
// Compile once and reuse the Evaluator.
func Evaluate(localFrame int, specs []ElementSpec, ctx Context) (map[string]Properties, error) {
	ev, err := Compile(specs, ctx)
	if err != nil {
		return nil, err
	}
	return ev.Evaluate(localFrame), nil
}
