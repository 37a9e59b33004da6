// Package clock converts global frames into local frames of nested spans.
//
// Every span is half-open: a span starting at 75 with duration 660 owns
// frames 75..734. Arithmetic is integer only, so nesting to any depth never
// accumulates rounding.
package clock

// Span is a bounded window of a parent timeline
type Span struct {
	Start    int `yaml:"start" json:"start"`
	Duration int `yaml:"duration" json:"duration"`
}

// End returns the first frame after the span
func (s Span) End() int {
	return s.Start + s.Duration
}

// Contains reports whether frame falls inside [Start, End)
func (s Span) Contains(frame int) bool {
	return frame >= s.Start && frame < s.End()
}

// Local returns frame relative to the span start, or false when frame lies
// outside the span.
func (s Span) Local(frame int) (int, bool) {
	if !s.Contains(frame) {
		return 0, false
	}
	return frame - s.Start, true
}

// Overlap returns the intersection of two spans; ok is false when they do
// not share a frame.
func (s Span) Overlap(o Span) (Span, bool) {
	start := max(s.Start, o.Start)
	end := min(s.End(), o.End())
	if end <= start {
		return Span{}, false
	}
	return Span{Start: start, Duration: end - start}, true
}

// LocalFrame is Span.Local for callers that hold a start and a duration
func LocalFrame(global, start, duration int) (int, bool) {
	return Span{Start: start, Duration: duration}.Local(global)
}

// Nest resolves frame through spans from outermost to innermost. Each span
// is expressed in the local time of the one before it.
func Nest(frame int, spans ...Span) (int, bool) {
	local := frame
	for _, s := range spans {
		var ok bool
		if local, ok = s.Local(local); !ok {
			return 0, false
		}
	}
	return local, true
}
