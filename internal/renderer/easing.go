package renderer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tanema/gween/ease"
)

var easings = map[string]ease.TweenFunc{
	"linear":       ease.Linear,
	"in-quad":      ease.InQuad,
	"out-quad":     ease.OutQuad,
	"in-out-quad":  ease.InOutQuad,
	"in-cubic":     ease.InCubic,
	"out-cubic":    ease.OutCubic,
	"in-out-cubic": ease.InOutCubic,
	"in-sine":      ease.InSine,
	"out-sine":     ease.OutSine,
	"in-out-sine":  ease.InOutSine,
	"out-back":     ease.OutBack,
	"in-out-back":  ease.InOutBack,
}

// LookupEasing resolves an easing name from a scenario file. The empty name
// and "linear" both resolve to nil, which Interpolate treats as linear.
func LookupEasing(name string) (ease.TweenFunc, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || key == "linear" {
		return nil, nil
	}
	fn, ok := easings[key]
	if !ok {
		return nil, fmt.Errorf("unknown easing %q (known: %s)", name, strings.Join(EasingNames(), ", "))
	}
	return fn, nil
}

// EasingNames lists the accepted easing names in sorted order
func EasingNames() []string {
	names := make([]string, 0, len(easings))
	for name := range easings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseExtrapolation accepts "clamp", "extend" or "identity"; empty means clamp.
func ParseExtrapolation(s string) (Extrapolation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "clamp":
		return Clamp, nil
	case "extend":
		return Extend, nil
	case "identity":
		return Identity, nil
	}
	return Clamp, fmt.Errorf("unknown extrapolation %q", s)
}

func (e Extrapolation) String() string {
	switch e {
	case Extend:
		return "extend"
	case Identity:
		return "identity"
	}
	return "clamp"
}
