package renderer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrEasedCurve = errors.New("eased curve has no piecewise-linear expression")

// Expression writes the curve as a nested if(lte(...)) expression over
// variable, in the syntax ffmpeg filters and most expression evaluators
// accept. Only linear curves can be expressed.
func (c Curve) Expression(variable string) (string, error) {
	if c.opts.Easing != nil {
		return "", ErrEasedCurve
	}

	last := len(c.in) - 1
	v := variable
	linear := func(i int) string {
		return fmt.Sprintf("%s+(%s-%s)/%s*%s",
			num(c.out[i]), v, num(c.in[i]), num(c.in[i+1]-c.in[i]), num(c.out[i+1]-c.out[i]))
	}

	var b strings.Builder
	open := 0
	switch c.opts.Left {
	case Clamp:
		fmt.Fprintf(&b, "if(lt(%s,%s),%s,", v, num(c.in[0]), num(c.out[0]))
		open++
	case Identity:
		fmt.Fprintf(&b, "if(lt(%s,%s),%s,", v, num(c.in[0]), v)
		open++
	}

	// every segment but the last is guarded by its right keyframe
	for i := 0; i < last-1; i++ {
		fmt.Fprintf(&b, "if(lte(%s,%s),%s,", v, num(c.in[i+1]), linear(i))
		open++
	}

	switch c.opts.Right {
	case Clamp:
		fmt.Fprintf(&b, "if(lte(%s,%s),%s,%s)", v, num(c.in[last]), linear(last-1), num(c.out[last]))
	case Identity:
		fmt.Fprintf(&b, "if(lte(%s,%s),%s,%s)", v, num(c.in[last]), linear(last-1), v)
	default:
		b.WriteString(linear(last - 1))
	}
	b.WriteString(strings.Repeat(")", open))
	return b.String(), nil
}

func num(x float64) string {
	s := strconv.FormatFloat(x, 'g', -1, 64)
	if x < 0 {
		return "(" + s + ")"
	}
	return s
}
