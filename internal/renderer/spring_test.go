package renderer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var springConfigs = []SpringConfig{
	DefaultSpring,
	{Mass: 1, Stiffness: 200, Damping: 100}, // overdamped
	{Mass: 1, Stiffness: 100, Damping: 20},  // critically damped
	{Mass: 0.5, Stiffness: 80, Damping: 3},  // bouncy
	{Mass: 3, Stiffness: 50, Damping: 12},
}

func TestSpringProgressStartsAtZero(t *testing.T) {
	for _, c := range springConfigs {
		assert.Equal(t, 0.0, SpringProgress(0, 30, c), "config %+v", c)
		assert.Equal(t, 0.0, SpringProgress(-12, 30, c), "config %+v", c)
	}
}

func TestSpringProgressConverges(t *testing.T) {
	for _, c := range springConfigs {
		got := SpringProgress(3000, 30, c)
		assert.InDelta(t, 1.0, got, 1e-6, "config %+v", c)
	}
}

func TestSpringProgressIsDeterministic(t *testing.T) {
	for _, c := range springConfigs {
		for f := 0.0; f < 120; f += 0.5 {
			a := SpringProgress(f, 30, c)
			b := SpringProgress(f, 30, c)
			if math.Float64bits(a) != math.Float64bits(b) {
				t.Fatalf("frame %.1f: %v != %v", f, a, b)
			}
		}
	}
}

func TestSpringProgressOrderIndependent(t *testing.T) {
	c := springConfigs[3]
	forward := make([]float64, 60)
	for f := 0; f < 60; f++ {
		forward[f] = SpringProgress(float64(f), 30, c)
	}
	for f := 59; f >= 0; f-- {
		assert.Equal(t, forward[f], SpringProgress(float64(f), 30, c))
	}
}

func TestSpringProgressUnderdampedOvershoots(t *testing.T) {
	c := springConfigs[3]
	peak := 0.0
	for f := 0; f < 90; f++ {
		peak = math.Max(peak, SpringProgress(float64(f), 30, c))
	}
	assert.Greater(t, peak, 1.0)

	c.OvershootClamping = true
	for f := 0; f < 90; f++ {
		assert.LessOrEqual(t, SpringProgress(float64(f), 30, c), 1.0)
	}
}

func TestSpringProgressOverdampedIsMonotonic(t *testing.T) {
	c := springConfigs[1]
	prev := 0.0
	for f := 1; f < 200; f++ {
		p := SpringProgress(float64(f), 30, c)
		require.GreaterOrEqual(t, p, prev, "frame %d", f)
		require.LessOrEqual(t, p, 1.0)
		prev = p
	}
}

func TestSpringConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  SpringConfig
		ok   bool
	}{
		{"default", DefaultSpring, true},
		{"undamped", SpringConfig{Mass: 1, Stiffness: 10}, true},
		{"zero mass", SpringConfig{Stiffness: 10, Damping: 1}, false},
		{"negative stiffness", SpringConfig{Mass: 1, Stiffness: -1}, false},
		{"negative damping", SpringConfig{Mass: 1, Stiffness: 1, Damping: -1}, false},
		{"nan mass", SpringConfig{Mass: math.NaN(), Stiffness: 1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidSpring)
			}
		})
	}
}

func TestMeasureSpring(t *testing.T) {
	n := MeasureSpring(30, DefaultSpring, SettleThreshold)
	require.Greater(t, n, 0)
	require.Less(t, n, maxSettleFrames)

	for f := n; f < n+300; f++ {
		assert.InDelta(t, 1.0, SpringProgress(float64(f), 30, DefaultSpring), SettleThreshold)
	}

	assert.Equal(t, maxSettleFrames, MeasureSpring(30, SpringConfig{Mass: 1, Stiffness: 10}, 0))
}

func TestSpringAtRangeDelayAndDuration(t *testing.T) {
	s := Spring{Config: DefaultSpring, From: 40, To: 0, Delay: 10}

	assert.Equal(t, 40.0, s.At(0, 30))
	assert.Equal(t, 40.0, s.At(10, 30))
	assert.InDelta(t, 0.0, s.At(2000, 30), 1e-6)

	stretched := Spring{Config: DefaultSpring, From: 0, To: 1, DurationInFrames: 60}
	assert.InDelta(t, 1.0, stretched.At(60, 30), SettleThreshold)
	assert.Less(t, stretched.At(10, 30), 1.0)
}

func TestSpringPrepareCachesSettleFrame(t *testing.T) {
	s := Spring{Config: DefaultSpring, From: 0, To: 1, Delay: 5, DurationInFrames: 45}
	prepared := s.Prepare(30)

	assert.Equal(t, MeasureSpring(30, DefaultSpring, SettleThreshold), prepared.natural)
	for f := 0; f < 90; f += 7 {
		assert.Equal(t, s.At(f, 30), prepared.At(f, 30), "frame %d", f)
	}
	assert.Equal(t, 50, prepared.SettleFrame(30))

	natural := Spring{Config: DefaultSpring, Delay: 5}
	assert.Equal(t, 5+MeasureSpring(30, DefaultSpring, SettleThreshold), natural.SettleFrame(30))
}
