package engine

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idamadam/promovideo/internal/director"
	"github.com/idamadam/promovideo/internal/effects"
)

func reference(t *testing.T) *Composition {
	t.Helper()
	comp, err := NewComposition(director.Reference())
	require.NoError(t, err)
	return comp
}

func layerOf(rs RenderState, scene string) (Layer, bool) {
	for _, l := range rs.Layers {
		if l.SceneID == scene {
			return l, true
		}
	}
	return Layer{}, false
}

func TestReferenceTimeline(t *testing.T) {
	comp := reference(t)
	assert.Equal(t, 840, comp.TotalFrames())
	assert.Equal(t, 30, comp.FPS())

	rs, err := comp.Evaluate(75)
	require.NoError(t, err)
	editor, ok := layerOf(rs, "editor")
	require.True(t, ok)
	assert.Equal(t, 0, editor.LocalFrame)

	rs, err = comp.Evaluate(734)
	require.NoError(t, err)
	editor, ok = layerOf(rs, "editor")
	require.True(t, ok)
	assert.Equal(t, 659, editor.LocalFrame)

	rs, err = comp.Evaluate(735)
	require.NoError(t, err)
	_, ok = layerOf(rs, "editor")
	assert.False(t, ok)

	rs, err = comp.Evaluate(720)
	require.NoError(t, err)
	outro, ok := layerOf(rs, "outro")
	require.True(t, ok)
	assert.Equal(t, 0, outro.LocalFrame)
}

func TestEvaluateOutOfRange(t *testing.T) {
	comp := reference(t)
	for _, f := range []int{-1, 840, 10000} {
		_, err := comp.Evaluate(f)
		assert.ErrorIs(t, err, ErrFrameOutOfRange, "frame %d", f)
	}
}

func TestActivePresetSwitch(t *testing.T) {
	comp := reference(t)

	rs, err := comp.Evaluate(300)
	require.NoError(t, err)
	assert.Equal(t, "Previous", rs.States["activePreset"].State)
	assert.False(t, rs.States["activePreset"].Transitioning())

	rs, err = comp.Evaluate(319)
	require.NoError(t, err)
	assert.Equal(t, "Previous", rs.States["activePreset"].State)

	for f := 320; f < 335; f++ {
		rs, err = comp.Evaluate(f)
		require.NoError(t, err)
		res := rs.States["activePreset"]
		assert.Equal(t, "Latest", res.State, "frame %d", f)
		assert.Equal(t, "Previous", res.Previous, "frame %d", f)
		assert.Equal(t, 320, res.TransitionStart, "frame %d", f)
	}

	rs, err = comp.Evaluate(335)
	require.NoError(t, err)
	assert.Equal(t, "Latest", rs.States["activePreset"].State)
	assert.Empty(t, rs.States["activePreset"].Previous)
}

func TestStatusBannerRefinement(t *testing.T) {
	comp := reference(t)
	want := map[int]string{0: "hidden", 75: "drafting", 199: "drafting", 200: "generating", 320: "updated", 735: "hidden", 839: "hidden"}
	for f, st := range want {
		rs, err := comp.Evaluate(f)
		require.NoError(t, err)
		assert.Equal(t, st, rs.States["statusBanner"].State, "frame %d", f)
	}
	assert.Equal(t, []string{"activePreset", "statusBanner"}, comp.MachineNames())
}

func TestElementPresence(t *testing.T) {
	comp := reference(t)

	rs, err := comp.Evaluate(14)
	require.NoError(t, err)
	assert.False(t, rs.Visible("headline"))

	rs, err = comp.Evaluate(16)
	require.NoError(t, err)
	require.True(t, rs.Visible("headline"))
	op := rs.Elements["headline"].Opacity
	assert.Greater(t, op, 0.0)
	assert.LessOrEqual(t, op, 1.0)
	assert.Equal(t, "intro", rs.Elements["headline"].Scene)

	// the cursor lives inside the prompt, which lives inside the window
	rs, err = comp.Evaluate(129)
	require.NoError(t, err)
	assert.False(t, rs.Visible("cursor"))
	rs, err = comp.Evaluate(130)
	require.NoError(t, err)
	assert.True(t, rs.Visible("cursor"))
	rs, err = comp.Evaluate(275)
	require.NoError(t, err)
	assert.False(t, rs.Visible("cursor"))
}

func TestBlendMultipliesElementFade(t *testing.T) {
	sc := &director.Scenario{
		FPS: 30,
		Scenes: []director.Scene{
			{ID: "a", Start: 0, Duration: 30, Elements: []effects.ElementSpec{{ID: "title"}}},
			{ID: "b", Start: 20, Duration: 40, Elements: []effects.ElementSpec{{ID: "card", Fade: 10}}},
		},
		Transitions: []director.TransitionWindow{{From: "a", To: "b", Start: 20, End: 30}},
	}
	comp, err := NewComposition(sc)
	require.NoError(t, err)

	rs, err := comp.Evaluate(25)
	require.NoError(t, err)
	// incoming blend 0.5 times the card's own half-done fade
	assert.InDelta(t, 0.25, rs.Elements["card"].Opacity, 1e-12)
	assert.InDelta(t, 0.5, rs.Elements["title"].Opacity, 1e-12)
	assert.Nil(t, rs.States)
}

func TestNewCompositionRejectsBadScenario(t *testing.T) {
	sc := &director.Scenario{
		FPS: 30,
		Scenes: []director.Scene{
			{ID: "a", Start: 0, Duration: 30},
			{ID: "b", Start: 20, Duration: 0},
			{ID: "c", Start: 25, Duration: 10},
		},
	}
	_, err := NewComposition(sc)
	require.Error(t, err)
	assert.ErrorIs(t, err, director.ErrBadScene)
	assert.ErrorIs(t, err, director.ErrSceneOverlap)
}

func TestNewCompositionRejectsUncoveredFrames(t *testing.T) {
	sc := &director.Scenario{
		FPS: 30,
		Scenes: []director.Scene{
			{ID: "a", Start: 5, Duration: 10},
			{ID: "b", Start: 25, Duration: 10},
		},
	}
	_, err := NewComposition(sc)
	require.Error(t, err)
	assert.ErrorIs(t, err, director.ErrSceneGap)
	assert.Contains(t, err.Error(), "[0, 5)")
	assert.Contains(t, err.Error(), "[15, 25)")
}

func TestCompositionIgnoresLaterScenarioEdits(t *testing.T) {
	sc := director.Reference()
	comp, err := NewComposition(sc)
	require.NoError(t, err)
	before, err := comp.Evaluate(400)
	require.NoError(t, err)

	sc.Scenes[1].Start = 500
	sc.Transitions = nil
	after, err := comp.Evaluate(400)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(before, after))
}

func TestEvaluateIsDeterministic(t *testing.T) {
	a, b := reference(t), reference(t)
	for f := 0; f < a.TotalFrames(); f++ {
		x, err := a.Evaluate(f)
		require.NoError(t, err)
		y, err := b.Evaluate(f)
		require.NoError(t, err)
		z, err := a.Evaluate(f)
		require.NoError(t, err)
		if diff := cmp.Diff(x, y); diff != "" {
			t.Fatalf("frame %d differs between compositions (-a +b):\n%s", f, diff)
		}
		if diff := cmp.Diff(x, z); diff != "" {
			t.Fatalf("frame %d differs between calls (-first +second):\n%s", f, diff)
		}
	}
}
