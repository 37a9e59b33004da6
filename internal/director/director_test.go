package director

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idamadam/promovideo/internal/clock"
	"github.com/idamadam/promovideo/internal/effects"
)

func TestLayoutSeriesReference(t *testing.T) {
	starts, windows, total, err := LayoutSeries([]int{90, 660, 120}, 15)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 75, 720}, starts)
	assert.Equal(t, []clock.Span{{Start: 75, Duration: 15}, {Start: 720, Duration: 15}}, windows)
	assert.Equal(t, 90+660+120-2*15, total)
	assert.Equal(t, 840, total)
}

func TestLayoutSeriesRejects(t *testing.T) {
	tests := []struct {
		name      string
		durations []int
		overlap   int
	}{
		{"no scenes", nil, 0},
		{"zero duration", []int{10, 0}, 0},
		{"negative overlap", []int{10, 10}, -1},
		{"overlap too long", []int{90, 15, 120}, 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, err := LayoutSeries(tt.durations, tt.overlap)
			assert.ErrorIs(t, err, ErrLayout)
		})
	}
}

func TestLayoutSeriesWithoutOverlap(t *testing.T) {
	starts, windows, total, err := LayoutSeries([]int{10, 20}, 0)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 10}, starts)
	assert.Empty(t, windows)
	assert.Equal(t, 30, total)
}

func TestReferenceScenario(t *testing.T) {
	sc := Reference()

	assert.Equal(t, 30, sc.FPS)
	assert.Equal(t, 840, sc.TotalFrames())

	editor, ok := sc.Scene("editor")
	require.True(t, ok)
	assert.Equal(t, 75, editor.Start)
	assert.Equal(t, 735, editor.End())

	outro, ok := sc.Scene("outro")
	require.True(t, ok)
	local, ok := outro.LocalFrame(720)
	assert.True(t, ok)
	assert.Equal(t, 0, local)

	require.Len(t, sc.Transitions, 2)
	assert.Equal(t, TransitionWindow{From: "editor", To: "outro", Start: 720, End: 735}, sc.Transitions[1])

	plan, err := sc.Compile()
	require.NoError(t, err)
	assert.Equal(t, 840, plan.Total)
	assert.Len(t, plan.Evaluators, 3)
	require.Len(t, plan.Machines, 2)
	assert.Equal(t, "activePreset", plan.Machines[0].Name())
}

func validScenario() *Scenario {
	return &Scenario{
		Version: "1.0",
		FPS:     30,
		Scenes: []Scene{
			{ID: "a", Start: 0, Duration: 50},
			{ID: "b", Start: 40, Duration: 50},
		},
		Transitions: []TransitionWindow{{From: "a", To: "b", Start: 40, End: 50}},
	}
}

func TestValidateScenario(t *testing.T) {
	require.NoError(t, validScenario().Validate())

	tests := []struct {
		name   string
		mutate func(*Scenario)
		want   error
	}{
		{"fps", func(s *Scenario) { s.FPS = 0 }, ErrBadFPS},
		{"no scenes", func(s *Scenario) { s.Scenes = nil }, ErrNoScenes},
		{"zero duration", func(s *Scenario) { s.Scenes[0].Duration = 0 }, ErrBadScene},
		{"negative start", func(s *Scenario) { s.Scenes[0].Start = -1 }, ErrBadScene},
		{"duplicate scene", func(s *Scenario) { s.Scenes[1].ID = "a" }, ErrBadScene},
		{"no window", func(s *Scenario) { s.Transitions = nil }, ErrSceneOverlap},
		{"window too short", func(s *Scenario) { s.Transitions[0].End = 45 }, ErrSceneOverlap},
		{"window outside scene", func(s *Scenario) { s.Transitions[0].Start = 35 }, ErrBadWindow},
		{"empty window", func(s *Scenario) { s.Transitions[0].End = 40 }, ErrBadWindow},
		{"unknown scene", func(s *Scenario) { s.Transitions[0].To = "c" }, ErrBadWindow},
		{"late first scene", func(s *Scenario) {
			s.Scenes = []Scene{{ID: "a", Start: 5, Duration: 10}}
			s.Transitions = nil
		}, ErrSceneGap},
		{"gap between scenes", func(s *Scenario) {
			s.Scenes = []Scene{{ID: "b", Start: 25, Duration: 10}, {ID: "a", Start: 0, Duration: 15}}
			s.Transitions = nil
		}, ErrSceneGap},
		{"overlap as long as scene", func(s *Scenario) {
			s.Scenes[1] = Scene{ID: "b", Start: 40, Duration: 10}
		}, ErrSceneOverlap},
		{"duplicate element", func(s *Scenario) {
			s.Scenes[0].Elements = []effects.ElementSpec{{ID: "x"}}
			s.Scenes[1].Elements = []effects.ElementSpec{{ID: "x"}}
		}, ErrDuplicateElement},
		{"bad element", func(s *Scenario) {
			s.Scenes[0].Elements = []effects.ElementSpec{{ID: "x", Enter: 99}}
		}, effects.ErrInvalidElement},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := validScenario()
			tt.mutate(sc)
			err := sc.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestScenarioWriteRead(t *testing.T) {
	scenario := Reference()

	tmpFile := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, WriteScenario(scenario, tmpFile))

	readScenario, err := ReadScenario(tmpFile)
	require.NoError(t, err)

	assert.Equal(t, scenario.Version, readScenario.Version)
	assert.Equal(t, scenario.Scenes, readScenario.Scenes)
	assert.Equal(t, scenario.Transitions, readScenario.Transitions)
	assert.Equal(t, scenario.Machines, readScenario.Machines)
}
