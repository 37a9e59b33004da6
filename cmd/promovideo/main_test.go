package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idamadam/promovideo/internal/engine"
	"github.com/idamadam/promovideo/internal/video"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--log-level", "none"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func inTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestRenderWritesEveryFrame(t *testing.T) {
	dir := inTempDir(t)
	path := filepath.Join(dir, "frames.jsonl")

	out, err := runCLI(t, "render", "-o", path, "-w", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "840 frames -> "+path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	frames, err := video.ReadFrames(f)
	require.NoError(t, err)
	require.Len(t, frames, 840)
	assert.Equal(t, 839, frames[839].Frame)
}

func TestRenderDryRunRange(t *testing.T) {
	inTempDir(t)
	out, err := runCLI(t, "render", "--dry-run", "--from", "10", "--to", "20")
	require.NoError(t, err)
	assert.Contains(t, out, "10 frames evaluated")
	assert.NoFileExists(t, filepath.Join("output", "frames.jsonl"))
}

func TestFrameCommand(t *testing.T) {
	inTempDir(t)
	out, err := runCLI(t, "frame", "727", "--compact")
	require.NoError(t, err)

	var rs engine.RenderState
	require.NoError(t, json.Unmarshal([]byte(out), &rs))
	assert.Equal(t, 727, rs.Frame)
	require.Len(t, rs.Layers, 2)
	assert.InDelta(t, 1.0, rs.Layers[0].Blend+rs.Layers[1].Blend, 1e-12)

	_, err = runCLI(t, "frame", "840")
	assert.ErrorIs(t, err, engine.ErrFrameOutOfRange)

	_, err = runCLI(t, "frame", "abc")
	assert.Error(t, err)
}

func TestInspect(t *testing.T) {
	inTempDir(t)
	out, err := runCLI(t, "inspect")
	require.NoError(t, err)
	for _, want := range []string{"Timeline: 840 frames @ 30 fps", "editor", "result-card", "activePreset", "generating"} {
		assert.Contains(t, out, want)
	}
	var ctaRow string
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, " cta ") {
			ctaRow = line
		}
	}
	assert.Regexp(t, `spring\s+│\s+30\s+│`, ctaRow, "cta settles one second after it enters")

	out, err = runCLI(t, "inspect", "--curves")
	require.NoError(t, err)
	assert.Contains(t, out, "cursor")
	assert.Contains(t, out, "if(lt(t,0),1,")

	out, err = runCLI(t, "inspect", "--frame", "320")
	require.NoError(t, err)
	assert.Contains(t, out, "Latest")
	assert.Contains(t, out, "result-card")
}

func TestScenarioWriteThenUse(t *testing.T) {
	dir := inTempDir(t)
	path := filepath.Join(dir, "custom.yaml")

	out, err := runCLI(t, "scenario", "write", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	out, err = runCLI(t, "scenario", "validate", path)
	require.NoError(t, err)
	assert.Equal(t, "ok: 3 scenes, 2 transitions, 840 frames\n", out)

	out, err = runCLI(t, "--scenario", path, "render", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "840 frames evaluated")
}

func TestScenarioDiscoveredFromDirectory(t *testing.T) {
	inTempDir(t)
	_, err := runCLI(t, "scenario", "write")
	require.NoError(t, err)

	entries, err := os.ReadDir("scenarios")
	require.NoError(t, err)
	require.Len(t, entries, 1)

	// a broken newer file wins the lookup and is reported
	broken := filepath.Join("scenarios", "zz.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("fps: 30\nscenes: []\n"), 0644))
	info, err := entries[0].Info()
	require.NoError(t, err)
	require.NoError(t, os.Chtimes(broken, info.ModTime().Add(time.Second), info.ModTime().Add(time.Second)))

	_, err = runCLI(t, "scenario", "validate")
	assert.Error(t, err)
}

func TestPreviewCommand(t *testing.T) {
	dir := inTempDir(t)
	path := filepath.Join(dir, "board.png")
	out, err := runCLI(t, "preview", "-o", path, "--every", "120", "--tile-width", "64")
	require.NoError(t, err)
	assert.Contains(t, out, path)
	assert.FileExists(t, path)
}

func TestDemoCommand(t *testing.T) {
	dir := inTempDir(t)
	out, err := runCLI(t, "demo", "--replay")
	require.NoError(t, err)
	assert.Contains(t, out, "generating")
	assert.Contains(t, out, "255")

	script := filepath.Join(dir, "script.yaml")
	require.NoError(t, os.WriteFile(script, []byte("steps:\n  - delay: 1ms\n    action: typing\n  - delay: 1ms\n    action: done\n"), 0644))
	out, err = runCLI(t, "demo", "--script", script)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "typing")
	assert.Contains(t, lines[1], "done")
}

func TestBadConfigIsReported(t *testing.T) {
	dir := inTempDir(t)
	cfg := filepath.Join(dir, "promovideo.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("batch: 0\n"), 0644))
	_, err := runCLI(t, "-c", cfg, "inspect")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch")
}
