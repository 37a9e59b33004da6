package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "promovideo.yaml")
	data := []byte("workers: 3\nfrom: 10\nto: 100\npreview:\n  every: 15\n")
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, 10, cfg.From)
	assert.Equal(t, 100, cfg.To)
	assert.Equal(t, 15, cfg.Preview.Every)
	// untouched keys keep their defaults
	assert.Equal(t, 7, cfg.Preview.Columns)
	assert.Equal(t, "output/frames.jsonl", cfg.OutputPath)
}

func TestLoadRejectsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	data := []byte("workers: -1\nbatch: 0\nto: 5\nfrom: 9\nlogging:\n  console:\n    level: loud\n")
	require.NoError(t, os.WriteFile(path, data, 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfig)
	for _, want := range []string{"workers", "batch", "to (5)", "level"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := Default()
	cfg.Workers = 8
	require.NoError(t, cfg.Write(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestPrepareLogger(t *testing.T) {
	conf := LoggingConfig{Console: LoggerConfig{Level: "none"}, File: LoggerConfig{Level: "none"}}
	log, err := conf.Prepare()
	require.NoError(t, err)
	require.NotNil(t, log)

	dest := filepath.Join(t.TempDir(), "run.log")
	conf.File = LoggerConfig{Level: "debug", Destination: dest, Mode: "overwrite"}
	log, err = conf.Prepare()
	require.NoError(t, err)
	log.Debug("hello")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
}
