package config

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

var ErrConfig = errors.New("invalid configuration")

// Config holds the render settings. The timeline itself lives in the
// scenario file, never here.
type Config struct {
	ScenarioPath string `yaml:"scenario,omitempty"`
	ScenariosDir string `yaml:"scenarios_dir,omitempty"`
	OutputPath   string `yaml:"output"`

	Workers int `yaml:"workers"`
	Batch   int `yaml:"batch"`
	// From and To bound the rendered frames; To == 0 renders to the end
	From int `yaml:"from,omitempty"`
	To   int `yaml:"to,omitempty"`

	ShowStats    bool   `yaml:"show_stats"`
	BenchmarkLog string `yaml:"benchmark_log,omitempty"`
	BuildVersion string `yaml:"-"`

	Logging LoggingConfig `yaml:"logging"`
	Preview PreviewConfig `yaml:"preview"`
}

// PreviewConfig controls the storyboard contact sheet
type PreviewConfig struct {
	Output    string `yaml:"output"`
	Every     int    `yaml:"every"` // sample one frame out of Every
	Columns   int    `yaml:"columns"`
	TileWidth int    `yaml:"tile_width"`
}

// Default returns the configuration used when no file is given. Workers is
// left at 0 and filled from the host at startup.
func Default() *Config {
	return &Config{
		ScenariosDir: "scenarios",
		OutputPath:   "output/frames.jsonl",
		Batch:        64,
		BenchmarkLog: "benchmark.log",
		Logging: LoggingConfig{
			Console: LoggerConfig{Level: "normal"},
			File:    LoggerConfig{Level: "none", Mode: "append"},
		},
		Preview: PreviewConfig{
			Output:    "output/storyboard.png",
			Every:     30,
			Columns:   7,
			TileWidth: 320,
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports every out-of-range setting
func (c *Config) Validate() error {
	var errs error
	check := func(bad bool, format string, args ...any) {
		if bad {
			errs = multierr.Append(errs, fmt.Errorf("%w: "+format, append([]any{ErrConfig}, args...)...))
		}
	}

	check(c.Workers < 0, "workers must be >= 0, got %d", c.Workers)
	check(c.Batch <= 0, "batch must be > 0, got %d", c.Batch)
	check(c.From < 0, "from must be >= 0, got %d", c.From)
	check(c.To != 0 && c.To <= c.From, "to (%d) must be after from (%d)", c.To, c.From)
	check(c.Preview.Every <= 0, "preview.every must be > 0, got %d", c.Preview.Every)
	check(c.Preview.Columns <= 0, "preview.columns must be > 0, got %d", c.Preview.Columns)
	check(c.Preview.TileWidth < 16, "preview.tile_width must be >= 16, got %d", c.Preview.TileWidth)
	errs = multierr.Append(errs, c.Logging.Validate())
	return errs
}

// Write saves the configuration as YAML
func (c *Config) Write(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
