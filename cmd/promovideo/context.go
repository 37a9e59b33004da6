package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/idamadam/promovideo/internal/config"
	"github.com/idamadam/promovideo/internal/director"
	"github.com/idamadam/promovideo/internal/engine"
	"github.com/idamadam/promovideo/internal/system"
)

type commandContext struct {
	configFlag   string
	scenarioFlag string
	logLevelFlag string
	workersFlag  int

	configOnce sync.Once
	config     *config.Config
	log        *zap.Logger
	configErr  error
}

func newCommandContext() *commandContext {
	return &commandContext{}
}

// ensureConfig loads the configuration once and applies the global flags
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, err := config.Load(strings.TrimSpace(c.configFlag))
		if err != nil {
			c.configErr = err
			return
		}
		cfg.BuildVersion = buildVersion
		if c.logLevelFlag != "" {
			cfg.Logging.Console.Level = c.logLevelFlag
		}
		if c.workersFlag > 0 {
			cfg.Workers = c.workersFlag
		}
		if cfg.Workers == 0 {
			cfg.Workers = system.DefaultWorkers()
		}
		if c.scenarioFlag != "" {
			cfg.ScenarioPath = c.scenarioFlag
		}
		if err := cfg.Logging.Validate(); err != nil {
			c.configErr = err
			return
		}

		log, err := cfg.Logging.Prepare()
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.log = log
	})
	return c.config, c.configErr
}

func (c *commandContext) logger() *zap.Logger {
	if c.log == nil {
		return zap.NewNop()
	}
	return c.log
}

func (c *commandContext) close() {
	if c.log != nil {
		_ = c.log.Sync()
	}
}

// loadScenario resolves the scenario to use: an explicit path, the newest
// file in the scenarios directory, or the built-in reference timeline.
func (c *commandContext) loadScenario() (*director.Scenario, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	log := c.logger()

	path := cfg.ScenarioPath
	if path == "" {
		latest, err := director.FindLatestScenario(cfg.ScenariosDir)
		switch {
		case err == nil:
			path = latest
		case errors.Is(err, os.ErrNotExist):
			log.Debug("No scenarios directory", zap.String("dir", cfg.ScenariosDir))
		default:
			log.Debug("No scenario found", zap.Error(err))
		}
	}
	if path == "" {
		log.Info("Using the built-in reference timeline")
		return director.Reference(), nil
	}

	sc, err := director.ReadScenario(path)
	if err != nil {
		return nil, err
	}
	cfg.ScenarioPath = path
	log.Info("Using scenario", zap.String("path", path))
	return sc, nil
}

func (c *commandContext) composition() (*engine.Composition, *director.Scenario, error) {
	sc, err := c.loadScenario()
	if err != nil {
		return nil, nil, err
	}
	comp, err := engine.NewComposition(sc)
	if err != nil {
		return nil, nil, fmt.Errorf("scenario is invalid: %w", err)
	}
	return comp, sc, nil
}
