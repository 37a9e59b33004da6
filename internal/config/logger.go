package config

import (
	"fmt"
	"os"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// AppName names the root logger
const AppName = "promovideo"

type LoggerConfig struct {
	Level       string `yaml:"level"` // none | normal | debug
	Destination string `yaml:"destination,omitempty"`
	Mode        string `yaml:"mode,omitempty"` // append | overwrite
}

type LoggingConfig struct {
	File    LoggerConfig `yaml:"file"`
	Console LoggerConfig `yaml:"console"`
}

// Validate checks the level and mode names
func (conf LoggingConfig) Validate() error {
	var errs error
	for name, l := range map[string]LoggerConfig{"console": conf.Console, "file": conf.File} {
		switch l.Level {
		case "", "none", "normal", "debug":
		default:
			errs = multierr.Append(errs, fmt.Errorf("%w: logging.%s.level %q", ErrConfig, name, l.Level))
		}
		switch l.Mode {
		case "", "append", "overwrite":
		default:
			errs = multierr.Append(errs, fmt.Errorf("%w: logging.%s.mode %q", ErrConfig, name, l.Mode))
		}
	}
	if (conf.File.Level == "normal" || conf.File.Level == "debug") && conf.File.Destination == "" {
		errs = multierr.Append(errs, fmt.Errorf("%w: logging.file.destination is required", ErrConfig))
	}
	return errs
}

func levelEnabler(level string) (zapcore.LevelEnabler, bool) {
	switch level {
	case "debug":
		return zap.NewAtomicLevelAt(zap.DebugLevel), true
	case "normal":
		return zap.NewAtomicLevelAt(zap.InfoLevel), true
	}
	return nil, false
}

// Prepare returns our standard logger - configured zap logger for use by the program.
func (conf *LoggingConfig) Prepare() (*zap.Logger, error) {
	var cores []zapcore.Core

	// Console: info and debug go to stdout, errors to stderr
	if lvl, ok := levelEnabler(conf.Console.Level); ok {
		ec := zap.NewDevelopmentEncoderConfig()
		ec.EncodeCaller = nil
		ec.TimeKey = zapcore.OmitKey
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
		enc := zapcore.NewConsoleEncoder(ec)

		low := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
			return lvl.Enabled(l) && l < zapcore.ErrorLevel
		})
		high := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
			return l >= zapcore.ErrorLevel
		})
		cores = append(cores,
			zapcore.NewCore(enc, zapcore.Lock(os.Stdout), low),
			zapcore.NewCore(enc, zapcore.Lock(os.Stderr), high),
		)
	}

	// File
	if lvl, ok := levelEnabler(conf.File.Level); ok {
		flags := os.O_CREATE | os.O_WRONLY
		if conf.File.Mode == "overwrite" {
			flags |= os.O_TRUNC
		} else {
			flags |= os.O_APPEND
		}
		f, err := os.OpenFile(conf.File.Destination, flags, 0644)
		if err != nil {
			return nil, fmt.Errorf("unable to access file log destination (%s): %w", conf.File.Destination, err)
		}
		enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		cores = append(cores, zapcore.NewCore(enc, zapcore.Lock(f), lvl))
	}

	if len(cores) == 0 {
		return zap.NewNop(), nil
	}
	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()).Named(AppName), nil
}
