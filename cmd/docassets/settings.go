package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/alnah/go-docassets/internal/config"
	"github.com/alnah/go-docassets/internal/hints"
)

// ErrInvalidLogLevel is returned for a level slog cannot parse.
var ErrInvalidLogLevel = errors.New("invalid log level")

// loadSettings builds the effective configuration for a command:
// defaults, then the config file, then DOCASSETS_* variables, then flags.
func loadSettings(common *commonFlags, env *Environment) (*config.Config, error) {
	envCfg := loadEnvConfig(env.Getenv)
	if !common.quiet {
		warnUnknownEnvVars(env.Stderr, env.Environ())
	}

	name := common.config
	if name == "" {
		name = envCfg.ConfigPath
	}

	cfg := config.DefaultConfig()
	if name != "" {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			if errors.Is(err, config.ErrConfigNotFound) {
				return nil, fmt.Errorf("loading config: %w%s", err, hints.ForConfigNotFound(config.SearchPaths(name)))
			}
			return nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	applyEnvConfig(envCfg, cfg)

	switch {
	case common.logLevel != "":
		cfg.Log.Level = common.logLevel
	case common.verbose && atLeastWarn(cfg.Log.Level):
		cfg.Log.Level = "info"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// atLeastWarn reports whether level hides info records.
func atLeastWarn(level string) bool {
	switch strings.ToLower(level) {
	case "warn", "error":
		return true
	}
	return false
}

// newLogger returns the diagnostic logger described by lc, writing to w.
func newLogger(w io.Writer, lc config.LogConfig) (*slog.Logger, error) {
	var level slog.Level
	if lc.Level != "" {
		if err := level.UnmarshalText([]byte(lc.Level)); err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidLogLevel, lc.Level)
		}
	} else {
		level = slog.LevelWarn
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(lc.Format, config.LogFormatJSON) {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}
