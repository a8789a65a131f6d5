package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/alnah/go-docassets/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Limits on configurable values.
const (
	MaxWorkers      = 64  // upper bound for relocation.workers
	MaxPatterns     = 100 // per include/exclude list
	MaxPatternChars = 512 // single glob length
)

// Log levels and formats accepted by the log section.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

var validLogLevels = []string{"debug", "info", "warn", "error"}

// Config holds all configuration for a relocation run.
type Config struct {
	Input      InputConfig      `yaml:"input"`
	Output     OutputConfig     `yaml:"output"`
	Relocation RelocationConfig `yaml:"relocation"`
	Log        LogConfig        `yaml:"log"`
}

// InputConfig defines where documents are discovered.
type InputConfig struct {
	DefaultDir string   `yaml:"defaultDir"` // Used when no input argument is given
	Include    []string `yaml:"include"`    // doublestar globs, relative to the input dir
	Exclude    []string `yaml:"exclude"`    // applied after Include
}

// OutputConfig defines where rewritten documents go.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Empty = ./out
}

// RelocationConfig tunes the copy phase.
type RelocationConfig struct {
	Serialize bool `yaml:"serialize"` // Lock the assets dir around each collision check and copy
	Workers   int  `yaml:"workers"`   // 0 = auto
}

// LogConfig selects the diagnostic log handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Validate checks value ranges and glob syntax.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	if err := validatePatterns("input.include", c.Input.Include); err != nil {
		return err
	}
	if err := validatePatterns("input.exclude", c.Input.Exclude); err != nil {
		return err
	}

	if c.Relocation.Workers < 0 || c.Relocation.Workers > MaxWorkers {
		return fmt.Errorf("%w: relocation.workers must be between 0 and %d, got %d",
			ErrInvalidValue, MaxWorkers, c.Relocation.Workers)
	}

	if c.Log.Level != "" && !ValidLogLevel(c.Log.Level) {
		return fmt.Errorf("%w: log.level %q (must be one of %s)",
			ErrInvalidValue, c.Log.Level, strings.Join(validLogLevels, ", "))
	}
	switch strings.ToLower(c.Log.Format) {
	case "", LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("%w: log.format %q (must be text or json)", ErrInvalidValue, c.Log.Format)
	}

	return nil
}

// ValidLogLevel reports whether level names a supported log level.
func ValidLogLevel(level string) bool {
	level = strings.ToLower(level)
	for _, l := range validLogLevels {
		if l == level {
			return true
		}
	}
	return false
}

func validatePatterns(field string, patterns []string) error {
	if len(patterns) > MaxPatterns {
		return fmt.Errorf("%w: %s has %d patterns (max %d)", ErrInvalidValue, field, len(patterns), MaxPatterns)
	}
	for i, p := range patterns {
		if p == "" {
			return fmt.Errorf("%w: %s[%d] is empty", ErrInvalidValue, field, i)
		}
		if len(p) > MaxPatternChars {
			return fmt.Errorf("%w: %s[%d] (%d chars, max %d)", ErrInvalidValue, field, i, len(p), MaxPatternChars)
		}
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("%w: %s[%d] %q is not a valid glob", ErrInvalidValue, field, i, p)
		}
	}
	return nil
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Input: InputConfig{
			DefaultDir: "",
			Include:    []string{"**/*.md", "**/*.typ"},
		},
		Output:     OutputConfig{DefaultDir: ""},
		Relocation: RelocationConfig{Serialize: true, Workers: 0},
		Log:        LogConfig{Level: "warn", Format: LogFormatText},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Fields absent from the file keep their DefaultConfig values.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if isFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// SearchPaths lists the files LoadConfig tries for a config name, in order:
// NAME.yaml and NAME.yml in the current directory, then the same two under
// the user config directory (~/.config/go-docassets/ on Linux).
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}

	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, "go-docassets", name+ext))
		}
	}

	return paths
}

// resolveConfigPath returns the first existing file from SearchPaths.
func resolveConfigPath(name string) (string, error) {
	paths := SearchPaths(name)
	for _, p := range paths {
		if fileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(paths, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
