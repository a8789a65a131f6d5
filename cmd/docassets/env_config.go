package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/alnah/go-docassets/internal/config"
)

// envPrefix marks the variables read by the CLI.
const envPrefix = "DOCASSETS_"

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string // DOCASSETS_CONFIG: config file name or path
	InputDir   string // DOCASSETS_INPUT_DIR: default input directory
	OutputDir  string // DOCASSETS_OUTPUT_DIR: default output directory
	Workers    int    // DOCASSETS_WORKERS: parallel workers (0 = unset)
	LogLevel   string // DOCASSETS_LOG_LEVEL: debug, info, warn, error
}

// knownEnvVars lists valid DOCASSETS_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"DOCASSETS_CONFIG":     true,
	"DOCASSETS_INPUT_DIR":  true,
	"DOCASSETS_OUTPUT_DIR": true,
	"DOCASSETS_WORKERS":    true,
	"DOCASSETS_LOG_LEVEL":  true,
}

// loadEnvConfig reads configuration through getenv.
// Malformed or non-positive DOCASSETS_WORKERS values are ignored.
func loadEnvConfig(getenv func(string) string) *envConfig {
	cfg := &envConfig{
		ConfigPath: getenv("DOCASSETS_CONFIG"),
		InputDir:   getenv("DOCASSETS_INPUT_DIR"),
		OutputDir:  getenv("DOCASSETS_OUTPUT_DIR"),
		LogLevel:   getenv("DOCASSETS_LOG_LEVEL"),
	}

	if workers := getenv("DOCASSETS_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars writes a warning for each unrecognized DOCASSETS_*
// variable in environ, in sorted order.
func warnUnknownEnvVars(w io.Writer, environ []string) {
	var unknown []string
	for _, kv := range environ {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, envPrefix) && !knownEnvVars[name] {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	for _, name := range unknown {
		fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
	}
}

// applyEnvConfig overlays environment values onto a loaded config.
// Flags are applied afterwards, giving: CLI flags > env vars > config file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.InputDir != "" {
		cfg.Input.DefaultDir = env.InputDir
	}
	if env.OutputDir != "" {
		cfg.Output.DefaultDir = env.OutputDir
	}
	if env.Workers > 0 {
		cfg.Relocation.Workers = env.Workers
	}
	if env.LogLevel != "" {
		cfg.Log.Level = env.LogLevel
	}
}
