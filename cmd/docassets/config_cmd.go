package main

import (
	"context"
	"fmt"

	"github.com/alnah/go-docassets/internal/yamlutil"
)

// runConfig prints the effective configuration after the config file,
// DOCASSETS_* variables and flags are applied.
func runConfig(_ context.Context, args []string, env *Environment) error {
	f := &commonFlags{}
	fs := newFlagSet("config", env.Stderr, printConfigUsage)
	addCommonFlags(fs, f)

	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if len(positional) != 0 {
		return fmt.Errorf("%w: config takes no arguments", ErrUsage)
	}

	cfg, err := loadSettings(f, env)
	if err != nil {
		return err
	}

	out, err := yamlutil.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	_, err = env.Stdout.Write(out)
	return err
}
