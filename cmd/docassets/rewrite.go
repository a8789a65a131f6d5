package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/alnah/go-docassets"
	"github.com/alnah/go-docassets/internal/config"
	"github.com/alnah/go-docassets/internal/hints"
	"github.com/alnah/go-docassets/internal/logfields"
)

// runRewrite rewrites every discovered document into the output root and
// relocates their assets into <output>/assets.
func runRewrite(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseRewriteFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if err := validateWorkers(flags.workers); err != nil {
		return err
	}

	cfg, err := loadSettings(&flags.common, env)
	if err != nil {
		return err
	}
	mergeRewriteFlags(flags, cfg)

	logger, err := newLogger(env.Stderr, cfg.Log)
	if err != nil {
		return err
	}

	inputPath, err := resolveInputPath(positional, cfg)
	if err != nil {
		return err
	}
	outputRoot := resolveOutputRoot(flags.output, cfg)

	docs, err := discoverDocuments(inputPath, outputRoot, cfg.Input.Include, cfg.Input.Exclude)
	if err != nil {
		return fmt.Errorf("discovering documents: %w", err)
	}
	if len(docs) == 0 {
		return fmt.Errorf("%w in %s%s", ErrNoDocuments, inputPath, hints.ForNoDocuments(cfg.Input.Include))
	}

	eng, err := newRewriteEngine(outputRoot, cfg.Relocation.Serialize, logger)
	if err != nil {
		return err
	}

	workers := docassets.ResolveWorkers(cfg.Relocation.Workers)
	logger.Info("rewriting documents",
		logfields.Count(len(docs)),
		logfields.Dest(eng.AssetsDir()),
		slog.Int("workers", workers))

	start := env.Now()
	results := rewriteBatch(ctx, eng, docs, workers)
	summary := printResults(results, flags.common.quiet, flags.common.verbose, env)
	logger.Info("rewrite finished", logfields.DurationMS(env.Now().Sub(start).Milliseconds()))

	if summary.Failed > 0 {
		return fmt.Errorf("%d document(s) failed", summary.Failed)
	}
	if flags.strict && summary.Diagnostics > 0 {
		return fmt.Errorf("%w: %d reference(s)", ErrDiagnostics, summary.Diagnostics)
	}
	return nil
}

// mergeRewriteFlags applies rewrite flags over the loaded config.
func mergeRewriteFlags(flags *rewriteFlags, cfg *config.Config) {
	if flags.workers > 0 {
		cfg.Relocation.Workers = flags.workers
	}
	if flags.noSerialize {
		cfg.Relocation.Serialize = false
	}
}

// newRewriteEngine creates <root>/assets and an engine bound to it.
func newRewriteEngine(root string, serialize bool, logger *slog.Logger) (*docassets.Engine, error) {
	assetsDir := filepath.Join(root, docassets.AssetsDirName)
	if err := os.MkdirAll(assetsDir, dirPermissions); err != nil {
		return nil, fmt.Errorf("creating assets directory: %w%s", err, hints.ForOutputDirectory())
	}

	opts := []docassets.Option{
		docassets.WithAssetsDir(assetsDir),
		docassets.WithLogger(logger),
	}
	if serialize {
		opts = append(opts, docassets.WithSerializedCopies())
	}
	return docassets.NewEngine(opts...)
}

// elapsedSince returns the time since start, rounded to milliseconds.
func elapsedSince(env *Environment, start time.Time) time.Duration {
	return env.Now().Sub(start).Round(time.Millisecond)
}
