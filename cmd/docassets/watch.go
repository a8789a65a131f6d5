package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/alnah/go-docassets/internal/logfields"
)

// watchDebounce coalesces the burst of events an editor save produces.
const watchDebounce = 200 * time.Millisecond

// runWatch stages a document like preview, then restages it after every
// change until the context is canceled.
func runWatch(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseStageFlags("watch", args, env.Stderr)
	if err != nil {
		return err
	}

	s, err := newStager(flags, positional, env)
	if err != nil {
		return err
	}

	restage := func() {
		start := env.Now()
		staged, res, err := s.stage()
		if err != nil {
			fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", s.docPath, err)
			return
		}
		reportDiagnostics(env.Stderr, s.docPath, res.Diagnostics)
		if !flags.common.quiet {
			fmt.Fprintf(env.Stdout, "Staged %s (%v)\n", staged, elapsedSince(env, start))
		}
	}

	restage()
	if !flags.common.quiet {
		fmt.Fprintf(env.Stdout, "Watching %s (Ctrl+C to stop)\n", s.docPath)
	}

	return watchDocument(ctx, s.docPath, watchDebounce, restage, s.logger)
}

// watchDocument calls onChange once per burst of writes to docPath, waiting
// for debounce of quiet after the last event. It watches the parent
// directory so editors that save by renaming a temp file are seen too.
// Returns nil when ctx is canceled.
func watchDocument(ctx context.Context, docPath string, debounce time.Duration, onChange func(), logger *slog.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(docPath)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(docPath), err)
	}
	logger.Debug("watcher started", logfields.Path(docPath))

	var timer *time.Timer
	var fire <-chan time.Time

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			fire = timer.C
			return
		}
		timer.Reset(debounce)
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Debug("watcher stopped", logfields.Path(docPath))
			return nil

		case <-fire:
			onChange()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != docPath {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			logger.Debug("document changed", logfields.Path(docPath), slog.String("op", ev.Op.String()))
			schedule()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", logfields.Error(watchErr))
		}
	}
}
