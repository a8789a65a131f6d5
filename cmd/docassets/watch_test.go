package main

// Notes:
// - Filesystem notification latency varies by platform, so the test keeps
//   writing until the callback fires and only fails after a generous timeout.

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// TestWatchDocument - Change detection and shutdown
// ---------------------------------------------------------------------------

func TestWatchDocument(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	doc := filepath.Join(dir, "guide.md")
	sibling := filepath.Join(dir, "other.md")
	writeFile(t, doc, "v0")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	changed := make(chan struct{}, 16)
	onChange := func() {
		calls.Add(1)
		changed <- struct{}{}
	}

	done := make(chan error, 1)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	go func() {
		done <- watchDocument(ctx, doc, 20*time.Millisecond, onChange, logger)
	}()

	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()

loop:
	for i := 0; ; i++ {
		select {
		case <-changed:
			break loop
		case <-tick.C:
			// Sibling writes must never trigger the callback on their own.
			writeFile(t, sibling, "noise")
			if err := os.WriteFile(doc, []byte{byte('a' + i%26)}, 0o600); err != nil {
				t.Fatal(err)
			}
		case <-deadline:
			t.Fatal("onChange not called within 5s")
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("watchDocument() = %v, want nil on cancel", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watchDocument did not return after cancel")
	}
}

func TestWatchDocument_MissingDir(t *testing.T) {
	t.Parallel()

	doc := filepath.Join(t.TempDir(), "gone", "guide.md")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	err := watchDocument(context.Background(), doc, time.Millisecond, func() {}, logger)
	if err == nil {
		t.Error("expected error for a nonexistent directory")
	}
}
