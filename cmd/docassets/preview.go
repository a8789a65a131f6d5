package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alnah/go-docassets"
	"github.com/alnah/go-docassets/internal/fileutil"
	"github.com/alnah/go-docassets/internal/logfields"
)

// previewPattern names fresh preview directories under the system temp dir.
const previewPattern = "docassets-preview-*"

// stager stages one document into a preview directory.
type stager struct {
	docPath   string // absolute
	dir       string // preview root
	serialize bool
	logger    *slog.Logger
}

// runPreview stages a single document and prints the staged path.
func runPreview(_ context.Context, args []string, env *Environment) error {
	flags, positional, err := parseStageFlags("preview", args, env.Stderr)
	if err != nil {
		return err
	}

	s, err := newStager(flags, positional, env)
	if err != nil {
		return err
	}

	staged, res, err := s.stage()
	if err != nil {
		return err
	}
	reportDiagnostics(env.Stderr, s.docPath, res.Diagnostics)
	fmt.Fprintln(env.Stdout, staged)

	if flags.strict && res.HasDiagnostics() {
		return fmt.Errorf("%w: %d reference(s)", ErrDiagnostics, len(res.Diagnostics))
	}
	return nil
}

// newStager validates the single document argument, loads settings and
// prepares the preview directory.
func newStager(flags *stageFlags, positional []string, env *Environment) (*stager, error) {
	if len(positional) != 1 {
		return nil, fmt.Errorf("%w: expected exactly one document, got %d", ErrUsage, len(positional))
	}
	if err := validateDocumentExtension(positional[0]); err != nil {
		return nil, err
	}
	docPath, err := filepath.Abs(positional[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadDocument, err)
	}
	if !fileutil.FileExists(docPath) {
		return nil, fmt.Errorf("%w: %s: %w", ErrReadDocument, positional[0], os.ErrNotExist)
	}

	cfg, err := loadSettings(&flags.common, env)
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(env.Stderr, cfg.Log)
	if err != nil {
		return nil, err
	}

	dir, err := previewDir(flags.dir)
	if err != nil {
		return nil, err
	}
	if containsDir(dir, filepath.Dir(docPath)) {
		return nil, fmt.Errorf("%w: preview directory %s contains the document's directory; staging could overwrite sources",
			ErrUsage, dir)
	}

	return &stager{docPath: docPath, dir: dir, serialize: cfg.Relocation.Serialize, logger: logger}, nil
}

// previewDir creates dir, or a fresh temp directory when dir is empty.
func previewDir(dir string) (string, error) {
	if dir == "" {
		tmp, err := os.MkdirTemp("", previewPattern)
		if err != nil {
			return "", fmt.Errorf("%w: creating preview directory: %v", ErrWriteDocument, err)
		}
		return tmp, nil
	}
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return "", fmt.Errorf("%w: creating preview directory: %v", ErrWriteDocument, err)
	}
	return filepath.Abs(dir)
}

// containsDir reports whether dir is parent or an ancestor of it, after
// resolving symlinks in both.
func containsDir(parent, dir string) bool {
	return fileutil.IsUnderDir(canonicalPath(dir), canonicalPath(parent))
}

// stage rewrites the document into <dir>/<name> with its assets copied into
// <dir>/assets, and returns the staged file path.
func (s *stager) stage() (string, *docassets.Result, error) {
	eng, err := newRewriteEngine(s.dir, s.serialize, s.logger)
	if err != nil {
		return "", nil, err
	}

	content, err := os.ReadFile(s.docPath) // #nosec G304 -- user-provided document
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrReadDocument, err)
	}

	res := eng.Rewrite(docassets.Input{Text: string(content), BaseDir: filepath.Dir(s.docPath)})

	staged := filepath.Join(s.dir, filepath.Base(s.docPath))
	if err := fileutil.WriteFileAtomic(staged, res.Text); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrWriteDocument, err)
	}

	s.logger.Info("document staged",
		logfields.Source(s.docPath),
		logfields.Dest(staged),
		logfields.Count(len(res.Copied)))
	return staged, res, nil
}
