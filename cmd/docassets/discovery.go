package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/alnah/go-docassets/internal/config"
	"github.com/alnah/go-docassets/internal/fileutil"
)

// Sentinel errors for document discovery.
var (
	ErrNoInput            = errors.New("no input specified")
	ErrNoDocuments        = errors.New("no documents found")
	ErrInvalidExtension   = errors.New("document must have a .md, .markdown or .typ extension")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
)

// documentExtensions are accepted for a single-file input.
var documentExtensions = []string{".md", ".markdown", ".typ"}

// Document is a single file to rewrite.
type Document struct {
	InputPath  string
	OutputPath string
}

// discoverDocuments lists the documents under inputPath and where each one
// is written below outputRoot. A file input is taken as is; a directory is
// walked and filtered with the include and exclude globs, matched against
// slash-separated paths relative to inputPath. outputRoot is never descended
// into, so rewriting into a subdirectory of the input does not pick up
// earlier output.
func discoverDocuments(inputPath, outputRoot string, include, exclude []string) ([]Document, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		if err := validateDocumentExtension(inputPath); err != nil {
			return nil, err
		}
		doc := Document{
			InputPath:  inputPath,
			OutputPath: filepath.Join(outputRoot, filepath.Base(inputPath)),
		}
		if err := checkNotInPlace(doc); err != nil {
			return nil, err
		}
		return []Document{doc}, nil
	}

	absOutput, _ := filepath.Abs(outputRoot)

	var docs []Document
	err = fs.WalkDir(os.DirFS(inputPath), ".", func(rel string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("scanning %s: %w", rel, err)
		}
		native := filepath.Join(inputPath, filepath.FromSlash(rel))

		if d.IsDir() {
			if rel == "." {
				return nil
			}
			if matchAny(exclude, rel) {
				return fs.SkipDir
			}
			if abs, err := filepath.Abs(native); err == nil && fileutil.IsUnderDir(abs, absOutput) {
				return fs.SkipDir
			}
			return nil
		}

		if !matchAny(include, rel) || matchAny(exclude, rel) {
			return nil
		}
		doc := Document{
			InputPath:  native,
			OutputPath: filepath.Join(outputRoot, filepath.FromSlash(rel)),
		}
		if err := checkNotInPlace(doc); err != nil {
			return err
		}
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return docs, nil
}

// checkNotInPlace rejects a document that would be written over itself,
// as with "rewrite docs -o docs".
func checkNotInPlace(doc Document) error {
	if canonicalPath(doc.InputPath) == canonicalPath(doc.OutputPath) {
		return fmt.Errorf("%w: output %s would overwrite the input document; choose another output root",
			ErrUsage, doc.OutputPath)
	}
	return nil
}

// canonicalPath returns p made absolute with symlinks resolved. A path that
// does not exist yet is resolved through its parent directory.
func canonicalPath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.Clean(p)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	if dir, err := filepath.EvalSymlinks(filepath.Dir(abs)); err == nil {
		return filepath.Join(dir, filepath.Base(abs))
	}
	return abs
}

// matchAny reports whether rel matches one of the doublestar patterns.
// Patterns were validated at config load, so match errors count as misses.
func matchAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// resolveInputPath picks the positional argument, else input.defaultDir.
func resolveInputPath(args []string, cfg *config.Config) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if cfg.Input.DefaultDir != "" {
		return cfg.Input.DefaultDir, nil
	}
	return "", ErrNoInput
}

// defaultOutputRoot is used when neither -o nor output.defaultDir is set.
const defaultOutputRoot = "out"

// resolveOutputRoot picks -o, else output.defaultDir, else ./out.
func resolveOutputRoot(flagOutput string, cfg *config.Config) string {
	if flagOutput != "" {
		return flagOutput
	}
	if cfg.Output.DefaultDir != "" {
		return cfg.Output.DefaultDir
	}
	return defaultOutputRoot
}

// validateDocumentExtension checks a single-file input's extension.
func validateDocumentExtension(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if !slices.Contains(documentExtensions, ext) {
		return fmt.Errorf("%w: got %q", ErrInvalidExtension, filepath.Ext(path))
	}
	return nil
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > config.MaxWorkers {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, config.MaxWorkers)
	}
	return nil
}
