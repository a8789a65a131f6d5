package docassets

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/alnah/go-docassets/internal/fileutil"
	"github.com/alnah/go-docassets/internal/logfields"
	"github.com/alnah/go-docassets/internal/pipeline"
)

// Engine rewrites asset references in documents.
// Create with NewEngine. An Engine is safe for concurrent use.
type Engine struct {
	cfg      engineConfig
	logger   *slog.Logger
	resolver *pipeline.Resolver
	rewriter *pipeline.Rewriter
}

// NewEngine creates an Engine. Returns ErrInvalidAssetsDir when the assets
// directory given with WithAssetsDir does not exist or is not a directory.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{}
	for _, opt := range opts {
		opt(&e.cfg)
	}

	e.logger = e.cfg.logger
	if e.logger == nil {
		e.logger = slog.New(slog.DiscardHandler)
	}

	var relocator *pipeline.Relocator
	if e.cfg.assetsDir != "" {
		dir, err := validateAssetsDir(e.cfg.assetsDir)
		if err != nil {
			return nil, err
		}
		e.cfg.assetsDir = dir

		var ropts []pipeline.RelocatorOption
		if e.cfg.serialize {
			ropts = append(ropts, pipeline.WithLock(pipeline.DirLock(dir)))
		}
		relocator = pipeline.NewRelocator(dir, ropts...)
	}

	e.resolver = pipeline.NewResolver(e.cfg.assetsDir, relocator)
	e.rewriter = pipeline.NewRewriter(e.resolver, e.logger)
	return e, nil
}

// AssetsDir returns the canonical managed assets directory, or "" if none.
func (e *Engine) AssetsDir() string {
	return e.cfg.assetsDir
}

// ContentRoot returns the parent of the assets directory, or "" if none.
func (e *Engine) ContentRoot() string {
	return e.resolver.ContentRoot()
}

// Rewrite rewrites every recognized reference in input.Text. It never fails:
// references whose asset cannot be copied are kept and listed in
// Result.Diagnostics.
func (e *Engine) Rewrite(input Input) *Result {
	start := time.Now()
	baseDir := absBaseDir(input.BaseDir)

	out := e.rewriter.Rewrite(input.Text, baseDir)

	res := &Result{Text: out.Text}
	if len(out.Copies) > 0 {
		res.Copied = make([]CopiedAsset, len(out.Copies))
		for i, c := range out.Copies {
			res.Copied[i] = CopiedAsset(c)
		}
	}
	if len(out.Diagnostics) > 0 {
		res.Diagnostics = make([]Diagnostic, len(out.Diagnostics))
		for i, d := range out.Diagnostics {
			res.Diagnostics[i] = Diagnostic{Syntax: toSyntax(d.Kind), RawPath: d.RawPath, Err: d.Err}
		}
	}

	e.logger.Debug("document rewritten",
		logfields.Path(baseDir),
		logfields.Count(len(res.Copied)),
		logfields.DurationMS(time.Since(start).Milliseconds()))
	return res
}

// References lists the references in text in rewrite order. It does not
// touch the filesystem.
func (e *Engine) References(text string) []Reference {
	return toReferences(pipeline.Scan(text))
}

// Inspect lists the references in input.Text along with the absolute path
// each local one resolves to and whether that file exists. References under
// assets/ are reported as Managed with their root-relative path, matching
// what Rewrite emits. Nothing is copied.
func (e *Engine) Inspect(input Input) []ReferenceInfo {
	baseDir := absBaseDir(input.BaseDir)
	refs := e.References(input.Text)

	infos := make([]ReferenceInfo, len(refs))
	for i, ref := range refs {
		info := ReferenceInfo{Reference: ref}
		if managed, ok := pipeline.ManagedPath(ref.RawPath); ok {
			info.Managed = true
			info.Path = managed
		} else if path, ok := pipeline.LocalPath(baseDir, ref.RawPath); ok {
			info.Path = path
			info.Exists = fileutil.FileExists(path)
		} else {
			info.External = true
		}
		infos[i] = info
	}
	return infos
}

// validateAssetsDir returns the canonical absolute form of dir.
func validateAssetsDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidAssetsDir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidAssetsDir, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", ErrInvalidAssetsDir, dir)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	return abs, nil
}

// absBaseDir makes baseDir absolute, keeping it unchanged if that fails.
func absBaseDir(baseDir string) string {
	if baseDir == "" {
		baseDir = "."
	}
	if abs, err := filepath.Abs(baseDir); err == nil {
		return abs
	}
	return baseDir
}

func toSyntax(k pipeline.Kind) Syntax {
	switch k {
	case pipeline.HTMLImage:
		return SyntaxHTML
	case pipeline.RawCall:
		return SyntaxRawCall
	default:
		return SyntaxMarkdown
	}
}

func toReferences(refs []pipeline.Reference) []Reference {
	out := make([]Reference, len(refs))
	for i, r := range refs {
		out[i] = Reference{
			Syntax:       toSyntax(r.Kind),
			RawPath:      r.RawPath,
			Attributes:   r.Attributes,
			AngleWrapped: r.WasAngleWrapped,
			Start:        r.Span.Start,
			End:          r.Span.End,
		}
	}
	return out
}
