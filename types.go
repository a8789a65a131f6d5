package docassets

import (
	"fmt"
	"log/slog"

	"github.com/alnah/go-docassets/internal/pipeline"
)

// AssetsDirName is the name of the managed assets directory under a content
// root, and the first segment of every relocated reference.
const AssetsDirName = pipeline.ManagedPrefix

// Syntax names the reference form a match was written in.
type Syntax string

// Recognized reference syntaxes.
const (
	SyntaxMarkdown Syntax = "markdown"
	SyntaxHTML     Syntax = "html"
	SyntaxRawCall  Syntax = "raw-call"
)

// Input is one document to rewrite.
type Input struct {
	// Text is the full document source.
	Text string
	// BaseDir is the directory relative references resolve against,
	// normally the document's own directory. Empty means the working directory.
	BaseDir string
}

// Result is the rewritten document and what happened to its references.
type Result struct {
	Text        string
	Copied      []CopiedAsset
	Diagnostics []Diagnostic
}

// HasDiagnostics reports whether any reference was left unchanged because
// its asset could not be copied.
func (r *Result) HasDiagnostics() bool {
	return r != nil && len(r.Diagnostics) > 0
}

// CopiedAsset records one file written into the assets directory.
type CopiedAsset struct {
	// Source is the canonical absolute path that was copied.
	Source string
	// Dest is the file created in the assets directory.
	Dest string
	// Ref is the root-relative reference substituted into the document.
	Ref string
}

// Diagnostic reports a reference kept as written because its asset could
// not be copied. Err wraps ErrAssetCopy.
type Diagnostic struct {
	Syntax  Syntax
	RawPath string
	Err     error
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s %q: %v", d.Syntax, d.RawPath, d.Err)
}

// Reference is an asset reference found in a document.
type Reference struct {
	Syntax Syntax
	// RawPath is the path as written, angle brackets included.
	RawPath string
	// Attributes is the opaque text kept around the path.
	Attributes []string
	// AngleWrapped reports a Markdown destination written as <...>.
	AngleWrapped bool
	// Start and End are the byte offsets of the whole match.
	Start, End int
}

// ReferenceInfo describes where a reference points without touching any
// assets directory.
type ReferenceInfo struct {
	Reference
	External bool
	// Managed reports a reference already written under assets/. Rewrite
	// emits it as /assets/... without touching the filesystem, so Path holds
	// that root-relative form and Exists is not checked.
	Managed bool
	// Path is the canonical absolute source path, the root-relative path for
	// managed references, or empty for externals.
	Path   string
	Exists bool
}

// Option configures an Engine.
type Option func(*engineConfig)

// engineConfig holds internal configuration for Engine.
type engineConfig struct {
	assetsDir string
	serialize bool
	logger    *slog.Logger
}

// WithAssetsDir sets the managed assets directory. It must already exist.
// Without it, local references are rewritten to absolute paths and nothing
// is copied.
func WithAssetsDir(dir string) Option {
	return func(c *engineConfig) {
		c.assetsDir = dir
	}
}

// WithLogger sets the logger used for per-reference events.
// A nil logger discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *engineConfig) {
		c.logger = logger
	}
}

// WithSerializedCopies makes the collision check and copy for the assets
// directory exclusive across every Engine in the process that uses it.
func WithSerializedCopies() Option {
	return func(c *engineConfig) {
		c.serialize = true
	}
}
