package pipeline

import (
	"path/filepath"
	"strings"

	"github.com/alnah/go-docassets/internal/fileutil"
)

// ManagedPrefix is the root-relative directory that relocated assets are
// referenced from, and the prefix of references already inside it.
const ManagedPrefix = "assets"

// externalPrefixes mark references that are never resolved or copied.
var externalPrefixes = []string{"http://", "https://", "data:", "file:"}

// IsExternal reports whether raw points at a URL or a data/file scheme.
// The comparison is case-insensitive and ignores surrounding whitespace.
func IsExternal(raw string) bool {
	lower := strings.ToLower(strings.TrimSpace(raw))
	for _, prefix := range externalPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// LocationKind classifies the outcome of resolving a reference.
type LocationKind int

const (
	// External references are left exactly as written.
	External LocationKind = iota
	// RootRelative references already live under the managed output root.
	RootRelative
	// Copied references were relocated into the managed assets directory.
	Copied
	// Absolute references fall back to their absolute path because no
	// managed assets directory is configured.
	Absolute
)

// String returns the name used in logs and listings.
func (k LocationKind) String() string {
	switch k {
	case External:
		return "external"
	case RootRelative:
		return "root-relative"
	case Copied:
		return "copied"
	case Absolute:
		return "absolute"
	default:
		return "unknown"
	}
}

// Resolution is the result of resolving one reference.
type Resolution struct {
	Kind LocationKind
	// Ref is the text to substitute for the reference path.
	Ref string
	// Source is the absolute source path; empty for external references
	// and for references already written under assets/.
	Source string
	// Dest is the file written for Copied references.
	Dest string
}

// Resolver turns raw reference paths into their rewritten form.
type Resolver struct {
	assetsDir   string
	contentRoot string
	relocator   *Relocator
}

// NewResolver creates a Resolver. An empty assetsDir means no managed assets
// directory exists: local references resolve to absolute paths and nothing is
// copied. A nil relocator is replaced by an unlocked one for assetsDir.
func NewResolver(assetsDir string, relocator *Relocator) *Resolver {
	r := &Resolver{assetsDir: assetsDir}
	if assetsDir == "" {
		return r
	}

	r.contentRoot = canonicalize(filepath.Dir(filepath.Clean(assetsDir)))
	r.relocator = relocator
	if r.relocator == nil {
		r.relocator = NewRelocator(assetsDir)
	}
	return r
}

// AssetsDir returns the managed assets directory, or "" when there is none.
func (r *Resolver) AssetsDir() string {
	return r.assetsDir
}

// ContentRoot returns the canonical parent of the managed assets directory,
// or "" when there is none.
func (r *Resolver) ContentRoot() string {
	return r.contentRoot
}

// Resolve resolves raw against baseDir. When quote is true the result is
// wrapped in <...> if the source was wrapped or the result contains a space
// or a parenthesis, as Markdown link destinations require.
//
// A missing or unreadable source never fails resolution by itself; the only
// error is a failed copy into the managed assets directory (ErrCopyAsset).
func (r *Resolver) Resolve(baseDir, raw string, quote bool) (Resolution, error) {
	normalized, hadAngle, external := normalizeReference(raw)
	if external {
		return Resolution{Kind: External, Ref: raw}, nil
	}

	wrap := func(s string) string {
		return wrapDestination(s, quote, hadAngle)
	}

	if isManaged(normalized) {
		return Resolution{Kind: RootRelative, Ref: wrap("/" + normalized)}, nil
	}

	abs := absolutePath(baseDir, normalized)

	if r.contentRoot != "" && fileutil.IsUnderDir(abs, r.contentRoot) {
		if rel, err := filepath.Rel(r.contentRoot, abs); err == nil {
			return Resolution{Kind: RootRelative, Ref: wrap(rootRelative(rel)), Source: abs}, nil
		}
	}

	if r.relocator != nil {
		name, err := r.relocator.Relocate(abs)
		if err != nil {
			return Resolution{Kind: Copied, Source: abs}, err
		}
		return Resolution{
			Kind:   Copied,
			Ref:    wrap("/" + ManagedPrefix + "/" + name),
			Source: abs,
			Dest:   filepath.Join(r.relocator.Dir(), name),
		}, nil
	}

	return Resolution{Kind: Absolute, Ref: wrap(filepath.ToSlash(abs)), Source: abs}, nil
}

// LocalPath returns the canonical absolute path raw points at from baseDir,
// without consulting or writing any managed directory. ok is false for
// external references.
func LocalPath(baseDir, raw string) (abs string, ok bool) {
	normalized, _, external := normalizeReference(raw)
	if external {
		return "", false
	}
	return absolutePath(baseDir, normalized), true
}

// ManagedPath returns the root-relative form of a reference already written
// under assets/, such as "/assets/img/a.png". Such references are never
// resolved against the document's directory. ok is false for any other
// reference.
func ManagedPath(raw string) (ref string, ok bool) {
	normalized, _, external := normalizeReference(raw)
	if external || !isManaged(normalized) {
		return "", false
	}
	return "/" + normalized, true
}

// isManaged reports a normalized reference that is assets or below it.
func isManaged(normalized string) bool {
	return normalized == ManagedPrefix || strings.HasPrefix(normalized, ManagedPrefix+"/")
}

// normalizeReference trims raw, removes a <...> wrapper and converts
// backslashes to forward slashes. external reports a URL or data/file scheme,
// checked both before and after unwrapping.
func normalizeReference(raw string) (normalized string, hadAngle, external bool) {
	if IsExternal(raw) {
		return "", false, true
	}

	trimmed := strings.TrimSpace(raw)
	unwrapped := trimmed
	if isAngleWrapped(trimmed) {
		unwrapped, hadAngle = trimmed[1:len(trimmed)-1], true
	}
	if IsExternal(unwrapped) {
		return "", hadAngle, true
	}

	return strings.ReplaceAll(unwrapped, `\`, "/"), hadAngle, false
}

// absolutePath joins a forward-slash reference onto baseDir unless it is
// already absolute, then canonicalizes it.
func absolutePath(baseDir, normalized string) string {
	native := filepath.FromSlash(normalized)
	if isAbsoluteReference(normalized) {
		return canonicalize(native)
	}
	return canonicalize(filepath.Join(baseDir, native))
}

// isAbsoluteReference accepts native absolute paths and drive-letter forms
// such as C:/img/a.png on every platform.
func isAbsoluteReference(p string) bool {
	if filepath.IsAbs(filepath.FromSlash(p)) {
		return true
	}
	return len(p) >= 2 && p[1] == ':'
}

// canonicalize resolves symlinks, falling back to the cleaned path when the
// target does not exist or cannot be read.
func canonicalize(p string) string {
	if resolved, err := filepath.EvalSymlinks(p); err == nil {
		return resolved
	}
	return filepath.Clean(p)
}

// rootRelative turns a path relative to the content root into "/a/b".
func rootRelative(rel string) string {
	if rel == "." {
		return "/"
	}
	return "/" + strings.TrimPrefix(filepath.ToSlash(rel), "/")
}

// wrapDestination applies Markdown's <...> escape when needed.
func wrapDestination(s string, quote, hadAngle bool) string {
	if quote && (hadAngle || strings.ContainsAny(s, " ()")) {
		return "<" + s + ">"
	}
	return s
}
