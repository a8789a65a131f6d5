package pipeline

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/alnah/go-docassets/internal/fileutil"
)

// ErrCopyAsset is returned when a source file cannot be copied into the
// managed assets directory.
var ErrCopyAsset = errors.New("failed to copy asset")

const (
	// maxStemLength bounds destination filenames; the extension is kept whole.
	maxStemLength = 100

	// disambiguatorLength is the number of hex characters appended on collision.
	disambiguatorLength = 8
)

// dirLocks maps a cleaned directory path to its *sync.Mutex.
var dirLocks sync.Map

// DirLock returns the process-wide mutex guarding relocations into dir.
// Relocators sharing a directory and this lock never race on a filename.
func DirLock(dir string) *sync.Mutex {
	mu, _ := dirLocks.LoadOrStore(filepath.Clean(dir), &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// RelocatorOption configures a Relocator.
type RelocatorOption func(*Relocator)

// WithLock holds l from the destination existence check through the copy.
// Without it the check-then-copy sequence is not atomic: two concurrent
// relocations of different sources to the same new name end with one of the
// two files at that name.
func WithLock(l sync.Locker) RelocatorOption {
	return func(r *Relocator) {
		r.lock = l
	}
}

// withCopyFunc replaces the file copy, for tests.
func withCopyFunc(fn func(src, dst string) error) RelocatorOption {
	return func(r *Relocator) {
		r.copyFile = fn
	}
}

// Relocator copies local assets into a managed directory under
// collision-safe names.
type Relocator struct {
	dir      string
	lock     sync.Locker
	copyFile func(src, dst string) error
}

// NewRelocator creates a Relocator writing into dir. The directory must
// exist; the Relocator creates files in it but never removes any.
func NewRelocator(dir string, opts ...RelocatorOption) *Relocator {
	r := &Relocator{
		dir:      dir,
		copyFile: fileutil.CopyFile,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Dir returns the managed assets directory.
func (r *Relocator) Dir() string {
	return r.dir
}

// Relocate copies absSource into the managed directory and returns the
// destination filename. The name is the sanitized source base name with its
// stem truncated; if that name is taken, a disambiguator derived from the
// source path is appended to the stem and the copy overwrites whatever sits
// at the disambiguated name.
func (r *Relocator) Relocate(absSource string) (string, error) {
	stem, ext := splitFilename(fileutil.SanitizeFilename(filepath.Base(absSource)))
	if len(stem) > maxStemLength {
		stem = stem[:maxStemLength]
	}

	if r.lock != nil {
		r.lock.Lock()
		defer r.lock.Unlock()
	}

	name := joinFilename(stem, ext)
	dest := filepath.Join(r.dir, name)
	if fileutil.PathExists(dest) {
		name = joinFilename(stem+"-"+Disambiguator(absSource), ext)
		dest = filepath.Join(r.dir, name)
	}

	if err := r.copyFile(absSource, dest); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrCopyAsset, absSource, err)
	}
	return name, nil
}

// Disambiguator returns the 8 hex character suffix for absSource. It hashes
// the path string, not the file contents, so it is stable across runs for the
// same source path.
func Disambiguator(absSource string) string {
	sum := fmt.Sprintf("%016x", xxhash.Sum64String(filepath.ToSlash(absSource)))
	return sum[:disambiguatorLength]
}

// splitFilename splits name into stem and extension (without the dot).
// Dotfiles such as ".env" have no extension.
func splitFilename(name string) (stem, ext string) {
	dot := strings.LastIndexByte(name, '.')
	if dot <= 0 {
		return name, ""
	}
	return name[:dot], name[dot+1:]
}

// joinFilename is the inverse of splitFilename; an empty extension adds no dot.
func joinFilename(stem, ext string) string {
	if ext == "" {
		return stem
	}
	return stem + "." + ext
}
