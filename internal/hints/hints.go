// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/alnah/go-docassets/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForCopyFailure returns hints for an asset that could not be relocated.
func ForCopyFailure(err error) string {
	var hints []string

	switch {
	case errors.Is(err, fs.ErrNotExist):
		hints = append(hints, "relative paths resolve against the document's directory; check spelling and case")
	case errors.Is(err, fs.ErrPermission):
		hints = append(hints, "check the source is readable and the assets directory is writable")
		if IsInContainer() {
			hints = append(hints, "in a container, mount the output volume read-write")
		}
	case errors.Is(err, fileutil.ErrNotRegularFile):
		hints = append(hints, "only regular files can be relocated")
	}

	return formatHints(hints)
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in the user config directory.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	marker := string(filepath.Separator) + "go-docassets" + string(filepath.Separator)
	for _, p := range searchedPaths {
		if strings.Contains(p, marker) {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForNoDocuments returns hints when discovery matched nothing.
func ForNoDocuments(include []string) string {
	if len(include) == 0 {
		return format("set input.include in the config file")
	}
	return format("include patterns: " + strings.Join(include, ", "))
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
