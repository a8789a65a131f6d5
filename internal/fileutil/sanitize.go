package fileutil

import "regexp"

// fallbackFilename replaces names that sanitize to nothing.
const fallbackFilename = "file.txt"

// unsafeFilenameRun matches runs of characters not allowed in managed filenames.
var unsafeFilenameRun = regexp.MustCompile(`[^A-Za-z0-9\-_.]+`)

// SanitizeFilename maps an arbitrary candidate filename to one made only of
// ASCII letters, digits, '-', '_' and '.'. Each disallowed run becomes a
// single '-'. Never returns an empty string.
func SanitizeFilename(name string) string {
	sanitized := unsafeFilenameRun.ReplaceAllString(name, "-")
	if sanitized == "" {
		return fallbackFilename
	}
	return sanitized
}
