// Package logfields holds the canonical slog attribute keys shared by the
// library and the CLI, so log output stays greppable across packages.
package logfields

import "log/slog"

const (
	KeyPath       = "path"
	KeyRef        = "ref"
	KeyKind       = "kind"
	KeyDest       = "dest"
	KeySource     = "source"
	KeyCount      = "count"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

func Path(p string) slog.Attr       { return slog.String(KeyPath, p) }
func Ref(r string) slog.Attr        { return slog.String(KeyRef, r) }
func Kind(k string) slog.Attr       { return slog.String(KeyKind, k) }
func Dest(d string) slog.Attr       { return slog.String(KeyDest, d) }
func Source(s string) slog.Attr     { return slog.String(KeySource, s) }
func Count(n int) slog.Attr         { return slog.Int(KeyCount, n) }
func DurationMS(ms int64) slog.Attr { return slog.Int64(KeyDurationMS, ms) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
