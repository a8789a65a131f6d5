package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// testEnv returns an Environment with captured output and an environment
// built from vars instead of the process environment.
func testEnv(vars map[string]string) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	env := &Environment{
		Now:    func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) },
		Stdout: &stdout,
		Stderr: &stderr,
		Getenv: func(k string) string { return vars[k] },
		Environ: func() []string {
			out := make([]string, 0, len(vars))
			for k, v := range vars {
				out = append(out, k+"="+v)
			}
			return out
		},
	}
	return env, &stdout, &stderr
}

// writeFile creates path and its parents with the given content.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

// readFile returns the content of path or fails the test.
func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

// site lays out <tmp>/src/docs/guide.md referencing ../img/logo.png and
// returns tmp.
func site(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	writeFile(t, filepath.Join(tmp, "src", "img", "logo.png"), "png")
	writeFile(t, filepath.Join(tmp, "src", "docs", "guide.md"),
		"# Guide\n\n![logo](../img/logo.png)\n<img src=\"https://example.com/x.png\">\n")
	writeFile(t, filepath.Join(tmp, "src", "docs", "paper.typ"),
		"#image(\"../img/logo.png\", width: 50%)\n")
	writeFile(t, filepath.Join(tmp, "src", "docs", "notes.txt"), "![x](../img/logo.png)")
	return tmp
}
