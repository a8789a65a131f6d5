package main

// Notes:
// - runMain is driven end to end on temp trees; the batch, discovery and
//   settings layers have their own focused tests.
// - watch is exercised through watchDocument in watch_test.go because the
//   command blocks until a signal arrives.

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestIsCommand - Command name detection
// ---------------------------------------------------------------------------

func TestIsCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  bool
	}{
		{"rewrite", true},
		{"preview", true},
		{"watch", true},
		{"refs", true},
		{"config", true},
		{"version", true},
		{"help", true},
		{"convert", false},
		{"", false},
		{"doc.md", false},
		{"Rewrite", false}, // case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			if got := isCommand(tt.input); got != tt.want {
				t.Errorf("isCommand(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRunMain - Command dispatch and output
// ---------------------------------------------------------------------------

func TestRunMain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		args         []string
		wantCode     int
		wantInStdout []string
		wantInStderr []string
	}{
		{
			name:         "no args shows usage",
			args:         []string{"docassets"},
			wantCode:     ExitUsage,
			wantInStderr: []string{"Usage: docassets"},
		},
		{
			name:         "version",
			args:         []string{"docassets", "version"},
			wantCode:     ExitSuccess,
			wantInStdout: []string{"docassets dev"},
		},
		{
			name:         "help",
			args:         []string{"docassets", "help"},
			wantCode:     ExitSuccess,
			wantInStdout: []string{"Usage: docassets", "Commands:"},
		},
		{
			name:         "help rewrite",
			args:         []string{"docassets", "help", "rewrite"},
			wantCode:     ExitSuccess,
			wantInStdout: []string{"Usage: docassets rewrite"},
		},
		{
			name:         "rewrite --help",
			args:         []string{"docassets", "rewrite", "--help"},
			wantCode:     ExitSuccess,
			wantInStderr: []string{"Usage: docassets rewrite"},
		},
		{
			name:         "unknown command",
			args:         []string{"docassets", "convert"},
			wantCode:     ExitUsage,
			wantInStderr: []string{"unknown command: convert"},
		},
		{
			name:         "unknown flag",
			args:         []string{"docassets", "refs", "--bogus"},
			wantCode:     ExitUsage,
			wantInStderr: []string{"invalid usage"},
		},
		{
			name:     "rewrite without input",
			args:     []string{"docassets", "rewrite"},
			wantCode: ExitIO,
		},
		{
			name:     "rewrite nonexistent file",
			args:     []string{"docassets", "rewrite", filepath.Join("no", "such", "doc.md")},
			wantCode: ExitIO,
		},
		{
			name:     "negative workers",
			args:     []string{"docassets", "rewrite", "-w", "-1", "doc.md"},
			wantCode: ExitUsage,
		},
		{
			name:     "preview wrong extension",
			args:     []string{"docassets", "preview", "doc.pdf"},
			wantCode: ExitUsage,
		},
		{
			name:     "refs two documents",
			args:     []string{"docassets", "refs", "a.md", "b.md"},
			wantCode: ExitUsage,
		},
		{
			name:     "missing config",
			args:     []string{"docassets", "refs", "-c", "no-such-config", "a.md"},
			wantCode: ExitUsage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, stdout, stderr := testEnv(nil)
			code := runMain(tt.args, env)

			if code != tt.wantCode {
				t.Errorf("runMain(%v) = %d, want %d\nstderr: %s", tt.args, code, tt.wantCode, stderr)
			}
			for _, want := range tt.wantInStdout {
				if !strings.Contains(stdout.String(), want) {
					t.Errorf("stdout should contain %q, got %q", want, stdout)
				}
			}
			for _, want := range tt.wantInStderr {
				if !strings.Contains(stderr.String(), want) {
					t.Errorf("stderr should contain %q, got %q", want, stderr)
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRunMain_Rewrite - End-to-end directory rewrite
// ---------------------------------------------------------------------------

func TestRunMain_Rewrite(t *testing.T) {
	t.Parallel()

	tmp := site(t)
	out := filepath.Join(tmp, "out")
	env, stdout, stderr := testEnv(nil)

	code := runMain([]string{"docassets", "rewrite", filepath.Join(tmp, "src", "docs"), "-o", out}, env)
	if code != ExitSuccess {
		t.Fatalf("exit = %d, stderr: %s", code, stderr)
	}

	guide := readFile(t, filepath.Join(out, "guide.md"))
	// Both documents share logo.png, so the second copy may be disambiguated.
	if !strings.Contains(guide, "![logo](/assets/logo") {
		t.Errorf("guide.md = %q, want relocated reference", guide)
	}
	if !strings.Contains(guide, `<img src="https://example.com/x.png">`) {
		t.Errorf("guide.md = %q, want external reference untouched", guide)
	}

	paper := readFile(t, filepath.Join(out, "paper.typ"))
	if !strings.HasPrefix(paper, `#image("/assets/logo`) || !strings.Contains(paper, `, width: 50%)`) {
		t.Errorf("paper.typ = %q, want relocated raw call", paper)
	}

	if _, err := os.Stat(filepath.Join(out, "notes.txt")); !os.IsNotExist(err) {
		t.Error("notes.txt was rewritten, want excluded by include globs")
	}
	if readFile(t, filepath.Join(out, "assets", "logo.png")) != "png" {
		t.Error("assets/logo.png has wrong content")
	}
	if !strings.Contains(stdout.String(), "2 succeeded, 0 failed") {
		t.Errorf("stdout = %q, want summary", stdout)
	}
}

func TestRunMain_Rewrite_Strict(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	doc := filepath.Join(tmp, "doc.md")
	writeFile(t, doc, "![gone](missing.png)\n")
	out := filepath.Join(tmp, "out")

	env, _, stderr := testEnv(nil)
	code := runMain([]string{"docassets", "rewrite", doc, "-o", out, "--strict"}, env)
	if code != ExitDiagnostics {
		t.Fatalf("exit = %d, want %d\nstderr: %s", code, ExitDiagnostics, stderr)
	}
	if !strings.Contains(stderr.String(), "warning:") || !strings.Contains(stderr.String(), "hint:") {
		t.Errorf("stderr = %q, want warning with hint", stderr)
	}
	if got := readFile(t, filepath.Join(out, "doc.md")); got != "![gone](missing.png)\n" {
		t.Errorf("doc.md = %q, want reference unchanged", got)
	}

	env, _, _ = testEnv(nil)
	if code := runMain([]string{"docassets", "rewrite", doc, "-o", out}, env); code != ExitSuccess {
		t.Errorf("exit without --strict = %d, want 0", code)
	}
}

func TestRunMain_Rewrite_EnvOutput(t *testing.T) {
	t.Parallel()

	tmp := site(t)
	out := filepath.Join(tmp, "from-env")
	env, _, stderr := testEnv(map[string]string{
		"DOCASSETS_OUTPUT_DIR": out,
		"DOCASSETS_INPUT_DIR":  filepath.Join(tmp, "src", "docs"),
		"DOCASSETS_TYPO":       "1",
	})

	if code := runMain([]string{"docassets", "rewrite", "-q"}, env); code != ExitSuccess {
		t.Fatalf("exit = %d, stderr: %s", code, stderr)
	}
	if _, err := os.Stat(filepath.Join(out, "guide.md")); err != nil {
		t.Errorf("guide.md not written under DOCASSETS_OUTPUT_DIR: %v", err)
	}
	if strings.Contains(stderr.String(), "DOCASSETS_TYPO") {
		t.Error("unknown variable warning printed under --quiet")
	}
}

func TestRunMain_Rewrite_InPlaceRejected(t *testing.T) {
	t.Parallel()

	const source = "# Title\n![a](img/a.png)\n"

	tests := []struct {
		name  string
		input func(docs string) string
	}{
		{"directory", func(docs string) string { return docs }},
		{"single file", func(docs string) string { return filepath.Join(docs, "guide.md") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			docs := filepath.Join(t.TempDir(), "docs")
			writeFile(t, filepath.Join(docs, "img", "a.png"), "png")
			writeFile(t, filepath.Join(docs, "guide.md"), source)

			env, _, stderr := testEnv(nil)
			code := runMain([]string{"docassets", "rewrite", tt.input(docs), "-o", docs}, env)
			if code != ExitUsage {
				t.Errorf("exit = %d, want %d\nstderr: %s", code, ExitUsage, stderr)
			}
			if !strings.Contains(stderr.String(), "would overwrite the input document") {
				t.Errorf("stderr = %q, want overwrite error", stderr)
			}
			if got := readFile(t, filepath.Join(docs, "guide.md")); got != source {
				t.Errorf("source = %q, want unchanged %q", got, source)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRunMain_Preview - Staging a single document
// ---------------------------------------------------------------------------

func TestRunMain_Preview(t *testing.T) {
	t.Parallel()

	tmp := site(t)
	dir := filepath.Join(tmp, "preview")
	env, stdout, stderr := testEnv(nil)

	code := runMain([]string{"docassets", "preview", filepath.Join(tmp, "src", "docs", "guide.md"), "--dir", dir}, env)
	if code != ExitSuccess {
		t.Fatalf("exit = %d, stderr: %s", code, stderr)
	}

	staged := strings.TrimSpace(stdout.String())
	if filepath.Base(staged) != "guide.md" {
		t.Errorf("printed path = %q, want .../guide.md", staged)
	}
	if got := readFile(t, staged); !strings.Contains(got, "![logo](/assets/logo.png)") {
		t.Errorf("staged = %q, want relocated reference", got)
	}
	if _, err := os.Stat(filepath.Join(dir, "assets", "logo.png")); err != nil {
		t.Errorf("assets/logo.png missing: %v", err)
	}
}

func TestRunMain_Preview_SourceDirRejected(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		dir  func(tmp string) string
	}{
		{"document directory", func(tmp string) string { return filepath.Join(tmp, "src", "docs") }},
		{"parent directory", func(tmp string) string { return filepath.Join(tmp, "src") }},
		{"ancestor directory", func(tmp string) string { return tmp }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tmp := site(t)
			docs := filepath.Join(tmp, "src", "docs")
			// A file the ancestor cases would stage over.
			writeFile(t, filepath.Join(tt.dir(tmp), "guide.md"), "keep\n")
			want := readFile(t, filepath.Join(tt.dir(tmp), "guide.md"))

			env, _, _ := testEnv(nil)
			code := runMain([]string{"docassets", "preview", filepath.Join(docs, "guide.md"), "--dir", tt.dir(tmp)}, env)
			if code != ExitUsage {
				t.Errorf("exit = %d, want %d", code, ExitUsage)
			}
			if got := readFile(t, filepath.Join(tt.dir(tmp), "guide.md")); got != want {
				t.Errorf("guide.md in --dir = %q, want untouched %q", got, want)
			}
		})
	}
}

func TestRunMain_Preview_SubdirectoryAllowed(t *testing.T) {
	t.Parallel()

	tmp := site(t)
	docs := filepath.Join(tmp, "src", "docs")
	dir := filepath.Join(docs, "preview")

	env, _, stderr := testEnv(nil)
	if code := runMain([]string{"docassets", "preview", filepath.Join(docs, "guide.md"), "--dir", dir}, env); code != ExitSuccess {
		t.Fatalf("exit = %d, stderr: %s", code, stderr)
	}
	if got := readFile(t, filepath.Join(docs, "guide.md")); !strings.Contains(got, "../img/logo.png") {
		t.Error("source document was overwritten")
	}
}
