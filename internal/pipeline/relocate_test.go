package pipeline

// Notes:
// - Collision handling is tested with real files; the copy function is
//   replaced only to observe lock ownership and to force copy failures.
// - The unlocked check-then-copy race is documented behavior and is not
//   tested; the locked variant is tested for distinct destinations.

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
)

var disambiguatedName = regexp.MustCompile(`^chart-[0-9a-f]{8}\.png$`)

// ---------------------------------------------------------------------------
// TestRelocate - Destination naming
// ---------------------------------------------------------------------------

func TestRelocate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		filename string
		want     string
	}{
		{name: "plain", filename: "chart.png", want: "chart.png"},
		{name: "sanitized", filename: "My Logo (final).png", want: "My-Logo-final-.png"},
		{name: "no extension", filename: "README", want: "README"},
		{name: "dotfile", filename: ".hidden", want: ".hidden"},
		{name: "multiple dots", filename: "archive.tar.gz", want: "archive.tar.gz"},
		{name: "stem truncated", filename: strings.Repeat("a", 150) + ".jpeg", want: strings.Repeat("a", 100) + ".jpeg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tmp := t.TempDir()
			src := filepath.Join(tmp, "src", tt.filename)
			writeFile(t, src, "bytes")
			dir := filepath.Join(tmp, "assets")
			if err := os.Mkdir(dir, 0o750); err != nil {
				t.Fatal(err)
			}

			got, err := NewRelocator(dir).Relocate(src)
			if err != nil {
				t.Fatalf("Relocate() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Relocate() = %q, want %q", got, tt.want)
			}
			if _, err := os.Stat(filepath.Join(dir, got)); err != nil {
				t.Errorf("destination not written: %v", err)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRelocate_Collision - Same base name from different sources
// ---------------------------------------------------------------------------

func TestRelocate_Collision(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	first := filepath.Join(tmp, "q1", "chart.png")
	second := filepath.Join(tmp, "q2", "chart.png")
	writeFile(t, first, "first")
	writeFile(t, second, "second")
	dir := filepath.Join(tmp, "assets")
	if err := os.Mkdir(dir, 0o750); err != nil {
		t.Fatal(err)
	}
	r := NewRelocator(dir)

	name1, err := r.Relocate(first)
	if err != nil {
		t.Fatalf("Relocate(first) error = %v", err)
	}
	name2, err := r.Relocate(second)
	if err != nil {
		t.Fatalf("Relocate(second) error = %v", err)
	}

	if name1 != "chart.png" {
		t.Errorf("first name = %q, want chart.png", name1)
	}
	if !disambiguatedName.MatchString(name2) {
		t.Errorf("second name = %q, want chart-XXXXXXXX.png", name2)
	}
	if name2 != "chart-"+Disambiguator(second)+".png" {
		t.Errorf("second name = %q, want disambiguator of source path", name2)
	}

	got1, _ := os.ReadFile(filepath.Join(dir, name1))
	got2, _ := os.ReadFile(filepath.Join(dir, name2))
	if string(got1) != "first" || string(got2) != "second" {
		t.Errorf("contents = %q, %q; want first, second", got1, got2)
	}
}

func TestRelocate_RepeatedSourceIsStable(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	src := filepath.Join(tmp, "img", "chart.png")
	writeFile(t, src, "v1")
	dir := filepath.Join(tmp, "assets")
	if err := os.Mkdir(dir, 0o750); err != nil {
		t.Fatal(err)
	}
	r := NewRelocator(dir)

	if _, err := r.Relocate(src); err != nil {
		t.Fatal(err)
	}
	second, err := r.Relocate(src)
	if err != nil {
		t.Fatal(err)
	}
	writeFile(t, src, "v2")
	third, err := r.Relocate(src)
	if err != nil {
		t.Fatal(err)
	}

	if second != third {
		t.Errorf("repeated relocation names differ: %q then %q", second, third)
	}
	got, _ := os.ReadFile(filepath.Join(dir, third))
	if string(got) != "v2" {
		t.Errorf("disambiguated destination = %q, want overwritten with v2", got)
	}
}

// ---------------------------------------------------------------------------
// TestRelocate_CopyFailure - Errors are wrapped, nothing is deleted
// ---------------------------------------------------------------------------

func TestRelocate_CopyFailure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	boom := errors.New("disk on fire")
	r := NewRelocator(dir, withCopyFunc(func(_, _ string) error { return boom }))

	name, err := r.Relocate("/src/a.png")
	if name != "" {
		t.Errorf("name = %q, want empty on failure", name)
	}
	if !errors.Is(err, ErrCopyAsset) || !errors.Is(err, boom) {
		t.Errorf("error = %v, want ErrCopyAsset wrapping cause", err)
	}
}

// ---------------------------------------------------------------------------
// TestRelocate_Lock - Serialized destination selection
// ---------------------------------------------------------------------------

// probeLock records whether it was held while copying.
type probeLock struct {
	mu   sync.Mutex
	held bool
}

func (l *probeLock) Lock()   { l.mu.Lock(); l.held = true }
func (l *probeLock) Unlock() { l.held = false; l.mu.Unlock() }

func TestRelocate_LockHeldDuringCopy(t *testing.T) {
	t.Parallel()

	lock := &probeLock{}
	var heldDuringCopy bool
	r := NewRelocator(t.TempDir(),
		WithLock(lock),
		withCopyFunc(func(_, _ string) error {
			heldDuringCopy = lock.held
			return nil
		}))

	if _, err := r.Relocate("/src/a.png"); err != nil {
		t.Fatal(err)
	}
	if !heldDuringCopy {
		t.Error("lock not held during copy")
	}
	if lock.held {
		t.Error("lock still held after Relocate")
	}
}

func TestRelocate_ConcurrentWithDirLock(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	dir := filepath.Join(tmp, "assets")
	if err := os.Mkdir(dir, 0o750); err != nil {
		t.Fatal(err)
	}

	const n = 8
	sources := make([]string, n)
	for i := range sources {
		sources[i] = filepath.Join(tmp, fmt.Sprintf("src%d", i), "chart.png")
		writeFile(t, sources[i], fmt.Sprintf("content-%d", i))
	}

	names := make([]string, n)
	var wg sync.WaitGroup
	for i := range sources {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r := NewRelocator(dir, WithLock(DirLock(dir)))
			name, err := r.Relocate(sources[i])
			if err != nil {
				t.Errorf("Relocate(%d) error = %v", i, err)
				return
			}
			names[i] = name
		}()
	}
	wg.Wait()

	seen := make(map[string]int)
	for i, name := range names {
		if prev, dup := seen[name]; dup {
			t.Errorf("sources %d and %d both relocated to %q", prev, i, name)
		}
		seen[name] = i
		got, _ := os.ReadFile(filepath.Join(dir, name))
		if string(got) != fmt.Sprintf("content-%d", i) {
			t.Errorf("%s = %q, want content-%d", name, got, i)
		}
	}
}

func TestDirLock_SameDirSameMutex(t *testing.T) {
	t.Parallel()

	a := DirLock("/out/assets")
	b := DirLock("/out/assets/")
	c := DirLock("/other/assets")
	if a != b {
		t.Error("DirLock returned different mutexes for the same directory")
	}
	if a == c {
		t.Error("DirLock returned the same mutex for different directories")
	}
}

// ---------------------------------------------------------------------------
// TestDisambiguator - Path-derived suffix
// ---------------------------------------------------------------------------

func TestDisambiguator(t *testing.T) {
	t.Parallel()

	hex8 := regexp.MustCompile(`^[0-9a-f]{8}$`)
	a := Disambiguator("/proj/q1/chart.png")
	b := Disambiguator("/proj/q2/chart.png")

	if !hex8.MatchString(a) || !hex8.MatchString(b) {
		t.Errorf("Disambiguator() = %q, %q; want 8 lowercase hex chars", a, b)
	}
	if a == b {
		t.Errorf("different paths share disambiguator %q", a)
	}
	if a != Disambiguator("/proj/q1/chart.png") {
		t.Error("Disambiguator() is not deterministic")
	}
}

func TestSplitFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name, stem, ext string
	}{
		{"a.png", "a", "png"},
		{"a.tar.gz", "a.tar", "gz"},
		{"README", "README", ""},
		{".env", ".env", ""},
		{"file.", "file", ""},
	}

	for _, tt := range tests {
		stem, ext := splitFilename(tt.name)
		if stem != tt.stem || ext != tt.ext {
			t.Errorf("splitFilename(%q) = (%q, %q), want (%q, %q)", tt.name, stem, ext, tt.stem, tt.ext)
		}
		if tt.ext != "" && joinFilename(stem, ext) != tt.name {
			t.Errorf("joinFilename(%q, %q) = %q, want %q", stem, ext, joinFilename(stem, ext), tt.name)
		}
	}
}
