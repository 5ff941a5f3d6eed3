package resolve

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestResolveSearchOrder(t *testing.T) {
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "docs", "local.md"), "doc dir")
	writeFile(t, filepath.Join(base, "local.md"), "base")
	writeFile(t, filepath.Join(base, "shared.md"), "base shared")
	writeFile(t, filepath.Join(base, "fa", "only.md"), "A")
	writeFile(t, filepath.Join(base, "fb", "only.md"), "B")
	writeFile(t, filepath.Join(base, "fb", "b-only.md"), "B only")

	r, err := New(Config{BaseDir: base, FallbackFolders: []string{"fa", "fb"}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	cases := map[string]string{
		"local.md":  "docs/local.md",
		"shared.md": "shared.md",
		"only.md":   "fa/only.md",
		"b-only.md": "fb/b-only.md",
	}
	for ref, want := range cases {
		res, err := r.Resolve("docs/index.md", ref)
		if err != nil {
			t.Fatalf("Resolve(%q): %v", ref, err)
		}
		if res.Logical != want {
			t.Fatalf("Resolve(%q) = %q, want %q", ref, res.Logical, want)
		}
	}
}

func TestResolveFallbackOrderIsDeterministic(t *testing.T) {
	base := t.TempDir()
	a := filepath.Join(t.TempDir(), "A")
	b := filepath.Join(t.TempDir(), "B")
	writeFile(t, filepath.Join(a, "x.md"), "from A")
	writeFile(t, filepath.Join(b, "x.md"), "from B")

	for i := 0; i < 5; i++ {
		r, err := New(Config{BaseDir: base, FallbackFolders: []string{a, b}})
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		res, err := r.Resolve("index.md", "x.md")
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if res.Root != a {
			t.Fatalf("expected first fallback to win, got %s", res.Root)
		}
		data, err := r.Read(res)
		if err != nil || string(data) != "from A" {
			t.Fatalf("unexpected content %q (%v)", data, err)
		}
	}
}

func TestResolveErrors(t *testing.T) {
	r, err := New(Config{BaseDir: t.TempDir()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	cases := map[string]error{
		"":                    ErrEmptyTarget,
		"  ":                  ErrEmptyTarget,
		"/etc/passwd":         ErrAbsolutePath,
		"https://x.test/a.md": ErrUnsupportedScheme,
		"missing.md":          ErrNotFound,
		"dir":                 ErrNotFound,
	}
	if err := os.Mkdir(filepath.Join(r.BaseDir(), "dir"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	for ref, want := range cases {
		if _, err := r.Resolve("index.md", ref); !errors.Is(err, want) {
			t.Fatalf("Resolve(%q) error = %v, want %v", ref, err, want)
		}
	}
}

func TestResolveRejectsTargetsOutsideRoots(t *testing.T) {
	parent := t.TempDir()
	base := filepath.Join(parent, "site")
	writeFile(t, filepath.Join(parent, "secret.md"), "top secret")
	writeFile(t, filepath.Join(base, "shared", "note.md"), "shared")
	writeFile(t, filepath.Join(base, "guide", "index.md"), "guide")

	r, err := New(Config{BaseDir: base})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for _, tc := range []struct{ from, ref string }{
		{"index.md", "../secret.md"},
		{"guide/index.md", "../../secret.md"},
		{"index.md", "shared/../../secret.md"},
	} {
		if _, err := r.Resolve(tc.from, tc.ref); !errors.Is(err, ErrOutsideRoot) {
			t.Fatalf("Resolve(%q, %q) error = %v, want ErrOutsideRoot", tc.from, tc.ref, err)
		}
	}

	res, err := r.Resolve("guide/index.md", "../shared/note.md")
	if err != nil {
		t.Fatalf("sibling include: %v", err)
	}
	if res.Logical != "shared/note.md" {
		t.Fatalf("logical = %q, want shared/note.md", res.Logical)
	}
}

func TestLogicalRelativizesPathsUnderBase(t *testing.T) {
	base := t.TempDir()
	r, err := New(Config{BaseDir: base})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	outside := filepath.Join(t.TempDir(), "other.md")

	cases := map[string]string{
		filepath.Join(base, "guide", "a.md"): "guide/a.md",
		"./guide/a.md":                       "guide/a.md",
		"a.md":                               "a.md",
		"":                                   "",
		outside:                              filepath.ToSlash(outside),
	}
	for in, want := range cases {
		if got := r.Logical(in); got != want {
			t.Fatalf("Logical(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestResolveStripsFragment(t *testing.T) {
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "a.md"), "a")
	r, _ := New(Config{BaseDir: base})

	res, err := r.Resolve("", "./a.md#section")
	if err != nil || res.Logical != "a.md" {
		t.Fatalf("unexpected resolution %+v (%v)", res, err)
	}
}

func TestReadCachesAndRevalidates(t *testing.T) {
	base := t.TempDir()
	path := filepath.Join(base, "a.md")
	writeFile(t, path, "first")

	r, _ := New(Config{BaseDir: base, CacheSize: 4})
	res, _ := r.Resolve("", "a.md")

	if data, _ := r.Read(res); string(data) != "first" {
		t.Fatalf("unexpected content %q", data)
	}
	if r.CacheLen() != 1 {
		t.Fatalf("expected cached entry, got %d", r.CacheLen())
	}

	writeFile(t, path, "second version")
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	if data, _ := r.Read(res); string(data) != "second version" {
		t.Fatalf("expected stale cache to be refreshed, got %q", data)
	}

	r.Purge()
	if r.CacheLen() != 0 {
		t.Fatal("expected purge to empty the cache")
	}
}

func TestReadWithoutCache(t *testing.T) {
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "a.md"), "a")
	r, _ := New(Config{BaseDir: base, CacheSize: -1})
	res, _ := r.Resolve("", "a.md")
	if data, err := r.Read(res); err != nil || string(data) != "a" {
		t.Fatalf("unexpected read %q (%v)", data, err)
	}
	if r.CacheLen() != 0 {
		t.Fatal("expected no cache")
	}
}
