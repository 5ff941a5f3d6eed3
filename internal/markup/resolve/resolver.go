// Package resolve locates and reads the files referenced by include
// directives.
package resolve

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/goliatone/go-docmark/internal/markup"
)

var (
	ErrNotFound          = errors.New("resolve: file not found")
	ErrAbsolutePath      = errors.New("resolve: absolute include targets are not allowed")
	ErrEmptyTarget       = errors.New("resolve: include target is empty")
	ErrUnsupportedScheme = errors.New("resolve: remote include targets are not supported")
	ErrOutsideRoot       = errors.New("resolve: include target escapes the search roots")
)

// DefaultCacheSize is the number of file contents kept by a resolver.
const DefaultCacheSize = 256

// Config configures a Resolver.
type Config struct {
	// BaseDir is the root documents are addressed from.
	BaseDir string
	// FallbackFolders are searched in order after the document directory and
	// BaseDir. Relative entries are resolved against BaseDir.
	FallbackFolders []string
	// CacheSize bounds the content cache. Zero selects DefaultCacheSize, a
	// negative value disables caching.
	CacheSize int
}

// Resolution is a located file.
type Resolution struct {
	// Logical is the slash separated path relative to BaseDir, recorded in
	// dependency sets.
	Logical string
	// Absolute is the filesystem path.
	Absolute string
	// Root is the search root the file was found under.
	Root string
}

type entry struct {
	modTime time.Time
	size    int64
	data    []byte
}

// Resolver searches the document directory, the base directory and the
// fallback folders, in that order. It is safe for concurrent use.
type Resolver struct {
	baseDir   string
	fallbacks []string
	cache     *lru.Cache[string, entry]
}

// New builds a resolver from cfg.
func New(cfg Config) (*Resolver, error) {
	base := cfg.BaseDir
	if strings.TrimSpace(base) == "" {
		base = "."
	}
	absBase, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("resolve: base directory %q: %w", cfg.BaseDir, err)
	}

	r := &Resolver{baseDir: absBase}
	for _, folder := range cfg.FallbackFolders {
		folder = strings.TrimSpace(folder)
		if folder == "" {
			continue
		}
		if !filepath.IsAbs(folder) {
			folder = filepath.Join(absBase, folder)
		}
		r.fallbacks = append(r.fallbacks, filepath.Clean(folder))
	}

	size := cfg.CacheSize
	if size == 0 {
		size = DefaultCacheSize
	}
	if size > 0 {
		cache, err := lru.New[string, entry](size)
		if err != nil {
			return nil, fmt.Errorf("resolve: cache: %w", err)
		}
		r.cache = cache
	}
	return r, nil
}

// BaseDir returns the absolute base directory.
func (r *Resolver) BaseDir() string { return r.baseDir }

// FallbackFolders returns the absolute fallback folders in search order.
func (r *Resolver) FallbackFolders() []string {
	return append([]string(nil), r.fallbacks...)
}

// Resolve locates ref as referenced from the document at the logical path
// from. The first existing regular file wins. Candidates must stay inside
// BaseDir, a fallback folder or the document directory. A target that is
// not found and leaves all of them fails with ErrOutsideRoot.
func (r *Resolver) Resolve(from, ref string) (Resolution, error) {
	target := cleanTarget(ref)
	switch {
	case target == "":
		return Resolution{}, ErrEmptyTarget
	case strings.Contains(target, "://"):
		return Resolution{}, fmt.Errorf("%w: %s", ErrUnsupportedScheme, ref)
	case filepath.IsAbs(target) || strings.HasPrefix(target, "/"):
		return Resolution{}, fmt.Errorf("%w: %s", ErrAbsolutePath, ref)
	}

	roots := r.roots(from)
	escaped := false
	for _, root := range roots {
		candidate := filepath.Join(root, filepath.FromSlash(target))
		if !within(candidate, roots) {
			escaped = true
			continue
		}
		info, err := os.Stat(candidate)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		return Resolution{
			Logical:  r.logical(candidate),
			Absolute: candidate,
			Root:     root,
		}, nil
	}
	if escaped {
		return Resolution{}, fmt.Errorf("%w: %s", ErrOutsideRoot, ref)
	}
	return Resolution{}, fmt.Errorf("%w: %s", ErrNotFound, ref)
}

// Logical maps a document path to the form recorded for resolved includes:
// slash separated and relative to BaseDir when the path lies inside it.
func (r *Resolver) Logical(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	native := filepath.Clean(filepath.FromSlash(path))
	if filepath.IsAbs(native) && within(native, []string{r.baseDir}) {
		return r.logical(native)
	}
	return markup.NormalizePath(filepath.ToSlash(native))
}

// Read returns the content of res. Contents are cached by absolute path and
// revalidated against the file's size and modification time.
func (r *Resolver) Read(res Resolution) ([]byte, error) {
	info, err := os.Stat(res.Absolute)
	if err != nil {
		return nil, fmt.Errorf("resolve: stat %s: %w", res.Logical, err)
	}
	if r.cache != nil {
		if cached, ok := r.cache.Get(res.Absolute); ok && cached.size == info.Size() && cached.modTime.Equal(info.ModTime()) {
			return cached.data, nil
		}
	}

	data, err := os.ReadFile(res.Absolute)
	if err != nil {
		return nil, fmt.Errorf("resolve: read %s: %w", res.Logical, err)
	}
	if r.cache != nil {
		r.cache.Add(res.Absolute, entry{modTime: info.ModTime(), size: info.Size(), data: data})
	}
	return data, nil
}

// Purge drops every cached content.
func (r *Resolver) Purge() {
	if r.cache != nil {
		r.cache.Purge()
	}
}

// CacheLen returns the number of cached files.
func (r *Resolver) CacheLen() int {
	if r.cache == nil {
		return 0
	}
	return r.cache.Len()
}

func (r *Resolver) roots(from string) []string {
	roots := make([]string, 0, 2+len(r.fallbacks))
	if dir := r.documentDir(from); dir != "" && dir != r.baseDir {
		roots = append(roots, dir)
	}
	roots = append(roots, r.baseDir)
	return append(roots, r.fallbacks...)
}

func (r *Resolver) documentDir(from string) string {
	from = strings.TrimSpace(from)
	if from == "" {
		return ""
	}
	native := filepath.FromSlash(from)
	if filepath.IsAbs(native) {
		return filepath.Dir(native)
	}
	return filepath.Join(r.baseDir, filepath.Dir(native))
}

func (r *Resolver) logical(abs string) string {
	rel, err := filepath.Rel(r.baseDir, abs)
	if err != nil {
		return markup.NormalizePath(filepath.ToSlash(abs))
	}
	return markup.NormalizePath(filepath.ToSlash(rel))
}

func within(path string, roots []string) bool {
	for _, root := range roots {
		rel, err := filepath.Rel(root, path)
		if err != nil {
			continue
		}
		if rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// cleanTarget drops query and fragment suffixes.
func cleanTarget(ref string) string {
	target := strings.TrimSpace(ref)
	if i := strings.IndexAny(target, "?#"); i >= 0 {
		target = target[:i]
	}
	return strings.TrimSpace(target)
}
