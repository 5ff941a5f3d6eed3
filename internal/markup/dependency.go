package markup

import (
	"path"
	"sort"
	"strings"
)

// DependencySet records the distinct external files read while compiling a
// document. Paths are normalized to slash separated clean form. The zero
// value is ready to use.
type DependencySet struct {
	paths map[string]struct{}
}

// NewDependencySet returns an empty set.
func NewDependencySet() *DependencySet {
	return &DependencySet{}
}

// Add records p and reports whether it was new. Blank paths are ignored.
func (s *DependencySet) Add(p string) bool {
	normalized := NormalizePath(p)
	if normalized == "" {
		return false
	}
	if s.paths == nil {
		s.paths = make(map[string]struct{})
	}
	if _, ok := s.paths[normalized]; ok {
		return false
	}
	s.paths[normalized] = struct{}{}
	return true
}

// Contains reports whether p was recorded.
func (s *DependencySet) Contains(p string) bool {
	if s == nil {
		return false
	}
	_, ok := s.paths[NormalizePath(p)]
	return ok
}

// Len returns the number of recorded paths.
func (s *DependencySet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.paths)
}

// Snapshot returns the recorded paths sorted, or nil when the set is empty.
func (s *DependencySet) Snapshot() []string {
	if s.Len() == 0 {
		return nil
	}
	out := make([]string, 0, len(s.paths))
	for p := range s.paths {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// NormalizePath converts p to the slash separated, cleaned form used for
// dependency bookkeeping. Leading "./" is dropped.
func NormalizePath(p string) string {
	p = strings.TrimSpace(strings.ReplaceAll(p, "\\", "/"))
	if p == "" {
		return ""
	}
	cleaned := path.Clean(p)
	if cleaned == "." {
		return ""
	}
	return cleaned
}
