package token

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/goliatone/go-slug"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
)

const fallbackHeadingID = "heading"

// HeadingIDs generates heading anchors for one compilation. Anchors are
// slugs; duplicates receive a numeric suffix. With fix enabled an anchor
// that does not start with an ASCII letter is prefixed with "_".
type HeadingIDs struct {
	fix  bool
	used map[string]struct{}
}

var _ parser.IDs = (*HeadingIDs)(nil)

// NewHeadingIDs returns an empty generator.
func NewHeadingIDs(fix bool) *HeadingIDs {
	return &HeadingIDs{fix: fix, used: make(map[string]struct{})}
}

// Generate returns a unique anchor for the heading text value.
func (g *HeadingIDs) Generate(value []byte, kind ast.NodeKind) []byte {
	base := Slugify(string(value))
	if g.fix && IsReservedID(base) {
		base = "_" + base
	}

	id := base
	for n := 1; g.taken(id); n++ {
		id = base + "-" + strconv.Itoa(n)
	}
	g.used[id] = struct{}{}
	return []byte(id)
}

// Put registers an anchor chosen by the author.
func (g *HeadingIDs) Put(value []byte) {
	g.used[string(value)] = struct{}{}
}

func (g *HeadingIDs) taken(id string) bool {
	_, ok := g.used[id]
	return ok
}

// IsReservedID reports whether id falls in the reserved pattern: empty or
// starting with anything but an ASCII letter or underscore.
func IsReservedID(id string) bool {
	if id == "" {
		return true
	}
	c := id[0]
	return !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_')
}

// Slugify converts heading text to an anchor using go-slug, falling back to
// a local normalizer when go-slug rejects the input.
func Slugify(value string) string {
	value = strings.TrimSpace(value)
	if normalized, err := slug.Normalize(value); err == nil && normalized != "" {
		return normalized
	}
	if local := localSlug(value); local != "" {
		return local
	}
	return fallbackHeadingID
}

func localSlug(value string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(value) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
