package token

import (
	"bytes"
	"sort"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Span locates a token in its document. Offsets are byte offsets into the
// tokenized text, Stop is exclusive. Lines are 1-based and account for any
// front matter stripped before tokenization.
type Span struct {
	Start     int
	Stop      int
	StartLine int
	EndLine   int
}

// Tree is the token tree of one document. It is produced once per
// compilation pass and not modified afterwards.
type Tree struct {
	root       ast.Node
	source     []byte
	path       string
	sourceInfo bool
	lineStarts []int
	lineOffset int
	ids        *HeadingIDs
}

// Root returns the document node.
func (t *Tree) Root() ast.Node { return t.root }

// Source returns the tokenized text.
func (t *Tree) Source() []byte { return t.source }

// Path returns the logical path the tree was tokenized for.
func (t *Tree) Path() string { return t.path }

// SourceInfo reports whether spans are retained.
func (t *Tree) SourceInfo() bool { return t.sourceInfo }

// HeadingIDs returns the anchor generator used for this tree. Included
// documents share it with the including tree.
func (t *Tree) HeadingIDs() *HeadingIDs { return t.ids }

// Walk visits every node depth first.
func (t *Tree) Walk(walker ast.Walker) error {
	return ast.Walk(t.root, walker)
}

// Span returns the source span of node. It reports false when source info
// export is disabled or the node carries no source position.
func (t *Tree) Span(node ast.Node) (Span, bool) {
	if !t.sourceInfo || node == nil {
		return Span{}, false
	}
	start, stop := -1, -1
	collectExtent(node, &start, &stop)
	if start < 0 || stop < start {
		return Span{}, false
	}
	if stop > len(t.source) {
		stop = len(t.source)
	}
	if start > stop {
		start = stop
	}
	end := stop
	if end > start {
		end--
	}
	return Span{
		Start:     start,
		Stop:      stop,
		StartLine: t.lineOf(start),
		EndLine:   t.lineOf(end),
	}, true
}

// Line returns the first line of node, or zero when unknown.
func (t *Tree) Line(node ast.Node) int {
	span, ok := t.Span(node)
	if !ok {
		return 0
	}
	return span.StartLine
}

func (t *Tree) lineOf(offset int) int {
	return sort.SearchInts(t.lineStarts, offset+1) + t.lineOffset
}

func collectExtent(node ast.Node, start, stop *int) {
	widen := func(seg text.Segment) {
		if seg.Stop < seg.Start {
			return
		}
		if *start < 0 || seg.Start < *start {
			*start = seg.Start
		}
		if seg.Stop > *stop {
			*stop = seg.Stop
		}
	}

	switch n := node.(type) {
	case *ast.Text:
		widen(n.Segment)
	case *ast.RawHTML:
		for i := 0; i < n.Segments.Len(); i++ {
			widen(n.Segments.At(i))
		}
	case Segmented:
		widen(n.SourceSegment())
	}
	if node.Type() != ast.TypeInline {
		lines := node.Lines()
		for i := 0; i < lines.Len(); i++ {
			widen(lines.At(i))
		}
	}
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		collectExtent(child, start, stop)
	}
}

func indexLines(source []byte) []int {
	starts := []int{0}
	for offset := 0; ; {
		i := bytes.IndexByte(source[offset:], '\n')
		if i < 0 {
			break
		}
		offset += i + 1
		starts = append(starts, offset)
	}
	return starts
}
