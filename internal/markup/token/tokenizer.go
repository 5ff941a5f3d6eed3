package token

import (
	"strconv"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// Source info attributes written on block tokens when export is enabled.
const (
	AttrSourceFile      = "data-sourcefile"
	AttrSourceStartLine = "data-sourcestartlinenumber"
	AttrSourceEndLine   = "data-sourceendlinenumber"
)

// Options controls tokenization.
type Options struct {
	// LegacyMode accepts headings without a space after the hashes.
	LegacyMode bool
	// ExportSourceInfo retains spans and writes data-source* attributes.
	ExportSourceInfo bool
	// ShouldFixID rewrites anchors that do not start with a letter.
	ShouldFixID bool
}

// Tokenizer parses documents into token trees. It holds no per document
// state and is safe for concurrent use.
type Tokenizer struct {
	opts   Options
	parser parser.Parser
}

// NewTokenizer builds a tokenizer for opts.
func NewTokenizer(opts Options) *Tokenizer {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parserOptions(opts)...),
	)
	return &Tokenizer{opts: opts, parser: md.Parser()}
}

// Options returns the options the tokenizer was built with.
func (t *Tokenizer) Options() Options { return t.opts }

type treeConfig struct {
	lineOffset int
	ids        *HeadingIDs
}

// TreeOption adjusts a single Tokenize call.
type TreeOption func(*treeConfig)

// WithLineOffset shifts reported line numbers by n, used when front matter
// was stripped before tokenization.
func WithLineOffset(n int) TreeOption {
	return func(c *treeConfig) {
		if n > 0 {
			c.lineOffset = n
		}
	}
}

// WithHeadingIDs shares an anchor generator with another tree so included
// documents do not repeat anchors of the including document.
func WithHeadingIDs(ids *HeadingIDs) TreeOption {
	return func(c *treeConfig) {
		if ids != nil {
			c.ids = ids
		}
	}
}

// Tokenize parses source, attributed to the logical path.
func (t *Tokenizer) Tokenize(path string, source []byte, opts ...TreeOption) *Tree {
	cfg := treeConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.ids == nil {
		cfg.ids = NewHeadingIDs(t.opts.ShouldFixID)
	}

	pc := parser.NewContext(parser.WithIDs(cfg.ids))
	root := t.parser.Parse(text.NewReader(source), parser.WithContext(pc))

	tree := &Tree{
		root:       root,
		source:     source,
		path:       path,
		sourceInfo: t.opts.ExportSourceInfo,
		lineOffset: cfg.lineOffset,
		ids:        cfg.ids,
	}
	if tree.sourceInfo {
		tree.lineStarts = indexLines(source)
		annotateSourceInfo(tree)
	}
	return tree
}

func annotateSourceInfo(tree *Tree) {
	_ = tree.Walk(func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node.Kind() {
		case ast.KindHeading, ast.KindParagraph, ast.KindList, ast.KindBlockquote:
		default:
			return ast.WalkContinue, nil
		}
		span, ok := tree.Span(node)
		if !ok {
			return ast.WalkContinue, nil
		}
		node.SetAttributeString(AttrSourceFile, []byte(tree.path))
		node.SetAttributeString(AttrSourceStartLine, []byte(strconv.Itoa(span.StartLine)))
		node.SetAttributeString(AttrSourceEndLine, []byte(strconv.Itoa(span.EndLine)))
		return ast.WalkContinue, nil
	})
}
