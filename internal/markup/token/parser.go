package token

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Parser priorities. goldmark tries lower values first: the include block
// parser runs ahead of every default block parser, the legacy heading parser
// just ahead of the ATX parser (600) and the inline parsers ahead of links
// (200).
const (
	includeBlockPriority  = 190
	legacyHeadingPriority = 590
	includeInlinePriority = 150
	placeholderPriority   = 160
)

var (
	includeBlockPattern  = regexp.MustCompile(`(?i)^\[!include\[([^\[\]]*)\]\(([^()]*)\)\]$`)
	includeInlinePattern = regexp.MustCompile(`(?i)^\[!include\[([^\[\]]*)\]\(([^()]*)\)\]`)
	placeholderPattern   = regexp.MustCompile(`^\{\{\s*([A-Za-z0-9_.\-]+)\s*\}\}`)
)

func newReference(match [][]byte) Reference {
	return Reference{
		Title:  strings.TrimSpace(string(match[1])),
		Target: strings.TrimSpace(string(match[2])),
		Raw:    append([]byte(nil), match[0]...),
	}
}

type includeBlockParser struct{}

// NewIncludeBlockParser returns the block parser for whole line include
// directives.
func NewIncludeBlockParser() parser.BlockParser {
	return &includeBlockParser{}
}

func (p *includeBlockParser) Trigger() []byte {
	return []byte{'['}
}

func (p *includeBlockParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, segment := reader.PeekLine()
	pos := pc.BlockOffset()
	if pos < 0 || pos >= len(line) || segment.Padding != 0 {
		return nil, parser.NoChildren
	}
	trimmed := util.TrimRightSpace(line[pos:])
	match := includeBlockPattern.FindSubmatch(trimmed)
	if match == nil {
		return nil, parser.NoChildren
	}

	node := NewIncludeBlock(newReference(match))
	start := segment.Start + pos
	node.Lines().Append(text.NewSegment(start, start+len(trimmed)))
	reader.Advance(segment.Len() - 1)
	return node, parser.NoChildren
}

func (p *includeBlockParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	return parser.Close
}

func (p *includeBlockParser) Close(node ast.Node, reader text.Reader, pc parser.Context) {}

func (p *includeBlockParser) CanInterruptParagraph() bool {
	return true
}

func (p *includeBlockParser) CanAcceptIndentedLine() bool {
	return false
}

type includeInlineParser struct{}

// NewIncludeInlineParser returns the inline parser for include directives
// embedded in text.
func NewIncludeInlineParser() parser.InlineParser {
	return &includeInlineParser{}
}

func (p *includeInlineParser) Trigger() []byte {
	return []byte{'['}
}

func (p *includeInlineParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, segment := block.PeekLine()
	match := includeInlinePattern.FindSubmatch(line)
	if match == nil {
		return nil
	}
	length := len(match[0])
	block.Advance(length)
	return NewIncludeInline(newReference(match), text.NewSegment(segment.Start, segment.Start+length))
}

type placeholderParser struct{}

// NewPlaceholderParser returns the inline parser for {{name}} placeholders.
func NewPlaceholderParser() parser.InlineParser {
	return &placeholderParser{}
}

func (p *placeholderParser) Trigger() []byte {
	return []byte{'{'}
}

func (p *placeholderParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, segment := block.PeekLine()
	match := placeholderPattern.FindSubmatch(line)
	if match == nil {
		return nil
	}
	length := len(match[0])
	block.Advance(length)
	return NewPlaceholder(string(match[1]), append([]byte(nil), match[0]...), text.NewSegment(segment.Start, segment.Start+length))
}

// legacyHeadingParser accepts "#Title", the heading form older documents
// were written in. Lines with a space after the hashes are left to the
// CommonMark ATX parser.
type legacyHeadingParser struct{}

// NewLegacyHeadingParser returns the block parser used in legacy mode.
func NewLegacyHeadingParser() parser.BlockParser {
	return &legacyHeadingParser{}
}

func (p *legacyHeadingParser) Trigger() []byte {
	return []byte{'#'}
}

func (p *legacyHeadingParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, segment := reader.PeekLine()
	pos := pc.BlockOffset()
	if pos < 0 || segment.Padding != 0 {
		return nil, parser.NoChildren
	}

	i := pos
	for i < len(line) && line[i] == '#' {
		i++
	}
	level := i - pos
	if level == 0 || level > 6 || i >= len(line) || util.IsSpace(line[i]) {
		return nil, parser.NoChildren
	}

	stop := len(line) - util.TrimRightSpaceLength(line)
	closing := stop
	for closing > i && line[closing-1] == '#' {
		closing--
	}
	if closing < stop && closing > i && util.IsSpace(line[closing-1]) {
		stop = closing
		for stop > i && util.IsSpace(line[stop-1]) {
			stop--
		}
	}

	node := ast.NewHeading(level)
	node.Lines().Append(text.NewSegment(segment.Start+i, segment.Start+stop))
	return node, parser.NoChildren
}

func (p *legacyHeadingParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	return parser.Close
}

func (p *legacyHeadingParser) Close(node ast.Node, reader text.Reader, pc parser.Context) {
	if _, ok := node.AttributeString("id"); ok {
		return
	}
	var value []byte
	if lines := node.Lines(); lines.Len() > 0 {
		last := lines.At(lines.Len() - 1)
		value = last.Value(reader.Source())
	}
	node.SetAttributeString("id", pc.IDs().Generate(value, ast.KindHeading))
}

func (p *legacyHeadingParser) CanInterruptParagraph() bool {
	return true
}

func (p *legacyHeadingParser) CanAcceptIndentedLine() bool {
	return false
}

func parserOptions(opts Options) []parser.Option {
	blocks := []util.PrioritizedValue{
		util.Prioritized(NewIncludeBlockParser(), includeBlockPriority),
	}
	if opts.LegacyMode {
		blocks = append(blocks, util.Prioritized(NewLegacyHeadingParser(), legacyHeadingPriority))
	}
	return []parser.Option{
		parser.WithAutoHeadingID(),
		parser.WithBlockParsers(blocks...),
		parser.WithInlineParsers(
			util.Prioritized(NewIncludeInlineParser(), includeInlinePriority),
			util.Prioritized(NewPlaceholderParser(), placeholderPriority),
		),
	}
}
