package token

import (
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var (
	// KindIncludeBlock is an include directive occupying a whole line.
	KindIncludeBlock = ast.NewNodeKind("IncludeBlock")
	// KindIncludeInline is an include directive inside running text.
	KindIncludeInline = ast.NewNodeKind("IncludeInline")
	// KindPlaceholder is a {{name}} token replacement marker.
	KindPlaceholder = ast.NewNodeKind("Placeholder")
	// KindBrokenReference never appears in a parsed tree. Renderers build it
	// when a reference cannot be resolved so the marker stays overridable.
	KindBrokenReference = ast.NewNodeKind("BrokenReference")
)

// Reference is the payload shared by both include forms.
type Reference struct {
	Title  string
	Target string
	// Raw is the directive as written in the source.
	Raw []byte
}

// Include is implemented by IncludeBlock and IncludeInline.
type Include interface {
	ast.Node
	IncludeReference() Reference
}

// Segmented is implemented by dialect inline nodes that remember where they
// were found in the source.
type Segmented interface {
	SourceSegment() text.Segment
}

// IncludeBlock is a block level include directive.
type IncludeBlock struct {
	ast.BaseBlock
	Reference
}

// NewIncludeBlock returns a block include for ref.
func NewIncludeBlock(ref Reference) *IncludeBlock {
	return &IncludeBlock{Reference: ref}
}

func (n *IncludeBlock) Kind() ast.NodeKind { return KindIncludeBlock }

// IsRaw keeps the parser from running inline parsers over the directive.
func (n *IncludeBlock) IsRaw() bool { return true }

func (n *IncludeBlock) IncludeReference() Reference { return n.Reference }

func (n *IncludeBlock) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Title":  n.Title,
		"Target": n.Target,
	}, nil)
}

// IncludeInline is an include directive found inside a paragraph or heading.
type IncludeInline struct {
	ast.BaseInline
	Reference
	Segment text.Segment
}

// NewIncludeInline returns an inline include for ref located at segment.
func NewIncludeInline(ref Reference, segment text.Segment) *IncludeInline {
	return &IncludeInline{Reference: ref, Segment: segment}
}

func (n *IncludeInline) Kind() ast.NodeKind { return KindIncludeInline }

func (n *IncludeInline) IncludeReference() Reference { return n.Reference }

func (n *IncludeInline) SourceSegment() text.Segment { return n.Segment }

func (n *IncludeInline) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Title":  n.Title,
		"Target": n.Target,
	}, nil)
}

// Placeholder marks a {{name}} token.
type Placeholder struct {
	ast.BaseInline
	Name    string
	Raw     []byte
	Segment text.Segment
}

// NewPlaceholder returns a placeholder for name.
func NewPlaceholder(name string, raw []byte, segment text.Segment) *Placeholder {
	return &Placeholder{Name: name, Raw: raw, Segment: segment}
}

func (n *Placeholder) Kind() ast.NodeKind { return KindPlaceholder }

func (n *Placeholder) SourceSegment() text.Segment { return n.Segment }

func (n *Placeholder) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Name": n.Name}, nil)
}

// BrokenReference describes a reference that could not be resolved.
type BrokenReference struct {
	ast.BaseInline
	// Raw is the reference text as written by the author.
	Raw []byte
	// Target is the unresolved reference target.
	Target string
	// Block is true when the marker replaces a block level node.
	Block bool
	// Reason is the resolution error.
	Reason error
}

// NewBrokenReference builds the marker node for an unresolved include.
func NewBrokenReference(include Include, reason error) *BrokenReference {
	ref := include.IncludeReference()
	return &BrokenReference{
		Raw:    ref.Raw,
		Target: ref.Target,
		Block:  include.Type() != ast.TypeInline,
		Reason: reason,
	}
}

func (n *BrokenReference) Kind() ast.NodeKind { return KindBrokenReference }

func (n *BrokenReference) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Target": n.Target}, nil)
}
