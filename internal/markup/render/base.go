package render

import (
	"errors"
	"io"
	"sort"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"

	"github.com/goliatone/go-docmark/internal/markup/token"
)

// Handler renders one node. It follows goldmark's NodeRendererFunc contract
// and receives the per call context instead of the raw source.
type Handler func(w util.BufWriter, rc *Context, node ast.Node, entering bool) (ast.WalkStatus, error)

// BaseOptions configures the default handler table.
type BaseOptions struct {
	// XHTML emits self closing void elements (<br />).
	XHTML bool
	// Unsafe passes raw HTML through instead of omitting it.
	Unsafe bool
	// HardWraps renders soft line breaks as <br>.
	HardWraps bool
}

// Base is the default handler table: the goldmark HTML renderer, the GFM
// renderers and the dialect defaults.
type Base struct {
	opts     BaseOptions
	handlers map[ast.NodeKind]Handler
}

// NewBase collects the default handlers for opts.
func NewBase(opts BaseOptions) *Base {
	handlers := make(map[ast.NodeKind]Handler)
	for kind, fn := range harvest(opts) {
		handlers[kind] = adapt(fn)
	}
	handlers[token.KindIncludeBlock] = renderInclude
	handlers[token.KindIncludeInline] = renderInclude
	handlers[token.KindPlaceholder] = renderPlaceholder
	handlers[token.KindBrokenReference] = renderBrokenReference
	return &Base{opts: opts, handlers: handlers}
}

// Options returns the options the base was built with.
func (b *Base) Options() BaseOptions { return b.opts }

// Handler returns the default handler for kind.
func (b *Base) Handler(kind ast.NodeKind) (Handler, bool) {
	handler, ok := b.handlers[kind]
	return handler, ok
}

// Kinds lists the kinds with a default handler.
func (b *Base) Kinds() []ast.NodeKind {
	kinds := make([]ast.NodeKind, 0, len(b.handlers))
	for kind := range b.handlers {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

func adapt(fn renderer.NodeRendererFunc) Handler {
	return func(w util.BufWriter, rc *Context, node ast.Node, entering bool) (ast.WalkStatus, error) {
		return fn(w, rc.Source(), node, entering)
	}
}

var errHarvestOnly = errors.New("render: harvesting renderer cannot render")

// harvester stands in for goldmark's renderer so extensions register their
// node renderers with it. The collected options are replayed to build the
// handler table.
type harvester struct {
	options []renderer.Option
}

func (h *harvester) AddOptions(opts ...renderer.Option) {
	h.options = append(h.options, opts...)
}

func (h *harvester) Render(io.Writer, []byte, ast.Node) error {
	return errHarvestOnly
}

type funcTable map[ast.NodeKind]renderer.NodeRendererFunc

func (t funcTable) Register(kind ast.NodeKind, fn renderer.NodeRendererFunc) {
	t[kind] = fn
}

func harvest(opts BaseOptions) funcTable {
	rendererOptions := []renderer.Option{
		renderer.WithNodeRenderers(util.Prioritized(html.NewRenderer(), 1000)),
	}
	if opts.XHTML {
		rendererOptions = append(rendererOptions, html.WithXHTML())
	}
	if opts.Unsafe {
		rendererOptions = append(rendererOptions, html.WithUnsafe())
	}
	if opts.HardWraps {
		rendererOptions = append(rendererOptions, html.WithHardWraps())
	}

	h := &harvester{}
	goldmark.New(
		goldmark.WithRenderer(h),
		goldmark.WithRendererOptions(rendererOptions...),
		goldmark.WithExtensions(extension.GFM),
	)

	cfg := renderer.NewConfig()
	for _, opt := range h.options {
		opt.SetConfig(cfg)
	}
	cfg.NodeRenderers.Sort()

	// same registration order as goldmark: the lowest priority value wins
	table := funcTable{}
	for i := len(cfg.NodeRenderers) - 1; i >= 0; i-- {
		value := cfg.NodeRenderers[i].Value
		nr, ok := value.(renderer.NodeRenderer)
		if !ok {
			continue
		}
		if setter, ok := value.(renderer.SetOptioner); ok {
			for name, option := range cfg.Options {
				setter.SetOption(name, option)
			}
		}
		nr.RegisterFuncs(table)
	}
	return table
}
