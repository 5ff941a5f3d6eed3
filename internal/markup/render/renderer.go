package render

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

// Part is the rendering behavior a provider contributes for one token kind.
type Part struct {
	Kind    ast.NodeKind
	Handler Handler
}

// Provider contributes handlers for the token kinds it customizes. Parts is
// called once, when the renderer is created.
type Provider interface {
	Name() string
	Parts(params Parameters) ([]Part, error)
}

type funcProvider struct {
	name string
	fn   func(Parameters) ([]Part, error)
}

// NewProvider wraps fn as a named provider.
func NewProvider(name string, fn func(Parameters) ([]Part, error)) Provider {
	return funcProvider{name: name, fn: fn}
}

func (p funcProvider) Name() string { return p.name }

func (p funcProvider) Parts(params Parameters) ([]Part, error) {
	if p.fn == nil {
		return nil, nil
	}
	return p.fn(params)
}

// Renderer is the effective renderer: the base table with every provider
// override applied. It is immutable and safe for concurrent use.
type Renderer struct {
	base     *Base
	handlers map[ast.NodeKind]Handler
	owners   map[ast.NodeKind]string
	params   Parameters
}

// CreateRenderer applies providers over base in order. When two providers
// claim the same kind the later one wins. A provider that fails, or yields a
// part without handler or kind, aborts construction.
func CreateRenderer(base *Base, providers []Provider, params Parameters) (*Renderer, error) {
	if base == nil {
		base = NewBase(BaseOptions{Unsafe: true})
	}
	r := &Renderer{
		base:     base,
		handlers: make(map[ast.NodeKind]Handler, len(base.handlers)),
		owners:   make(map[ast.NodeKind]string),
		params:   params.Clone(),
	}
	for kind, handler := range base.handlers {
		r.handlers[kind] = handler
	}

	for i, provider := range providers {
		if provider == nil {
			return nil, fmt.Errorf("%w: provider #%d is nil", ErrInvalidProvider, i)
		}
		name := provider.Name()
		if sp, ok := provider.(SchemaProvider); ok {
			if err := validateParameters(name, sp.ParameterSchema(), r.params); err != nil {
				return nil, err
			}
		}
		parts, err := provider.Parts(r.params)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidProvider, name, err)
		}
		for _, part := range parts {
			if part.Kind == 0 {
				return nil, fmt.Errorf("%w: %s: part without token kind", ErrInvalidProvider, name)
			}
			if part.Handler == nil {
				return nil, fmt.Errorf("%w: %s: no handler for %s", ErrInvalidProvider, name, part.Kind)
			}
			r.handlers[part.Kind] = part.Handler
			r.owners[part.Kind] = name
		}
	}
	return r, nil
}

// Handler returns the effective handler for kind.
func (r *Renderer) Handler(kind ast.NodeKind) (Handler, bool) {
	handler, ok := r.handlers[kind]
	return handler, ok
}

// Owner returns the name of the provider whose handler is effective for
// kind, or "" when the base handler is used.
func (r *Renderer) Owner(kind ast.NodeKind) string {
	return r.owners[kind]
}

// Base returns the default handler table.
func (r *Renderer) Base() *Base { return r.base }

// Render writes the HTML of rc.Tree to w.
func (r *Renderer) Render(w io.Writer, rc *Context) error {
	if rc == nil || rc.Tree == nil {
		return ErrNoTree
	}
	rc.renderer = r
	if rc.Params == nil {
		rc.Params = r.params
	}
	call := renderer.NewRenderer(renderer.WithNodeRenderers(util.Prioritized(&callRenderer{handlers: r.handlers, rc: rc}, 1000)))
	return call.Render(w, rc.Tree.Source(), rc.Tree.Root())
}

// RenderString renders rc.Tree and returns the HTML.
func (r *Renderer) RenderString(rc *Context) (string, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, rc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Close releases the renderer. It holds no resources; Close exists so the
// renderer can be handled as an io.Closer by service owners.
func (r *Renderer) Close() error { return nil }

// String lists the kinds overridden by providers, for logging.
func (r *Renderer) String() string {
	overrides := make([]string, 0, len(r.owners))
	for kind, owner := range r.owners {
		overrides = append(overrides, kind.String()+"="+owner)
	}
	sort.Strings(overrides)
	return "render.Renderer{" + strings.Join(overrides, ",") + "}"
}

// callRenderer binds the handler table to one call context.
type callRenderer struct {
	handlers map[ast.NodeKind]Handler
	rc       *Context
}

func (c *callRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	for kind, handler := range c.handlers {
		handler := handler
		reg.Register(kind, func(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
			return handler(w, c.rc, node, entering)
		})
	}
}
