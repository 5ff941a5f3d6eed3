package render

import (
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/util"

	"github.com/goliatone/go-docmark/internal/markup"
	"github.com/goliatone/go-docmark/internal/markup/token"
)

// MaxIncludeDepth bounds nested includes.
const MaxIncludeDepth = 8

// Includer resolves an include reference relative to the document being
// rendered and returns the rendered HTML of the included file.
type Includer interface {
	Include(rc *Context, ref token.Reference) (string, error)
}

// Context is the per call state threaded through every handler. It is owned
// by a single Markup call and never shared.
type Context struct {
	Tree *token.Tree
	// Tokens maps placeholder names to their replacement text.
	Tokens map[string]string
	Params Parameters
	// Dependencies collects the files read while rendering.
	Dependencies *markup.DependencySet
	Diagnostics  *markup.Diagnostics
	Includer     Includer
	// Identity names the root document the way the includer names resolved
	// files, so a self include is caught however the caller spelled the
	// path. Empty means Path.
	Identity string

	renderer *Renderer
	parents  []string
}

// Path is the logical path of the document being rendered.
func (rc *Context) Path() string {
	if rc.Tree == nil {
		return ""
	}
	return rc.Tree.Path()
}

// Source is the text of the document being rendered.
func (rc *Context) Source() []byte {
	if rc.Tree == nil {
		return nil
	}
	return rc.Tree.Source()
}

// Renderer returns the renderer driving this call.
func (rc *Context) Renderer() *Renderer { return rc.renderer }

// Depth is the number of includes between the root document and this one.
func (rc *Context) Depth() int { return len(rc.parents) }

// Visiting reports whether path is being rendered by this context or one of
// its parents.
func (rc *Context) Visiting(path string) bool {
	path = markup.NormalizePath(path)
	if path == rc.identity() {
		return true
	}
	for _, parent := range rc.parents {
		if parent == path {
			return true
		}
	}
	return false
}

// Child derives the context used to render an included tree. Collectors,
// tokens and parameters are shared with the parent.
func (rc *Context) Child(tree *token.Tree) *Context {
	child := *rc
	child.Tree = tree
	child.Identity = ""
	child.parents = append(append([]string(nil), rc.parents...), rc.identity())
	return &child
}

func (rc *Context) identity() string {
	if rc.Identity != "" {
		return markup.NormalizePath(rc.Identity)
	}
	return markup.NormalizePath(rc.Path())
}

// Handler returns the effective handler for kind, falling back to a no-op
// when neither the renderer nor the base knows the kind.
func (rc *Context) Handler(kind ast.NodeKind) Handler {
	if rc.renderer != nil {
		if handler, ok := rc.renderer.Handler(kind); ok {
			return handler
		}
	}
	return noop
}

// Fallback returns the base handler for kind, so a provider can wrap the
// default behavior.
func (rc *Context) Fallback(kind ast.NodeKind) Handler {
	if rc.renderer != nil && rc.renderer.base != nil {
		if handler, ok := rc.renderer.base.Handler(kind); ok {
			return handler
		}
	}
	return noop
}

// Report records diag against node, filling path and line.
func (rc *Context) Report(node ast.Node, diag markup.Diagnostic) {
	if rc.Diagnostics == nil {
		return
	}
	if diag.Path == "" {
		diag.Path = rc.Path()
	}
	if diag.Line == 0 && rc.Tree != nil && node != nil {
		diag.Line = rc.Tree.Line(node)
	}
	rc.Diagnostics.Report(diag)
}

func noop(util.BufWriter, *Context, ast.Node, bool) (ast.WalkStatus, error) {
	return ast.WalkContinue, nil
}
