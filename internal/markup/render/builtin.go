package render

import (
	"errors"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/util"

	"github.com/goliatone/go-docmark/internal/markup"
	"github.com/goliatone/go-docmark/internal/markup/token"
)

// Defaults used by the dialect handlers and built-in providers.
const (
	DefaultBrokenReferenceClass = "broken-reference"
	DefaultCodeClassPrefix      = "lang-"
)

func renderInclude(w util.BufWriter, rc *Context, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	include, ok := node.(token.Include)
	if !ok {
		return ast.WalkContinue, nil
	}
	if rc.Includer == nil {
		return renderBroken(w, rc, include, ErrNoIncluder)
	}

	html, err := rc.Includer.Include(rc, include.IncludeReference())
	if err != nil {
		return renderBroken(w, rc, include, err)
	}
	if include.Type() == ast.TypeInline {
		fragment, ok := inlineFragment(html)
		if !ok {
			return renderBroken(w, rc, include, ErrInlineBlockContent)
		}
		html = fragment
	}
	_, _ = w.WriteString(html)
	return ast.WalkSkipChildren, nil
}

func renderBroken(w util.BufWriter, rc *Context, include token.Include, reason error) (ast.WalkStatus, error) {
	code := markup.CodeIncludeUnresolved
	switch {
	case errors.Is(reason, ErrIncludeCycle), errors.Is(reason, ErrIncludeDepth):
		code = markup.CodeIncludeCycle
	case errors.Is(reason, ErrInlineBlockContent):
		code = markup.CodeIncludeInlineBlock
	}
	rc.Report(include, markup.Diagnostic{
		Code:     code,
		Severity: markup.SeverityWarning,
		Message:  "cannot include " + quoteTarget(include.IncludeReference().Target) + ": " + reason.Error(),
	})

	marker := token.NewBrokenReference(include, reason)
	handler := rc.Handler(token.KindBrokenReference)
	if _, err := handler(w, rc, marker, true); err != nil {
		return ast.WalkStop, err
	}
	if _, err := handler(w, rc, marker, false); err != nil {
		return ast.WalkStop, err
	}
	return ast.WalkSkipChildren, nil
}

func quoteTarget(target string) string {
	if target == "" {
		return `""`
	}
	return `"` + target + `"`
}

// inlineFragment strips the paragraph an inline include renders into, so
// the included text flows into the surrounding line. It fails when the
// include produced anything other than one paragraph, since block elements
// cannot nest inside the enclosing one.
func inlineFragment(html string) (string, bool) {
	trimmed := strings.TrimSpace(html)
	if trimmed == "" {
		return "", true
	}
	if !strings.HasPrefix(trimmed, "<p") || !strings.HasSuffix(trimmed, "</p>") {
		return "", false
	}
	if c := trimmed[2]; c != '>' && c != ' ' {
		return "", false
	}
	open := strings.IndexByte(trimmed, '>')
	inner := trimmed[open+1 : len(trimmed)-len("</p>")]
	if strings.Contains(inner, "</p>") {
		return "", false
	}
	return inner, true
}

func renderBrokenReference(w util.BufWriter, rc *Context, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		writeBrokenReference(w, node, DefaultBrokenReferenceClass)
	}
	return ast.WalkContinue, nil
}

func writeBrokenReference(w util.BufWriter, node ast.Node, class string) {
	broken, ok := node.(*token.BrokenReference)
	if !ok {
		return
	}
	tag := "span"
	if broken.Block {
		tag = "div"
	}
	_, _ = w.WriteString("<" + tag + ` class="`)
	_, _ = w.Write(util.EscapeHTML([]byte(class)))
	_, _ = w.WriteString(`" data-target="`)
	_, _ = w.Write(util.EscapeHTML([]byte(broken.Target)))
	_, _ = w.WriteString(`">`)
	_, _ = w.Write(util.EscapeHTML(broken.Raw))
	_, _ = w.WriteString("</" + tag + ">")
	if broken.Block {
		_ = w.WriteByte('\n')
	}
}

func renderPlaceholder(w util.BufWriter, rc *Context, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	placeholder, ok := node.(*token.Placeholder)
	if !ok {
		return ast.WalkContinue, nil
	}
	if value, found := rc.Tokens[placeholder.Name]; found {
		_, _ = w.Write(util.EscapeHTML([]byte(value)))
	} else {
		_, _ = w.Write(util.EscapeHTML(placeholder.Raw))
	}
	return ast.WalkContinue, nil
}

// BrokenReferenceProvider renders unresolved references with a configurable
// class (parameter brokenReferenceClass).
type BrokenReferenceProvider struct{}

func (BrokenReferenceProvider) Name() string { return "broken-reference" }

func (BrokenReferenceProvider) ParameterSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			ParamBrokenReferenceClass: map[string]any{
				"type":    "string",
				"pattern": `^[A-Za-z_][A-Za-z0-9_\- ]*$`,
			},
		},
	}
}

func (BrokenReferenceProvider) Parts(params Parameters) ([]Part, error) {
	class := params.String(ParamBrokenReferenceClass, DefaultBrokenReferenceClass)
	return []Part{{
		Kind: token.KindBrokenReference,
		Handler: func(w util.BufWriter, rc *Context, node ast.Node, entering bool) (ast.WalkStatus, error) {
			if entering {
				writeBrokenReference(w, node, class)
			}
			return ast.WalkContinue, nil
		},
	}}, nil
}

// CodeLanguageProvider renders fenced code with a language as
// <pre data-lang="go"><code class="lang-go">. The class prefix is read from
// codeClassPrefix. Blocks without language use the base handler.
type CodeLanguageProvider struct{}

func (CodeLanguageProvider) Name() string { return "code-language" }

func (CodeLanguageProvider) ParameterSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			ParamCodeClassPrefix: map[string]any{
				"type":      "string",
				"maxLength": 32,
			},
		},
	}
}

func (CodeLanguageProvider) Parts(params Parameters) ([]Part, error) {
	prefix := params.String(ParamCodeClassPrefix, DefaultCodeClassPrefix)
	return []Part{{
		Kind: ast.KindFencedCodeBlock,
		Handler: func(w util.BufWriter, rc *Context, node ast.Node, entering bool) (ast.WalkStatus, error) {
			block, ok := node.(*ast.FencedCodeBlock)
			if !ok {
				return rc.Fallback(ast.KindFencedCodeBlock)(w, rc, node, entering)
			}
			source := rc.Source()
			language := block.Language(source)
			if language == nil {
				return rc.Fallback(ast.KindFencedCodeBlock)(w, rc, node, entering)
			}
			if !entering {
				_, _ = w.WriteString("</code></pre>\n")
				return ast.WalkContinue, nil
			}
			escaped := util.EscapeHTML(language)
			_, _ = w.WriteString(`<pre data-lang="`)
			_, _ = w.Write(escaped)
			_, _ = w.WriteString(`"><code class="`)
			_, _ = w.Write(util.EscapeHTML([]byte(prefix)))
			_, _ = w.Write(escaped)
			_, _ = w.WriteString(`">`)
			lines := block.Lines()
			for i := 0; i < lines.Len(); i++ {
				line := lines.At(i)
				_, _ = w.Write(util.EscapeHTML(line.Value(source)))
			}
			return ast.WalkContinue, nil
		},
	}}, nil
}
