package engine

import (
	"bytes"
	"context"
	"fmt"

	"github.com/adrg/frontmatter"
	"github.com/google/uuid"

	"github.com/goliatone/go-docmark/internal/logging"
	"github.com/goliatone/go-docmark/internal/markup"
	"github.com/goliatone/go-docmark/internal/markup/render"
	"github.com/goliatone/go-docmark/internal/markup/token"
	"github.com/goliatone/go-docmark/pkg/interfaces"
)

// Engine compiles documents with the configuration of its builder. It keeps
// no state between calls.
type Engine struct {
	builder  *Builder
	renderer *render.Renderer
	logger   interfaces.Logger
}

// NewEngine binds an engine to b. A nil renderer selects the builder's
// effective renderer.
func NewEngine(b *Builder, r *render.Renderer) (*Engine, error) {
	if b == nil {
		return nil, ErrNilBuilder
	}
	if r == nil {
		r = b.renderer
	}
	return &Engine{builder: b, renderer: r, logger: b.logger}, nil
}

// Markup tokenizes, validates and renders source, attributed to the logical
// path. Unresolvable includes degrade to broken reference markers and
// diagnostics; only a blocking validation rule aborts the call.
func (e *Engine) Markup(ctx context.Context, source, path string, opts ...interfaces.MarkupOption) (*markup.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	callOpts := interfaces.ResolveMarkupOptions(opts...)
	logger := logging.WithDocumentContext(e.logger.WithContext(ctx), path, uuid.NewString())

	diags := &markup.Diagnostics{}
	body, metadata, offset, err := splitFrontMatter([]byte(source))
	if err != nil {
		diags.Report(markup.Diagnostic{
			Code:     markup.CodeFrontMatterMalformed,
			Severity: markup.SeverityWarning,
			Message:  err.Error(),
			Path:     path,
			Line:     1,
		})
	}

	tree := e.builder.tokenizer.Tokenize(path, body, token.WithLineOffset(offset))

	if !callOpts.SkipValidation {
		report := e.builder.chain.Validate(tree)
		diags.Extend(report.Diagnostics)
		if report.Fatal {
			logger.Warn("markup.engine.validation_failed", "rules", report.Rejected)
			return nil, validationError(&ValidationError{
				Path:        path,
				Rules:       report.Rejected,
				Diagnostics: report.Diagnostics,
			})
		}
	}

	deps := markup.NewDependencySet()
	rc := &render.Context{
		Tree:         tree,
		Tokens:       e.builder.opts.Tokens,
		Params:       e.builder.params,
		Dependencies: deps,
		Diagnostics:  diags,
		Includer:     &includer{builder: e.builder},
		Identity:     e.builder.resolver.Logical(path),
	}
	html, err := e.renderer.RenderString(rc)
	if err != nil {
		return nil, fmt.Errorf("markup: render %s: %w", path, err)
	}

	result := &markup.Result{
		HTML:         html,
		Dependencies: deps.Snapshot(),
		Diagnostics:  diags.List(),
		Metadata:     metadata,
	}
	logging.LogDiagnostics(logger, result.Diagnostics)
	logger.Debug("markup.engine.markup_completed",
		"dependencies", deps.Len(),
		"diagnostics", diags.Len(),
		"validated", !callOpts.SkipValidation,
	)
	return result, nil
}

// includer resolves includes for one Markup call.
type includer struct {
	builder *Builder
}

func (in *includer) Include(rc *render.Context, ref token.Reference) (string, error) {
	if rc.Depth() >= render.MaxIncludeDepth {
		return "", fmt.Errorf("%w: deeper than %d levels", render.ErrIncludeDepth, render.MaxIncludeDepth)
	}
	res, err := in.builder.resolver.Resolve(rc.Path(), ref.Target)
	if err != nil {
		return "", err
	}
	if rc.Visiting(res.Logical) {
		return "", fmt.Errorf("%w: %s", render.ErrIncludeCycle, res.Logical)
	}
	content, err := in.builder.resolver.Read(res)
	if err != nil {
		return "", err
	}
	if rc.Dependencies != nil {
		rc.Dependencies.Add(res.Logical)
	}

	body, _, offset, err := splitFrontMatter(content)
	if err != nil {
		body, offset = content, 0
	}
	tree := in.builder.tokenizer.Tokenize(res.Logical, body,
		token.WithLineOffset(offset),
		token.WithHeadingIDs(rc.Tree.HeadingIDs()),
	)
	return rc.Renderer().RenderString(rc.Child(tree))
}

var frontMatterDelimiters = [][]byte{[]byte("---"), []byte("+++"), []byte(";;;")}

// splitFrontMatter strips a leading front matter block. It returns the body,
// the decoded metadata (nil when absent) and the number of lines removed.
// On a malformed block the source is returned unchanged with the error.
func splitFrontMatter(source []byte) ([]byte, map[string]any, int, error) {
	if !hasFrontMatter(source) {
		return source, nil, 0, nil
	}
	meta := map[string]any{}
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return source, nil, 0, fmt.Errorf("front matter: %w", err)
	}
	offset := 0
	if bytes.HasSuffix(source, body) {
		offset = bytes.Count(source[:len(source)-len(body)], []byte("\n"))
	}
	if len(meta) == 0 {
		meta = nil
	}
	return body, meta, offset, nil
}

// hasFrontMatter reports whether source opens with a delimiter line that is
// followed by a non blank line and later closed by the same delimiter. A
// leading thematic break followed by a blank line is left to the body.
func hasFrontMatter(source []byte) bool {
	for _, delim := range frontMatterDelimiters {
		if !bytes.HasPrefix(source, delim) {
			continue
		}
		lines := bytes.Split(source, []byte("\n"))
		if len(lines) < 3 || len(bytes.TrimSpace(lines[0])) != len(delim) {
			return false
		}
		if len(bytes.TrimSpace(lines[1])) == 0 {
			return false
		}
		for _, line := range lines[1:] {
			if bytes.Equal(bytes.TrimSpace(line), delim) {
				return true
			}
		}
		return false
	}
	return false
}
