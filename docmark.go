// Package docmark compiles an extended markdown dialect into HTML and tracks
// the files each document depends on.
package docmark

import (
	"context"
	"errors"

	"github.com/goliatone/go-docmark/internal/commands/markupcmd"
	"github.com/goliatone/go-docmark/internal/di"
	"github.com/goliatone/go-docmark/internal/markup/engine"
	"github.com/goliatone/go-docmark/internal/markup/render"
	"github.com/goliatone/go-docmark/internal/markup/token"
	"github.com/goliatone/go-docmark/internal/markup/validation"
	"github.com/goliatone/go-docmark/pkg/interfaces"
)

// ErrDependencyTrackingDisabled is returned by AffectedDocuments when no
// dependency store is configured.
var ErrDependencyTrackingDisabled = errors.New("docmark: dependency tracking is disabled")

type (
	// MarkupService exports the markup service contract.
	MarkupService = interfaces.MarkupService
	MarkupResult  = interfaces.MarkupResult
	MarkupOption  = interfaces.MarkupOption
	Diagnostic    = interfaces.Diagnostic
	Severity      = interfaces.Severity

	// Extensions bundles validators, render part providers and customizers.
	Extensions = engine.Extensions
	Customizer = engine.Customizer
	// CustomizerFunc adapts a function to Customizer.
	CustomizerFunc = engine.CustomizerFunc
	Draft          = engine.Draft
	EngineOptions  = engine.Options

	// Tree is a tokenized document handed to validation rules.
	Tree       = token.Tree
	Rule       = validation.Rule
	RenderPart = render.Part
	// PartProvider contributes render handlers per token kind.
	PartProvider = render.Provider
	Parameters   = render.Parameters

	CompileSummary  = markupcmd.CompileSummary
	DocumentOutcome = markupcmd.DocumentOutcome
)

const (
	SeverityInfo    = interfaces.SeverityInfo
	SeverityWarning = interfaces.SeverityWarning
	SeverityError   = interfaces.SeverityError
)

// WithValidation toggles token tree validation for a single Markup call.
func WithValidation(enabled bool) MarkupOption {
	return interfaces.WithValidation(enabled)
}

// NewRule adapts fn into a named validation rule.
func NewRule(name string, fn func(tree *Tree) []Diagnostic) Rule {
	return validation.NewRule(name, fn)
}

// Blocking marks rule as fatal: its error diagnostics abort compilation.
func Blocking(rule Rule) Rule {
	return validation.Blocking(rule)
}

// Module is the top level docmark runtime facade.
type Module struct {
	container *di.Container
}

// New constructs a module using the provided configuration and optional DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Markup returns the configured markup service.
func (m *Module) Markup() MarkupService {
	return m.container.MarkupService()
}

// Compile compiles source under the logical path.
func (m *Module) Compile(ctx context.Context, source, path string, opts ...MarkupOption) (*MarkupResult, error) {
	return m.container.MarkupService().Markup(ctx, source, path, opts...)
}

// CompileDocument reads path below the base directory, compiles it and
// records its dependencies when tracking is enabled.
func (m *Module) CompileDocument(ctx context.Context, path string) (DocumentOutcome, error) {
	var outcome DocumentOutcome
	err := m.container.CompileDocumentHandler().Execute(ctx, markupcmd.CompileDocumentCommand{
		Path:    path,
		Outcome: &outcome,
	})
	return outcome, err
}

// CompileDirectory compiles every document below directory matching pattern.
func (m *Module) CompileDirectory(ctx context.Context, directory, pattern string) (CompileSummary, error) {
	var summary CompileSummary
	err := m.container.CompileDirectoryHandler().Execute(ctx, markupcmd.CompileDirectoryCommand{
		Directory: directory,
		Pattern:   pattern,
		Summary:   &summary,
	})
	return summary, err
}

// AffectedDocuments lists the documents to recompile when files change.
func (m *Module) AffectedDocuments(ctx context.Context, files ...string) ([]string, error) {
	handler := m.container.AffectedDocumentsHandler()
	if handler == nil {
		return nil, ErrDependencyTrackingDisabled
	}
	var docs []string
	err := handler.Execute(ctx, markupcmd.AffectedDocumentsQuery{Files: files, Result: &docs})
	return docs, err
}

// Close releases the module resources.
func (m *Module) Close() error {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Close()
}
