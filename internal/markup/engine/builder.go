package engine

import (
	"fmt"

	"github.com/goliatone/go-docmark/internal/logging"
	"github.com/goliatone/go-docmark/internal/markup/render"
	"github.com/goliatone/go-docmark/internal/markup/resolve"
	"github.com/goliatone/go-docmark/internal/markup/token"
	"github.com/goliatone/go-docmark/internal/markup/validation"
	"github.com/goliatone/go-docmark/pkg/interfaces"
)

// Builder holds the frozen configuration shared by every engine it creates:
// options, validator chain, effective renderer and include resolver.
type Builder struct {
	opts      Options
	params    render.Parameters
	chain     *validation.Chain
	renderer  *render.Renderer
	tokenizer *token.Tokenizer
	resolver  *resolve.Resolver
	logger    interfaces.Logger
}

// NewBuilder builds the configuration in two phases. Defaults are collected
// from opts and ext, then every customizer runs once in registration order.
// The resulting state is frozen. Configuration failures are reported before
// any document is compiled.
func NewBuilder(opts Options, ext Extensions, options ...BuilderOption) (*Builder, error) {
	cfg := builderConfig{
		logger:    logging.NoOp(),
		cacheSize: resolve.DefaultCacheSize,
		unsafe:    true,
	}
	for _, option := range options {
		if option != nil {
			option(&cfg)
		}
	}

	draft := newDraft(opts, ext)
	for i, customizer := range ext.Customizers {
		if customizer == nil {
			continue
		}
		if err := customizer.Customize(draft, draft.Parameters()); err != nil {
			return nil, configError(fmt.Errorf("customizer #%d: %w", i, err))
		}
	}
	draft.freeze()

	final := draft.Options()
	params := draft.Parameters()

	resolver, err := resolve.New(resolve.Config{
		BaseDir:         final.BaseDir,
		FallbackFolders: final.FallbackFolders,
		CacheSize:       cfg.cacheSize,
	})
	if err != nil {
		return nil, configError(err)
	}

	base := render.NewBase(render.BaseOptions{XHTML: final.XHTML, Unsafe: cfg.unsafe})
	effective, err := render.CreateRenderer(base, draft.Providers(), params)
	if err != nil {
		return nil, configError(err)
	}

	b := &Builder{
		opts:     final,
		params:   params,
		chain:    validation.Combine(draft.Validators()...),
		renderer: effective,
		tokenizer: token.NewTokenizer(token.Options{
			LegacyMode:       final.LegacyMode,
			ExportSourceInfo: final.ExportSourceInfo,
			ShouldFixID:      final.ShouldFixID,
		}),
		resolver: resolver,
		logger:   cfg.logger,
	}
	b.logger.Debug("markup.builder.ready",
		"validators", b.chain.Len(),
		"providers", len(draft.Providers()),
		"fallback_folders", len(final.FallbackFolders),
		"legacy_mode", final.LegacyMode,
	)
	return b, nil
}

// Options returns a copy of the frozen options.
func (b *Builder) Options() Options { return b.opts.clone() }

// Parameters returns a copy of the shared parameters.
func (b *Builder) Parameters() render.Parameters { return b.params.Clone() }

// Validators returns the combined validator chain.
func (b *Builder) Validators() *validation.Chain { return b.chain }

// Renderer returns the effective renderer.
func (b *Builder) Renderer() *render.Renderer { return b.renderer }

// Resolver returns the include resolver.
func (b *Builder) Resolver() *resolve.Resolver { return b.resolver }

// Engine returns an engine bound to the builder and its effective renderer.
func (b *Builder) Engine() *Engine {
	e, _ := NewEngine(b, nil)
	return e
}

// Close drops cached include contents and closes the renderer.
func (b *Builder) Close() error {
	b.resolver.Purge()
	return b.renderer.Close()
}
