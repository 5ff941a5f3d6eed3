// Package engine wires the tokenizer, validator chain, renderer and include
// resolver into the markdown compilation engine.
//
// A Builder is constructed once per configuration: defaults are collected
// into a Draft, customizers run against it in registration order and the
// result is frozen. Engines spawned from the builder share the frozen state
// and may compile documents concurrently.
package engine

import (
	"maps"

	"github.com/goliatone/go-docmark/internal/markup/render"
	"github.com/goliatone/go-docmark/internal/markup/validation"
	"github.com/goliatone/go-docmark/pkg/interfaces"
)

// Options is the engine configuration.
type Options struct {
	// LegacyMode accepts the older heading syntax without a space after the
	// hashes.
	LegacyMode bool
	// ShouldFixID prefixes generated heading anchors that do not start with
	// a letter.
	ShouldFixID bool
	// ExportSourceInfo retains token spans and emits data-source* attributes.
	ExportSourceInfo bool
	// XHTML emits self closing void elements.
	XHTML bool
	// BaseDir is the root logical paths are relative to.
	BaseDir string
	// TemplateDir is where the site templates live. The engine only carries
	// it for customizers and providers.
	TemplateDir string
	// FallbackFolders are searched, in order, for includes not found next to
	// the document or under BaseDir.
	FallbackFolders []string
	// Tokens maps placeholder names to replacement text.
	Tokens map[string]string
}

// DefaultOptions returns the configuration used by the dfm-latest service.
func DefaultOptions() Options {
	return Options{
		ShouldFixID:      true,
		ExportSourceInfo: true,
		XHTML:            true,
	}
}

func (o Options) clone() Options {
	out := o
	out.FallbackFolders = append([]string(nil), o.FallbackFolders...)
	out.Tokens = maps.Clone(o.Tokens)
	return out
}

// Extensions are the caller supplied extension lists, in registration order.
type Extensions struct {
	Validators  []validation.Rule
	Providers   []render.Provider
	Customizers []Customizer
	// Parameters are shared by providers, customizers and the builder.
	Parameters render.Parameters
}

type builderConfig struct {
	logger    interfaces.Logger
	cacheSize int
	unsafe    bool
}

// BuilderOption tunes builder construction.
type BuilderOption func(*builderConfig)

// WithLogger sets the logger used by the builder and its engines.
func WithLogger(logger interfaces.Logger) BuilderOption {
	return func(c *builderConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithCacheSize bounds the include content cache. A negative size disables
// the cache.
func WithCacheSize(size int) BuilderOption {
	return func(c *builderConfig) {
		c.cacheSize = size
	}
}

// WithRawHTML controls whether raw HTML in documents is passed through.
// Enabled by default.
func WithRawHTML(enabled bool) BuilderOption {
	return func(c *builderConfig) {
		c.unsafe = enabled
	}
}
