package engine

import (
	"strings"

	"github.com/goliatone/go-docmark/internal/markup/render"
	"github.com/goliatone/go-docmark/internal/markup/validation"
)

// Customizer adjusts builder configuration once, before the first engine is
// created.
type Customizer interface {
	Customize(draft *Draft, params render.Parameters) error
}

// CustomizerFunc adapts a function into a Customizer.
type CustomizerFunc func(draft *Draft, params render.Parameters) error

func (f CustomizerFunc) Customize(draft *Draft, params render.Parameters) error {
	return f(draft, params)
}

// Draft is the mutable configuration customizers operate on. It is only
// valid during builder construction; changes made after the builder is
// frozen are ignored.
type Draft struct {
	opts       Options
	params     render.Parameters
	validators []validation.Rule
	providers  []render.Provider
	frozen     bool
}

func newDraft(opts Options, ext Extensions) *Draft {
	params := ext.Parameters.Clone()
	opts = opts.clone()

	// loosely typed parameters override options only when well formed
	if folders, ok := params.StringSlice(render.ParamFallbackFolders); ok {
		opts.FallbackFolders = appendFolders(opts.FallbackFolders, folders...)
	}
	opts.ShouldFixID = params.Bool(render.ParamShouldFixID, opts.ShouldFixID)

	d := &Draft{opts: opts, params: params}
	for _, rule := range ext.Validators {
		d.AddValidator(rule)
	}
	for _, provider := range ext.Providers {
		d.AddProvider(provider)
	}
	return d
}

// Options returns a copy of the current options.
func (d *Draft) Options() Options { return d.opts.clone() }

// SetOptions replaces the options.
func (d *Draft) SetOptions(opts Options) {
	if d.frozen {
		return
	}
	d.opts = opts.clone()
}

// AddFallbackFolder appends folder to the include search order.
func (d *Draft) AddFallbackFolder(folder string) {
	if d.frozen {
		return
	}
	d.opts.FallbackFolders = appendFolders(d.opts.FallbackFolders, folder)
}

// SetToken configures the replacement for the {{name}} placeholder.
func (d *Draft) SetToken(name, value string) {
	if d.frozen || strings.TrimSpace(name) == "" {
		return
	}
	if d.opts.Tokens == nil {
		d.opts.Tokens = make(map[string]string)
	}
	d.opts.Tokens[name] = value
}

// SetParameter stores a parameter consumed by render providers.
func (d *Draft) SetParameter(key string, value any) {
	if d.frozen {
		return
	}
	d.params[key] = value
}

// Parameters returns a copy of the current parameters.
func (d *Draft) Parameters() render.Parameters { return d.params.Clone() }

// AddValidator appends a non blocking rule.
func (d *Draft) AddValidator(rule validation.Rule) {
	if d.frozen || rule == nil {
		return
	}
	d.validators = append(d.validators, rule)
}

// AddBlockingValidator appends a rule whose errors abort compilation.
func (d *Draft) AddBlockingValidator(rule validation.Rule) {
	d.AddValidator(validation.Blocking(rule))
}

// Validators returns the rules registered so far.
func (d *Draft) Validators() []validation.Rule {
	return append([]validation.Rule(nil), d.validators...)
}

// AddProvider appends a render part provider. Later providers take
// precedence.
func (d *Draft) AddProvider(provider render.Provider) {
	if d.frozen || provider == nil {
		return
	}
	d.providers = append(d.providers, provider)
}

// Providers returns the providers registered so far.
func (d *Draft) Providers() []render.Provider {
	return append([]render.Provider(nil), d.providers...)
}

func (d *Draft) freeze() {
	d.frozen = true
}

func appendFolders(folders []string, extra ...string) []string {
	for _, folder := range extra {
		folder = strings.TrimSpace(folder)
		if folder == "" {
			continue
		}
		duplicate := false
		for _, existing := range folders {
			if existing == folder {
				duplicate = true
				break
			}
		}
		if !duplicate {
			folders = append(folders, folder)
		}
	}
	return folders
}
