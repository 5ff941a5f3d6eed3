package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-docmark/internal/markup"
	"github.com/goliatone/go-docmark/pkg/interfaces"
)

// Names of the built-in service providers.
const (
	ServiceLatest = "dfm-latest"
	ServiceLegacy = "dfm-legacy"
)

// ServiceParameters configure a service created by a ServiceProvider.
type ServiceParameters struct {
	BaseDir         string
	TemplateDir     string
	FallbackFolders []string
	Tokens          map[string]string
	Extensions      Extensions
	// Options overrides DefaultOptions when set. Directories, folders and
	// tokens above take precedence over the ones it carries.
	Options   *Options
	Logger    interfaces.Logger
	CacheSize int
	// RawHTML passes inline HTML through the base renderer.
	RawHTML bool
}

// ServiceProvider creates markup services of one dialect flavor.
type ServiceProvider interface {
	Name() string
	CreateService(params ServiceParameters) (*Service, error)
}

// Service is a named builder plus the engine bound to it. It implements
// interfaces.MarkupService.
type Service struct {
	name    string
	builder *Builder
	engine  *Engine
}

var _ interfaces.MarkupService = (*Service)(nil)

// NewService wraps b under name.
func NewService(name string, b *Builder) (*Service, error) {
	e, err := NewEngine(b, nil)
	if err != nil {
		return nil, err
	}
	return &Service{name: name, builder: b, engine: e}, nil
}

func (s *Service) Name() string { return s.name }

// Builder returns the frozen builder behind the service.
func (s *Service) Builder() *Builder { return s.builder }

func (s *Service) Markup(ctx context.Context, source, path string, opts ...interfaces.MarkupOption) (*markup.Result, error) {
	return s.engine.Markup(ctx, source, path, opts...)
}

func (s *Service) Close() error {
	return s.builder.Close()
}

type dialectProvider struct {
	name   string
	legacy bool
}

func (p dialectProvider) Name() string { return p.name }

func (p dialectProvider) CreateService(params ServiceParameters) (*Service, error) {
	opts := DefaultOptions()
	if params.Options != nil {
		opts = params.Options.clone()
	}
	opts.LegacyMode = p.legacy
	if params.BaseDir != "" {
		opts.BaseDir = params.BaseDir
	}
	if params.TemplateDir != "" {
		opts.TemplateDir = params.TemplateDir
	}
	if len(params.FallbackFolders) > 0 {
		opts.FallbackFolders = append([]string(nil), params.FallbackFolders...)
	}
	if len(params.Tokens) > 0 {
		opts.Tokens = params.Tokens
	}

	builderOpts := []BuilderOption{WithLogger(params.Logger)}
	if params.CacheSize != 0 {
		builderOpts = append(builderOpts, WithCacheSize(params.CacheSize))
	}
	if params.RawHTML {
		builderOpts = append(builderOpts, WithRawHTML(true))
	}
	b, err := NewBuilder(opts, params.Extensions, builderOpts...)
	if err != nil {
		return nil, err
	}
	return NewService(p.name, b)
}

// LatestProvider creates services for the current dialect.
func LatestProvider() ServiceProvider { return dialectProvider{name: ServiceLatest} }

// LegacyProvider creates services with legacy mode enabled.
func LegacyProvider() ServiceProvider { return dialectProvider{name: ServiceLegacy, legacy: true} }

// Registry maps service names to providers. The empty name selects
// ServiceLatest.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]ServiceProvider
}

// NewRegistry returns a registry holding the built-in providers.
func NewRegistry() *Registry {
	r := &Registry{providers: make(map[string]ServiceProvider)}
	_ = r.Register(LatestProvider())
	_ = r.Register(LegacyProvider())
	return r
}

// Register adds provider under its name.
func (r *Registry) Register(provider ServiceProvider) error {
	if provider == nil {
		return fmt.Errorf("%w: nil provider", ErrUnknownService)
	}
	name := strings.TrimSpace(provider.Name())
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.providers[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateService, name)
	}
	r.providers[name] = provider
	return nil
}

// Lookup returns the provider registered under name.
func (r *Registry) Lookup(name string) (ServiceProvider, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = ServiceLatest
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	provider, ok := r.providers[name]
	return provider, ok
}

// Names lists the registered provider names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CreateService creates a service with the provider registered under name.
func (r *Registry) CreateService(name string, params ServiceParameters) (*Service, error) {
	provider, ok := r.Lookup(name)
	if !ok {
		return nil, configError(fmt.Errorf("%w: %q", ErrUnknownService, name))
	}
	return provider.CreateService(params)
}
