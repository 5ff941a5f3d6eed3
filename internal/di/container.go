package di

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-docmark/internal/commands"
	"github.com/goliatone/go-docmark/internal/commands/markupcmd"
	"github.com/goliatone/go-docmark/internal/depstore"
	"github.com/goliatone/go-docmark/internal/logging"
	"github.com/goliatone/go-docmark/internal/logging/console"
	"github.com/goliatone/go-docmark/internal/logging/gologger"
	"github.com/goliatone/go-docmark/internal/markup/engine"
	"github.com/goliatone/go-docmark/internal/runtimeconfig"
	"github.com/goliatone/go-docmark/pkg/interfaces"
)

const migrateTimeout = 10 * time.Second

// Container wires the docmark modules from a runtime configuration.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	registry       *engine.Registry
	extensions     engine.Extensions

	service *engine.Service

	sqlDB   *sql.DB
	bunDB   *bun.DB
	ownsDB  bool
	store   *depstore.Store
	storeIf interfaces.DependencyStore

	compileDocument  *markupcmd.CompileDocumentHandler
	compileDirectory *markupcmd.CompileDirectoryHandler
	affected         *markupcmd.AffectedDocumentsHandler
}

// Option mutates the container before services are built.
type Option func(*Container)

// WithLoggerProvider overrides the provider derived from the logging config.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		if provider != nil {
			c.loggerProvider = provider
		}
	}
}

// WithRegistry overrides the markup service registry.
func WithRegistry(registry *engine.Registry) Option {
	return func(c *Container) {
		if registry != nil {
			c.registry = registry
		}
	}
}

// WithExtensions registers validators, render part providers and customizers
// with the markup service.
func WithExtensions(ext engine.Extensions) Option {
	return func(c *Container) {
		c.extensions = ext
	}
}

// WithSQLDB supplies the database used by the dependency store. The driver
// is taken from Config.Dependencies.Driver.
func WithSQLDB(db *sql.DB) Option {
	return func(c *Container) {
		c.sqlDB = db
	}
}

// WithBunDB supplies a ready bun database for the dependency store.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithDependencyStore overrides the dependency store entirely.
func WithDependencyStore(store interfaces.DependencyStore) Option {
	return func(c *Container) {
		c.storeIf = store
	}
}

// NewContainer creates a container with the provided configuration.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{
		Config:   cfg,
		registry: engine.NewRegistry(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLoggerProvider(); err != nil {
		return nil, err
	}
	if err := c.configureMarkup(); err != nil {
		return nil, err
	}
	if err := c.configureDependencies(); err != nil {
		_ = c.service.Close()
		return nil, err
	}
	if err := c.configureCommands(); err != nil {
		_ = c.Close()
		return nil, err
	}

	logging.ModuleLogger(c.loggerProvider, "docmark").Info("docmark.container.ready",
		"provider", c.service.Name(),
		"dependency_store", c.storeIf != nil,
	)
	return c, nil
}

func (c *Container) configureLoggerProvider() error {
	if c.loggerProvider != nil {
		return nil
	}
	if !c.Config.Features.Logger {
		return nil
	}

	logCfg := c.Config.Logging
	switch strings.ToLower(strings.TrimSpace(logCfg.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     logCfg.Level,
			Format:    logCfg.Format,
			AddSource: logCfg.AddSource,
			Focus:     logCfg.Focus,
		})
		if err != nil {
			return err
		}
		c.loggerProvider = provider
	default:
		level, _ := console.ParseLevel(logCfg.Level)
		c.loggerProvider = console.NewProvider(console.Options{MinLevel: &level})
	}
	return nil
}

func (c *Container) configureMarkup() error {
	markupCfg := c.Config.Markup

	ext := c.extensions
	if len(markupCfg.Parameters) > 0 {
		params := make(map[string]any, len(markupCfg.Parameters)+len(ext.Parameters))
		for key, value := range markupCfg.Parameters {
			params[key] = value
		}
		for key, value := range ext.Parameters {
			params[key] = value
		}
		ext.Parameters = params
	}

	service, err := c.registry.CreateService(markupCfg.Provider, engine.ServiceParameters{
		BaseDir:         markupCfg.BaseDir,
		TemplateDir:     markupCfg.TemplateDir,
		FallbackFolders: markupCfg.FallbackFolders,
		Tokens:          markupCfg.Tokens,
		Extensions:      ext,
		Options: &engine.Options{
			LegacyMode:       markupCfg.LegacyMode,
			ShouldFixID:      markupCfg.ShouldFixID,
			ExportSourceInfo: markupCfg.ExportSourceInfo,
			XHTML:            markupCfg.XHTML,
		},
		Logger:    logging.EngineLogger(c.loggerProvider),
		CacheSize: c.Config.IncludeCacheSize(),
		RawHTML:   markupCfg.RawHTML,
	})
	if err != nil {
		return err
	}
	c.service = service
	return nil
}

func (c *Container) configureDependencies() error {
	if c.storeIf != nil {
		return nil
	}

	storeLogger := logging.StoreLogger(c.loggerProvider)
	switch {
	case c.bunDB != nil:
		c.store = depstore.New(c.bunDB, depstore.WithLogger(storeLogger))
	case c.sqlDB != nil || c.Config.Dependencies.Enabled:
		driver := c.Config.Dependencies.Driver
		if c.sqlDB == nil {
			db, err := sql.Open(driverName(driver), c.Config.Dependencies.DSN)
			if err != nil {
				return fmt.Errorf("di: open dependency store: %w", err)
			}
			c.sqlDB = db
			c.ownsDB = true
		}
		store, err := depstore.Open(c.sqlDB, driver, depstore.WithLogger(storeLogger))
		if err != nil {
			if c.ownsDB {
				_ = c.sqlDB.Close()
			}
			return err
		}
		c.store = store
	default:
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), migrateTimeout)
	defer cancel()
	if err := c.store.Migrate(ctx); err != nil {
		if c.ownsDB {
			_ = c.store.Close()
		}
		return err
	}
	c.storeIf = c.store
	return nil
}

func (c *Container) configureCommands() error {
	logger := commands.CommandLogger(c.loggerProvider, "markup")
	cfg := markupcmd.Config{
		BaseDir:   c.Config.Markup.BaseDir,
		OutputDir: c.Config.Commands.OutputDir,
		Workers:   c.Config.Commands.Workers,
	}

	document, err := markupcmd.NewCompileDocumentHandler(c.service, c.storeIf, cfg, logger,
		commands.WithTimeout[markupcmd.CompileDocumentCommand](c.Config.Commands.Timeout))
	if err != nil {
		return err
	}
	directory, err := markupcmd.NewCompileDirectoryHandler(c.service, c.storeIf, cfg, logger)
	if err != nil {
		return err
	}
	c.compileDocument = document
	c.compileDirectory = directory

	if c.storeIf != nil {
		affected, err := markupcmd.NewAffectedDocumentsHandler(c.storeIf, logger)
		if err != nil {
			return err
		}
		c.affected = affected
	}
	return nil
}

// LoggerProvider returns the configured provider, nil when logging is disabled.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// MarkupService returns the configured markup service.
func (c *Container) MarkupService() *engine.Service {
	return c.service
}

// DependencyStore returns the dependency store, nil when tracking is disabled.
func (c *Container) DependencyStore() interfaces.DependencyStore {
	return c.storeIf
}

func (c *Container) CompileDocumentHandler() *markupcmd.CompileDocumentHandler {
	return c.compileDocument
}

func (c *Container) CompileDirectoryHandler() *markupcmd.CompileDirectoryHandler {
	return c.compileDirectory
}

// AffectedDocumentsHandler returns nil when no dependency store is configured.
func (c *Container) AffectedDocumentsHandler() *markupcmd.AffectedDocumentsHandler {
	return c.affected
}

// Close releases the markup service and any database the container opened.
func (c *Container) Close() error {
	var errs []error
	if c.service != nil {
		errs = append(errs, c.service.Close())
	}
	if c.ownsDB && c.store != nil {
		errs = append(errs, c.store.Close())
	}
	return errors.Join(errs...)
}

func driverName(driver string) string {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "postgres", "pg", "pgx":
		return "postgres"
	default:
		return "sqlite3"
	}
}
