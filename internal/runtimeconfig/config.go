package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrMarkupProviderRequired = errors.New("docmark config: markup provider is required")
var ErrBaseDirRequired = errors.New("docmark config: markup base directory is required")
var ErrFallbackFolderBlank = errors.New("docmark config: fallback folders cannot be blank")

// ErrDependenciesDriverRequired ensures a store driver is named when dependency tracking is enabled.
var ErrDependenciesDriverRequired = errors.New("docmark config: dependency store driver is required when tracking is enabled")
var ErrDependenciesDriverUnknown = errors.New("docmark config: dependency store driver is invalid")
var ErrDependenciesDSNRequired = errors.New("docmark config: dependency store dsn is required when tracking is enabled")
var ErrCacheSizeInvalid = errors.New("docmark config: include cache size must be zero or positive")
var ErrCommandWorkersInvalid = errors.New("docmark config: command workers must be zero or positive")
var ErrLoggingProviderRequired = errors.New("docmark config: logging provider is required when logging feature is enabled")
var ErrLoggingProviderUnknown = errors.New("docmark config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("docmark config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("docmark config: logging format is invalid")

// Config aggregates engine options and adapter bindings for the docmark module.
type Config struct {
	Markup       MarkupConfig
	Cache        CacheConfig
	Dependencies DependenciesConfig
	Commands     CommandsConfig
	Features     Features
	Logging      LoggingConfig
}

// MarkupConfig selects the markup service and its engine options.
type MarkupConfig struct {
	// Provider names the registered markup service, e.g. dfm-latest.
	Provider         string
	BaseDir          string
	TemplateDir      string
	FallbackFolders  []string
	Tokens           map[string]string
	LegacyMode       bool
	ShouldFixID      bool
	ExportSourceInfo bool
	XHTML            bool
	// RawHTML passes inline HTML through to the output.
	RawHTML bool
	// Parameters are forwarded to renderer part providers and customizers.
	Parameters map[string]any
}

// CacheConfig captures include content cache behaviour.
type CacheConfig struct {
	Enabled bool
	Size    int
}

// DependenciesConfig configures persistence of document dependency sets.
type DependenciesConfig struct {
	Enabled bool
	// Driver is sqlite3 or postgres.
	Driver string
	DSN    string
}

// CommandsConfig captures batch compilation behaviour.
type CommandsConfig struct {
	OutputDir string
	Workers   int
	Timeout   time.Duration
}

// Features toggles optional functionality.
type Features struct {
	Logger bool
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// DefaultConfig returns the defaults used by the CLI and the facade.
func DefaultConfig() Config {
	return Config{
		Markup: MarkupConfig{
			Provider:         "dfm-latest",
			BaseDir:          ".",
			FallbackFolders:  []string{},
			Tokens:           map[string]string{},
			ShouldFixID:      true,
			ExportSourceInfo: true,
			XHTML:            true,
			Parameters:       map[string]any{},
		},
		Cache: CacheConfig{
			Enabled: true,
			Size:    256,
		},
		Dependencies: DependenciesConfig{
			Driver: "sqlite3",
		},
		Commands: CommandsConfig{
			Timeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
			Format:   "",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.Markup.Provider) == "" {
		return ErrMarkupProviderRequired
	}
	if strings.TrimSpace(cfg.Markup.BaseDir) == "" {
		return ErrBaseDirRequired
	}
	for i, folder := range cfg.Markup.FallbackFolders {
		if strings.TrimSpace(folder) == "" {
			return fmt.Errorf("%w: index %d", ErrFallbackFolderBlank, i)
		}
	}
	if cfg.Cache.Size < 0 {
		return ErrCacheSizeInvalid
	}
	if cfg.Commands.Workers < 0 {
		return ErrCommandWorkersInvalid
	}
	if cfg.Dependencies.Enabled {
		driver := normalizeProvider(cfg.Dependencies.Driver)
		if driver == "" {
			return ErrDependenciesDriverRequired
		}
		if !isSupportedDriver(driver) {
			return fmt.Errorf("%w: %s", ErrDependenciesDriverUnknown, driver)
		}
		if strings.TrimSpace(cfg.Dependencies.DSN) == "" {
			return ErrDependenciesDSNRequired
		}
	}
	if cfg.Features.Logger {
		provider := normalizeProvider(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider == "gologger" {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	return nil
}

// IncludeCacheSize returns the resolver cache size, negative when disabled.
func (cfg Config) IncludeCacheSize() int {
	if !cfg.Cache.Enabled {
		return -1
	}
	return cfg.Cache.Size
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedDriver(driver string) bool {
	switch driver {
	case "sqlite", "sqlite3", "postgres", "pg", "pgx":
		return true
	default:
		return false
	}
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
