package bootstrap

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-docmark"
	"github.com/goliatone/go-docmark/internal/di"
	"github.com/goliatone/go-docmark/pkg/interfaces"
)

// Options captures configuration shared by the docmark CLI commands.
type Options struct {
	BaseDir         string
	TemplateDir     string
	FallbackFolders []string
	Tokens          map[string]string
	Legacy          bool
	RawHTML         bool
	NoSourceInfo    bool
	OutputDir       string
	Workers         int
	DatabaseDriver  string
	DatabaseDSN     string
	LogProvider     string
	LogLevel        string
	LogFormat       string
	LoggerProvider  interfaces.LoggerProvider
}

// Config maps opts onto a docmark configuration.
func Config(opts Options) docmark.Config {
	cfg := docmark.DefaultConfig()

	if baseDir := strings.TrimSpace(opts.BaseDir); baseDir != "" {
		cfg.Markup.BaseDir = baseDir
	}
	cfg.Markup.TemplateDir = strings.TrimSpace(opts.TemplateDir)
	if folders := SplitList(strings.Join(opts.FallbackFolders, ",")); len(folders) > 0 {
		cfg.Markup.FallbackFolders = folders
	}
	if len(opts.Tokens) > 0 {
		cfg.Markup.Tokens = cloneTokens(opts.Tokens)
	}
	if opts.Legacy {
		cfg.Markup.Provider = "dfm-legacy"
		cfg.Markup.LegacyMode = true
	}
	cfg.Markup.RawHTML = opts.RawHTML
	cfg.Markup.ExportSourceInfo = !opts.NoSourceInfo

	cfg.Commands.OutputDir = strings.TrimSpace(opts.OutputDir)
	cfg.Commands.Workers = opts.Workers

	if dsn := strings.TrimSpace(opts.DatabaseDSN); dsn != "" {
		cfg.Dependencies.Enabled = true
		cfg.Dependencies.DSN = dsn
		if driver := strings.TrimSpace(opts.DatabaseDriver); driver != "" {
			cfg.Dependencies.Driver = driver
		}
	}

	if provider := strings.TrimSpace(opts.LogProvider); provider != "" {
		cfg.Features.Logger = true
		cfg.Logging.Provider = provider
		cfg.Logging.Level = strings.TrimSpace(opts.LogLevel)
		cfg.Logging.Format = strings.TrimSpace(opts.LogFormat)
	}
	return cfg
}

// BuildModule constructs a docmark module for CLI use.
func BuildModule(opts Options) (*docmark.Module, error) {
	diOpts := []di.Option{}
	if opts.LoggerProvider != nil {
		diOpts = append(diOpts, di.WithLoggerProvider(opts.LoggerProvider))
	}

	module, err := docmark.New(Config(opts), diOpts...)
	if err != nil {
		return nil, fmt.Errorf("initialise docmark module: %w", err)
	}
	return module, nil
}

// SplitList parses a comma separated list into a trimmed slice.
func SplitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func cloneTokens(tokens map[string]string) map[string]string {
	out := make(map[string]string, len(tokens))
	for key, value := range tokens {
		if key = strings.TrimSpace(key); key != "" {
			out[key] = value
		}
	}
	return out
}
