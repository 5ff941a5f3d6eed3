package di

import (
	"context"
	"testing"

	"github.com/goliatone/go-docmark/internal/logging/gologger"
	"github.com/goliatone/go-docmark/internal/runtimeconfig"
)

func TestGoLoggerProviderFromConfig(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Provider = "gologger"
	cfg.Logging.Level = "error"
	cfg.Logging.Format = "json"
	cfg.Logging.Focus = []string{"docmark.engine"}
	cfg.Markup.BaseDir = t.TempDir()

	container, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	defer container.Close()

	if _, ok := container.LoggerProvider().(*gologger.Provider); !ok {
		t.Fatalf("expected go-logger provider, got %T", container.LoggerProvider())
	}

	result, err := container.MarkupService().Markup(context.Background(), "# Logged\n", "logged.md")
	if err != nil {
		t.Fatalf("Markup: %v", err)
	}
	if result.HTML == "" {
		t.Fatal("expected rendered html")
	}
}

func TestGoLoggerProviderRejectsUnknownFormat(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Provider = "gologger"
	cfg.Logging.Format = "xml"
	cfg.Markup.BaseDir = t.TempDir()

	if _, err := NewContainer(cfg); err == nil {
		t.Fatal("expected unsupported format error")
	}
}
