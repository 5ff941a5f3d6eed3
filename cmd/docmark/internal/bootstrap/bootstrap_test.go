package bootstrap

import (
	"reflect"
	"testing"
)

func TestConfigMapsOptions(t *testing.T) {
	cfg := Config(Options{
		BaseDir:         "docs",
		FallbackFolders: []string{"shared, common", " "},
		Tokens:          map[string]string{"product": "Docmark", " ": "skip"},
		Legacy:          true,
		NoSourceInfo:    true,
		OutputDir:       "site",
		Workers:         3,
		DatabaseDSN:     "file:deps.db",
		LogProvider:     "console",
		LogLevel:        "debug",
	})

	if cfg.Markup.BaseDir != "docs" || cfg.Markup.Provider != "dfm-legacy" || !cfg.Markup.LegacyMode {
		t.Fatalf("unexpected markup config %+v", cfg.Markup)
	}
	if !reflect.DeepEqual(cfg.Markup.FallbackFolders, []string{"shared", "common"}) {
		t.Fatalf("unexpected fallback folders %v", cfg.Markup.FallbackFolders)
	}
	if !reflect.DeepEqual(cfg.Markup.Tokens, map[string]string{"product": "Docmark"}) {
		t.Fatalf("unexpected tokens %v", cfg.Markup.Tokens)
	}
	if cfg.Markup.ExportSourceInfo {
		t.Fatal("expected source info export to be disabled")
	}
	if !cfg.Dependencies.Enabled || cfg.Dependencies.Driver != "sqlite3" {
		t.Fatalf("unexpected dependencies config %+v", cfg.Dependencies)
	}
	if !cfg.Features.Logger || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging config %+v", cfg.Logging)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config(Options{})
	if cfg.Markup.BaseDir != "." || cfg.Markup.Provider != "dfm-latest" {
		t.Fatalf("unexpected defaults %+v", cfg.Markup)
	}
	if cfg.Dependencies.Enabled || cfg.Features.Logger {
		t.Fatal("expected optional features to stay disabled")
	}
}

func TestSplitList(t *testing.T) {
	if got := SplitList(" a, ,b "); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("SplitList = %v", got)
	}
	if SplitList("  ") != nil {
		t.Fatal("expected nil for blank input")
	}
}
