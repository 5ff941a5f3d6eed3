package runtimeconfig_test

import (
	"errors"
	"testing"

	"github.com/goliatone/go-docmark/internal/runtimeconfig"
)

func TestConfigValidate_DefaultsAreValid(t *testing.T) {
	if err := runtimeconfig.DefaultConfig().Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}

func TestConfigValidate_RequiresMarkupProvider(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Markup.Provider = " "

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrMarkupProviderRequired) {
		t.Fatalf("expected ErrMarkupProviderRequired, got %v", err)
	}
}

func TestConfigValidate_RejectsBlankFallbackFolder(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Markup.FallbackFolders = []string{"shared", ""}

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrFallbackFolderBlank) {
		t.Fatalf("expected ErrFallbackFolderBlank, got %v", err)
	}
}

func TestConfigValidate_DependencyStore(t *testing.T) {
	cases := []struct {
		name   string
		driver string
		dsn    string
		want   error
	}{
		{name: "missing driver", driver: "", dsn: "file:deps.db", want: runtimeconfig.ErrDependenciesDriverRequired},
		{name: "unknown driver", driver: "oracle", dsn: "x", want: runtimeconfig.ErrDependenciesDriverUnknown},
		{name: "missing dsn", driver: "sqlite3", dsn: "", want: runtimeconfig.ErrDependenciesDSNRequired},
		{name: "postgres", driver: "postgres", dsn: "postgres://localhost/docs", want: nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := runtimeconfig.DefaultConfig()
			cfg.Dependencies.Enabled = true
			cfg.Dependencies.Driver = tc.driver
			cfg.Dependencies.DSN = tc.dsn

			err := cfg.Validate()
			if tc.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestConfigValidate_RejectsNegativeLimits(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Cache.Size = -1
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrCacheSizeInvalid) {
		t.Fatalf("expected ErrCacheSizeInvalid, got %v", err)
	}

	cfg = runtimeconfig.DefaultConfig()
	cfg.Commands.Workers = -2
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrCommandWorkersInvalid) {
		t.Fatalf("expected ErrCommandWorkersInvalid, got %v", err)
	}
}

func TestConfigValidate_RequiresLoggingProviderWhenFeatureEnabled(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Provider = ""

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingProviderRequired) {
		t.Fatalf("expected ErrLoggingProviderRequired, got %v", err)
	}
}

func TestConfigValidate_RejectsUnknownLoggingProvider(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Provider = "syslog"

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingProviderUnknown) {
		t.Fatalf("expected ErrLoggingProviderUnknown, got %v", err)
	}
}

func TestConfigValidate_RejectsInvalidLoggingFormat(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Provider = "gologger"
	cfg.Logging.Format = "xml"

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingFormatInvalid) {
		t.Fatalf("expected ErrLoggingFormatInvalid, got %v", err)
	}
}

func TestIncludeCacheSize(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	if got := cfg.IncludeCacheSize(); got != 256 {
		t.Fatalf("expected default cache size 256, got %d", got)
	}
	cfg.Cache.Enabled = false
	if got := cfg.IncludeCacheSize(); got >= 0 {
		t.Fatalf("expected disabled cache to report a negative size, got %d", got)
	}
}
