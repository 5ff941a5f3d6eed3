package docmark

import "github.com/goliatone/go-docmark/internal/runtimeconfig"

var (
	ErrMarkupProviderRequired     = runtimeconfig.ErrMarkupProviderRequired
	ErrBaseDirRequired            = runtimeconfig.ErrBaseDirRequired
	ErrFallbackFolderBlank        = runtimeconfig.ErrFallbackFolderBlank
	ErrDependenciesDriverRequired = runtimeconfig.ErrDependenciesDriverRequired
	ErrDependenciesDriverUnknown  = runtimeconfig.ErrDependenciesDriverUnknown
	ErrDependenciesDSNRequired    = runtimeconfig.ErrDependenciesDSNRequired
	ErrCacheSizeInvalid           = runtimeconfig.ErrCacheSizeInvalid
	ErrCommandWorkersInvalid      = runtimeconfig.ErrCommandWorkersInvalid
	ErrLoggingProviderRequired    = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown     = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid        = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid       = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config             = runtimeconfig.Config
	MarkupConfig       = runtimeconfig.MarkupConfig
	CacheConfig        = runtimeconfig.CacheConfig
	DependenciesConfig = runtimeconfig.DependenciesConfig
	CommandsConfig     = runtimeconfig.CommandsConfig
	Features           = runtimeconfig.Features
	LoggingConfig      = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
