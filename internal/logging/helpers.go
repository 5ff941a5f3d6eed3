package logging

import (
	"maps"

	"github.com/goliatone/go-docmark/pkg/interfaces"
)

// WithFields attaches fields when logger implements interfaces.FieldsLogger
// and returns it untouched otherwise. The map is copied.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}
	fieldsLogger, ok := logger.(interfaces.FieldsLogger)
	if !ok {
		return logger
	}
	return fieldsLogger.WithFields(maps.Clone(fields))
}

// LogDiagnostics emits one entry per diagnostic at the level matching its
// severity: info diagnostics go to debug, warnings to warn, errors to error.
func LogDiagnostics(logger interfaces.Logger, diagnostics []interfaces.Diagnostic) {
	if logger == nil {
		return
	}
	for _, diag := range diagnostics {
		args := []any{"code", diag.Code, "line", diag.Line, "message", diag.Message}
		if diag.Rule != "" {
			args = append(args, "rule", diag.Rule)
		}
		switch diag.Severity {
		case interfaces.SeverityError:
			logger.Error("markup.diagnostic", args...)
		case interfaces.SeverityWarning:
			logger.Warn("markup.diagnostic", args...)
		default:
			logger.Debug("markup.diagnostic", args...)
		}
	}
}
