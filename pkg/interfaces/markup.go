package interfaces

import (
	"context"
	"fmt"
	"strings"
)

// Severity ranks a diagnostic emitted while compiling a document.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

// String renders the lowercase severity label.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// ParseSeverity maps configuration strings (info, warn, warning, error) onto a Severity.
func ParseSeverity(value string) (Severity, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "info":
		return SeverityInfo, true
	case "warn", "warning":
		return SeverityWarning, true
	case "error":
		return SeverityError, true
	default:
		return SeverityInfo, false
	}
}

// Diagnostic describes a non fatal problem found in a document: a rule
// violation, an unresolved include, a malformed directive.
type Diagnostic struct {
	// Code is a stable dotted identifier such as "include.not_found".
	Code string `json:"code"`
	// Rule names the validator that produced the diagnostic, if any.
	Rule     string   `json:"rule,omitempty"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	// Path is the logical path of the document the diagnostic belongs to.
	Path string `json:"path"`
	// Line is 1-based; zero when source info export is disabled.
	Line int `json:"line,omitempty"`
}

// String formats the diagnostic as path:line: severity: message.
func (d Diagnostic) String() string {
	location := d.Path
	if location == "" {
		location = "<memory>"
	}
	if d.Line > 0 {
		location = fmt.Sprintf("%s:%d", location, d.Line)
	}
	return fmt.Sprintf("%s: %s: %s", location, d.Severity, d.Message)
}

// MarkupResult is the output of compiling one document.
type MarkupResult struct {
	HTML string `json:"html"`
	// Dependencies lists the normalized paths of every external file read
	// while rendering. Nil when the document touched no external file.
	Dependencies []string     `json:"dependencies,omitempty"`
	Diagnostics  []Diagnostic `json:"diagnostics,omitempty"`
	// Metadata holds the document front matter, nil when absent.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// MarkupOptions tunes a single compilation.
type MarkupOptions struct {
	SkipValidation bool
}

// MarkupOption mutates MarkupOptions.
type MarkupOption func(*MarkupOptions)

// WithValidation toggles token tree validation for a single call. Validation
// is enabled by default.
func WithValidation(enabled bool) MarkupOption {
	return func(o *MarkupOptions) {
		o.SkipValidation = !enabled
	}
}

// ResolveMarkupOptions applies opts over the defaults.
func ResolveMarkupOptions(opts ...MarkupOption) MarkupOptions {
	resolved := MarkupOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(&resolved)
		}
	}
	return resolved
}

// MarkupService compiles markdown documents into HTML and reports the files
// each compilation depended on.
type MarkupService interface {
	Name() string
	Markup(ctx context.Context, source, path string, opts ...MarkupOption) (*MarkupResult, error)
	Close() error
}

// DependencyStore persists the dependency sets produced by MarkupService so
// incremental builds can find the documents affected by a changed file.
type DependencyStore interface {
	Record(ctx context.Context, document string, dependencies []string) error
	Dependencies(ctx context.Context, document string) ([]string, error)
	Dependents(ctx context.Context, files ...string) ([]string, error)
	Forget(ctx context.Context, document string) error
}
