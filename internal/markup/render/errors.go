package render

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidProvider reports a provider that could not contribute its parts.
	ErrInvalidProvider = errors.New("render: invalid provider")
	// ErrParameterSchema reports parameters rejected by a provider schema.
	ErrParameterSchema = errors.New("render: parameters rejected by provider schema")
	// ErrNoTree is returned when Render is called without a token tree.
	ErrNoTree = errors.New("render: context has no token tree")
	// ErrNoIncluder is reported when an include is rendered without an includer.
	ErrNoIncluder = errors.New("render: include directives are not supported here")
	// ErrIncludeCycle is reported when a document includes itself.
	ErrIncludeCycle = errors.New("render: include cycle")
	// ErrIncludeDepth is reported when includes nest deeper than MaxIncludeDepth.
	ErrIncludeDepth = errors.New("render: include depth exceeded")
	// ErrInlineBlockContent is reported when an inline include renders to
	// more than a single paragraph.
	ErrInlineBlockContent = errors.New("render: inline include renders block content")
)

// ParameterIssue is one schema violation.
type ParameterIssue struct {
	Location string
	Message  string
}

// ParameterError lists the schema violations of a provider's parameters.
type ParameterError struct {
	Provider string
	Issues   []ParameterIssue
	Cause    error
}

func (e *ParameterError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		location := issue.Location
		if location == "" {
			location = "#"
		} else if !strings.HasPrefix(location, "#") {
			location = "#" + location
		}
		parts = append(parts, fmt.Sprintf("%s: %s", location, issue.Message))
	}
	if len(parts) == 0 && e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}
	return fmt.Sprintf("provider %s: %s", e.Provider, strings.Join(parts, "; "))
}

func (e *ParameterError) Unwrap() error {
	return ErrParameterSchema
}
