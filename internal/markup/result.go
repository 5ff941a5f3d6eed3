package markup

import "github.com/goliatone/go-docmark/pkg/interfaces"

type (
	// Diagnostic is a problem reported while compiling a document.
	Diagnostic = interfaces.Diagnostic
	// Severity ranks diagnostics.
	Severity = interfaces.Severity
	// Result is the output of one compilation.
	Result = interfaces.MarkupResult
)

const (
	SeverityInfo    = interfaces.SeverityInfo
	SeverityWarning = interfaces.SeverityWarning
	SeverityError   = interfaces.SeverityError
)

// Diagnostic codes reported by the engine shell.
const (
	CodeIncludeUnresolved    = "include.unresolved"
	CodeIncludeCycle         = "include.cycle"
	CodeIncludeInlineBlock   = "include.inline_block"
	CodeRulePanic            = "validation.rule_panic"
	CodeTagDisallowed        = "validation.tag_disallowed"
	CodeHeadingNested        = "validation.heading_nested"
	CodeIncludeTarget        = "validation.include_target"
	CodePlaceholderUnknown   = "validation.placeholder_unknown"
	CodeFrontMatterMalformed = "markup.front_matter_malformed"
)
