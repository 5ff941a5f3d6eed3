package markupcmd

import (
	"path"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	compileDocumentMessageType   = "docmark.markup.compile_document"
	compileDirectoryMessageType  = "docmark.markup.compile_directory"
	affectedDocumentsMessageType = "docmark.markup.affected_documents"
)

// MaxWorkers caps the concurrency a directory compilation may request.
const MaxWorkers = 64

// CompileDocumentCommand compiles a single document addressed by its path
// relative to the configured base directory.
type CompileDocumentCommand struct {
	// Path is the logical, base relative document path.
	Path string `json:"path"`
	// SkipValidation disables token tree validation for this document.
	SkipValidation bool `json:"skip_validation,omitempty"`
	// Outcome receives the compilation outcome when set.
	Outcome *DocumentOutcome `json:"-"`
}

// Type implements command.Message.
func (CompileDocumentCommand) Type() string { return compileDocumentMessageType }

// Validate ensures the path is relative and stays inside the base directory.
func (cmd CompileDocumentCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Path, validation.Required, validation.By(relativePath(compileDocumentMessageType+".path_invalid"))),
	)
}

// CompileDirectoryCommand compiles every document below Directory whose file
// name matches Pattern.
type CompileDirectoryCommand struct {
	// Directory is relative to the base directory; empty selects the base itself.
	Directory string `json:"directory,omitempty"`
	// Pattern is a path.Match glob applied to file names. Defaults to *.md.
	Pattern string `json:"pattern,omitempty"`
	// Workers bounds concurrent compilations. Zero uses the handler default.
	Workers        int  `json:"workers,omitempty"`
	SkipValidation bool `json:"skip_validation,omitempty"`
	// Summary receives the aggregated outcome when set.
	Summary *CompileSummary `json:"-"`
}

// Type implements command.Message.
func (CompileDirectoryCommand) Type() string { return compileDirectoryMessageType }

// Validate checks the directory, glob and worker bounds.
func (cmd CompileDirectoryCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Directory, validation.By(func(value any) error {
			if strings.TrimSpace(value.(string)) == "" {
				return nil
			}
			return relativePath(compileDirectoryMessageType + ".directory_invalid")(value)
		})),
		validation.Field(&cmd.Pattern, validation.By(func(value any) error {
			pattern := value.(string)
			if pattern == "" {
				return nil
			}
			if _, err := path.Match(pattern, ""); err != nil {
				return validation.NewError(compileDirectoryMessageType+".pattern_invalid", "pattern is not a valid glob")
			}
			return nil
		})),
		validation.Field(&cmd.Workers, validation.Min(0), validation.Max(MaxWorkers)),
	)
}

// AffectedDocumentsQuery lists the documents that must be recompiled when
// any of Files changes.
type AffectedDocumentsQuery struct {
	Files []string `json:"files"`
	// Result receives the sorted document paths when set.
	Result *[]string `json:"-"`
}

// Type implements command.Message.
func (AffectedDocumentsQuery) Type() string { return affectedDocumentsMessageType }

// Validate requires at least one non blank file.
func (q AffectedDocumentsQuery) Validate() error {
	return validation.ValidateStruct(&q,
		validation.Field(&q.Files, validation.Required, validation.Each(validation.By(func(value any) error {
			if strings.TrimSpace(value.(string)) == "" {
				return validation.NewError(affectedDocumentsMessageType+".file_required", "file path cannot be blank")
			}
			return nil
		}))),
	)
}

func relativePath(code string) validation.RuleFunc {
	return func(value any) error {
		raw := strings.TrimSpace(strings.ReplaceAll(value.(string), "\\", "/"))
		if raw == "" {
			return validation.NewError(code, "path is required")
		}
		if strings.HasPrefix(raw, "/") || (len(raw) > 1 && raw[1] == ':') {
			return validation.NewError(code, "path must be relative to the base directory")
		}
		cleaned := path.Clean(raw)
		if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
			return validation.NewError(code, "path escapes the base directory")
		}
		return nil
	}
}
