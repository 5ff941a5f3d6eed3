package commands

import (
	"context"
	"errors"
	"io/fs"

	goerrors "github.com/goliatone/go-errors"
)

const (
	codeValidation     = "DOCMARK_COMMAND_INVALID"
	codeCanceled       = "DOCMARK_COMMAND_CANCELED"
	codeTimeout        = "DOCMARK_COMMAND_TIMEOUT"
	codeContext        = "DOCMARK_COMMAND_CONTEXT"
	codeSourceNotFound = "DOCMARK_SOURCE_NOT_FOUND"
	codeFailed         = "DOCMARK_COMMAND_FAILED"
)

// failureClass maps a sentinel to the category and text code reported for it.
type failureClass struct {
	target   error
	category goerrors.Category
	code     string
	message  string
}

var contextFailures = []failureClass{
	{context.Canceled, goerrors.CategoryCommand, codeCanceled, "command cancelled"},
	{context.DeadlineExceeded, goerrors.CategoryCommand, codeTimeout, "command deadline exceeded"},
}

var executeFailures = []failureClass{
	{fs.ErrNotExist, goerrors.CategoryNotFound, codeSourceNotFound, "document source not found"},
}

func wrapValidationError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid command message").
		WithTextCode(codeValidation)
}

func wrapContextError(err error) error {
	return classify(err, contextFailures, failureClass{
		category: goerrors.CategoryCommand,
		code:     codeContext,
		message:  "command context error",
	})
}

func wrapExecuteError(err error) error {
	return classify(err, executeFailures, failureClass{
		category: goerrors.CategoryCommand,
		code:     codeFailed,
		message:  "command failed",
	})
}

// classify leaves go-errors values untouched so categories chosen deeper in
// the stack survive.
func classify(err error, table []failureClass, fallback failureClass) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	class := fallback
	for _, candidate := range table {
		if errors.Is(err, candidate.target) {
			class = candidate
			break
		}
	}
	return goerrors.Wrap(err, class.category, class.message).WithTextCode(class.code)
}
