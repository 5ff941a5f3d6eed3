package engine

import (
	"errors"
	"fmt"
	"strings"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-docmark/internal/markup"
)

const (
	textCodeConfigInvalid    = "MARKUP_CONFIG_INVALID"
	textCodeValidationFailed = "MARKUP_VALIDATION_FAILED"
)

var (
	// ErrUnknownService is returned for an unregistered service provider.
	ErrUnknownService = errors.New("engine: unknown service provider")
	// ErrDuplicateService is returned when a provider name is registered twice.
	ErrDuplicateService = errors.New("engine: service provider already registered")
	// ErrNilBuilder is returned when an engine is created without a builder.
	ErrNilBuilder = errors.New("engine: builder is required")
)

// ValidationError reports a document rejected by a blocking rule.
type ValidationError struct {
	Path        string
	Rules       []string
	Diagnostics []markup.Diagnostic
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("markup validation failed for %s: rejected by %s", e.Path, strings.Join(e.Rules, ", "))
}

func configError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "markup configuration invalid").
		WithTextCode(textCodeConfigInvalid)
}

func validationError(err *ValidationError) error {
	return goerrors.Wrap(err, goerrors.CategoryValidation, "markup validation failed").
		WithTextCode(textCodeValidationFailed)
}
