package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

const (
	codeValidation     = "PBMETA_COMMAND_INVALID"
	codeCanceled       = "PBMETA_COMMAND_CANCELED"
	codeTimeout        = "PBMETA_COMMAND_TIMEOUT"
	codeContext        = "PBMETA_COMMAND_CONTEXT"
	codeExecute        = "PBMETA_COMMAND_FAILED"
	codeExecuteAborted = "PBMETA_COMMAND_ABORTED"
)

// MetadataError is implemented by errors that carry structured context worth
// keeping on the wrapped command error, such as pipeline fatal errors.
type MetadataError interface {
	error
	ErrorMetadata() map[string]any
}

type errorClass struct {
	match    error
	category goerrors.Category
	code     string
	message  string
}

var contextClasses = []errorClass{
	{match: context.Canceled, category: goerrors.CategoryCommand, code: codeCanceled, message: "command execution cancelled"},
	{match: context.DeadlineExceeded, category: goerrors.CategoryCommand, code: codeTimeout, message: "command execution deadline exceeded"},
}

var (
	validationClass = errorClass{category: goerrors.CategoryValidation, code: codeValidation, message: "command validation failed"}
	contextClass    = errorClass{category: goerrors.CategoryCommand, code: codeContext, message: "command context error"}
	executeClass    = errorClass{category: goerrors.CategoryCommand, code: codeExecute, message: "command execution failed"}
	abortedClass    = errorClass{category: goerrors.CategoryCommand, code: codeExecuteAborted, message: "command execution aborted"}
)

func wrapValidationError(err error) error {
	return classify(err, nil, validationClass)
}

func wrapContextError(err error) error {
	return classify(err, contextClasses, contextClass)
}

// wrapExecuteError tags handler failures. Errors carrying metadata abort the
// run and keep that metadata on the wrapped error.
func wrapExecuteError(err error) error {
	var carrier MetadataError
	if errors.As(err, &carrier) {
		wrapped := classify(err, nil, abortedClass)
		if tagged, ok := wrapped.(*goerrors.Error); ok {
			return tagged.WithMetadata(carrier.ErrorMetadata())
		}
		return wrapped
	}
	return classify(err, nil, executeClass)
}

func classify(err error, classes []errorClass, fallback errorClass) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	class := fallback
	for _, candidate := range classes {
		if errors.Is(err, candidate.match) {
			class = candidate
			break
		}
	}
	return goerrors.Wrap(err, class.category, class.message).WithTextCode(class.code)
}
