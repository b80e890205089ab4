package logging

import (
	"errors"
	"maps"

	"github.com/goliatone/go-playbook-meta/pkg/interfaces"
)

const fieldError = "error"

// WithFields attaches fields when logger implements interfaces.FieldsLogger and
// returns logger unchanged otherwise. The map is copied before it is handed on.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}
	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		return fieldsLogger.WithFields(maps.Clone(fields))
	}
	return logger
}

// WithError attaches err under "error". Errors exposing ErrorMetadata, such as
// pipeline fatal errors, also contribute their metadata prefixed with "error_".
func WithError(logger interfaces.Logger, err error) interfaces.Logger {
	if err == nil {
		return logger
	}
	fields := map[string]any{fieldError: err.Error()}
	var carrier interface{ ErrorMetadata() map[string]any }
	if errors.As(err, &carrier) {
		for key, value := range carrier.ErrorMetadata() {
			fields[fieldError+"_"+key] = value
		}
	}
	return WithFields(logger, fields)
}
