package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-playbook-meta/pkg/interfaces"
)

const (
	rootModule     = "pbmeta"
	extractModule  = "pbmeta.extract"
	validateModule = "pbmeta.validate"
	pipelineModule = "pbmeta.pipeline"
)

const (
	fieldCommandID  = "command_id"
	fieldSourcePath = "source_file"
	fieldCategory   = "category"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The returned logger attaches
// the module identifier as structured context so downstream entries can be
// filtered predictably.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		return fieldsLogger.WithFields(map[string]any{
			"module": module,
		})
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// ExtractLogger returns the logger namespace reserved for the extract command.
func ExtractLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, extractModule)
}

// ValidateLogger returns the logger namespace reserved for the validate command.
func ValidateLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, validateModule)
}

// PipelineLogger returns the logger namespace reserved for the extraction pipeline.
func PipelineLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, pipelineModule)
}

// WithDocumentContext enriches the provided logger with the command ID, source
// path and category of a document. Empty values are ignored.
func WithDocumentContext(logger interfaces.Logger, commandID, path, category string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(commandID); trimmed != "" {
		fields[fieldCommandID] = trimmed
	}
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		fields[fieldSourcePath] = trimmed
	}
	if trimmed := strings.TrimSpace(category); trimmed != "" {
		fields[fieldCategory] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every log entry. It satisfies the Logger
// contract so services can safely operate when logging is disabled.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
