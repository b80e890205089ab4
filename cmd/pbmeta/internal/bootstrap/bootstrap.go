package bootstrap

import (
	"fmt"
	"io"
	"strings"

	"github.com/goliatone/go-playbook-meta/internal/logging"
	"github.com/goliatone/go-playbook-meta/internal/logging/console"
	"github.com/goliatone/go-playbook-meta/internal/logging/gologger"
	"github.com/goliatone/go-playbook-meta/internal/pipeline"
	"github.com/goliatone/go-playbook-meta/internal/runtimeconfig"
	"github.com/goliatone/go-playbook-meta/pkg/interfaces"
)

// Options captures configuration for CLI bootstraps.
type Options struct {
	Logging runtimeconfig.LoggingConfig
	// LogWriter receives console provider output. Defaults to stderr.
	LogWriter io.Writer
	// LoggerProvider replaces the provider selected by Logging.
	LoggerProvider interfaces.LoggerProvider
}

// Module wraps the pipeline service and the logger provider it was built with.
type Module struct {
	Provider interfaces.LoggerProvider
	Pipeline *pipeline.Service
	Logger   interfaces.Logger
}

// BuildModule constructs the services backing the CLI commands.
func BuildModule(opts Options) (*Module, error) {
	provider := opts.LoggerProvider
	if provider == nil {
		built, err := NewLoggerProvider(opts.Logging, opts.LogWriter)
		if err != nil {
			return nil, err
		}
		provider = built
	}

	return &Module{
		Provider: provider,
		Pipeline: pipeline.NewService(pipeline.WithLoggerProvider(provider)),
		Logger:   logging.ModuleLogger(provider, ""),
	}, nil
}

// NewLoggerProvider builds the provider named by cfg.Provider. The console
// provider writes to writer; go-logger always writes to stdout, so it is only
// used when selected explicitly.
func NewLoggerProvider(cfg runtimeconfig.LoggingConfig, writer io.Writer) (interfaces.LoggerProvider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "console":
		opts := console.Options{Writer: writer}
		if level, ok := console.ParseLevel(cfg.Level); ok {
			opts.MinLevel = &level
		}
		return console.NewProvider(opts), nil
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
			Focus:     cfg.Focus,
		})
		if err != nil {
			return nil, fmt.Errorf("configure go-logger: %w", err)
		}
		return provider, nil
	default:
		return nil, fmt.Errorf("%w: %s", runtimeconfig.ErrLoggingProviderUnknown, cfg.Provider)
	}
}
