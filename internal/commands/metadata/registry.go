package metadatacmd

import (
	"errors"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"

	"github.com/goliatone/go-playbook-meta/internal/commands"
	"github.com/goliatone/go-playbook-meta/pkg/interfaces"
)

// CommandRegistry is the minimal registration contract expected when wiring command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// HandlerSet groups the metadata command handlers produced by RegisterMetadataCommands.
type HandlerSet struct {
	Extract  *ExtractHandler
	Validate *ValidateHandler
}

// Option customises handler wiring during registration.
type Option func(*options)

type options struct {
	loader              Loader
	extractObserver     ExtractObserver
	validateObserver    ValidateObserver
	extractHandlerOpts  []commands.HandlerOption[ExtractCommand]
	validateHandlerOpts []commands.HandlerOption[ValidateCommand]
}

// WithExtractObserver receives per-file progress and the raw extraction outcome.
func WithExtractObserver(observer ExtractObserver) Option {
	return func(cfg *options) {
		cfg.extractObserver = observer
	}
}

// WithValidateObserver receives the summary of validate runs.
func WithValidateObserver(observer ValidateObserver) Option {
	return func(cfg *options) {
		cfg.validateObserver = observer
	}
}

// WithLoader overrides how validate reads artifacts.
func WithLoader(loader Loader) Option {
	return func(cfg *options) {
		cfg.loader = loader
	}
}

// WithExtractHandlerOptions forwards options to the ExtractHandler constructor.
func WithExtractHandlerOptions(opts ...commands.HandlerOption[ExtractCommand]) Option {
	return func(cfg *options) {
		cfg.extractHandlerOpts = append(cfg.extractHandlerOpts, opts...)
	}
}

// WithValidateHandlerOptions forwards options to the ValidateHandler constructor.
func WithValidateHandlerOptions(opts ...commands.HandlerOption[ValidateCommand]) Option {
	return func(cfg *options) {
		cfg.validateHandlerOpts = append(cfg.validateHandlerOpts, opts...)
	}
}

// RegisterMetadataCommands builds the metadata handlers and registers them with
// the provided registry when one is given.
func RegisterMetadataCommands(reg CommandRegistry, extractor Extractor, provider interfaces.LoggerProvider, opts ...Option) (*HandlerSet, error) {
	if extractor == nil {
		return nil, errors.New("metadata command registration: extractor is nil")
	}

	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	logger := commands.CommandLogger(provider, "metadata")

	set := &HandlerSet{
		Extract:  NewExtractHandler(extractor, logger, cfg.extractObserver, cfg.extractHandlerOpts...),
		Validate: NewValidateHandler(cfg.loader, logger, cfg.validateObserver, cfg.validateHandlerOpts...),
	}

	if reg != nil {
		if err := reg.RegisterCommand(set.Extract); err != nil {
			return nil, err
		}
		if err := reg.RegisterCommand(set.Validate); err != nil {
			return nil, err
		}
	}
	return set, nil
}

// Subscribe attaches the handlers to the go-command dispatcher without
// retries. The returned function detaches them again.
func (s *HandlerSet) Subscribe() func() {
	extractSub := dispatcher.SubscribeCommand(s.Extract, runner.WithMaxRetries(0))
	validateSub := dispatcher.SubscribeCommand(s.Validate, runner.WithMaxRetries(0))
	return func() {
		extractSub.Unsubscribe()
		validateSub.Unsubscribe()
	}
}
