package metadatacmd

import (
	"context"
	"errors"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-playbook-meta/internal/commands"
	"github.com/goliatone/go-playbook-meta/internal/logging"
	"github.com/goliatone/go-playbook-meta/internal/pipeline"
	"github.com/goliatone/go-playbook-meta/internal/report"
	"github.com/goliatone/go-playbook-meta/pkg/interfaces"
)

const (
	extractOperation  = "metadata.extract"
	validateOperation = "metadata.validate"
)

var (
	_ command.Commander[ExtractCommand]  = (*ExtractHandler)(nil)
	_ command.Commander[ValidateCommand] = (*ValidateHandler)(nil)
)

// Extractor is the pipeline contract the extract handler depends on.
type Extractor interface {
	Extract(ctx context.Context, opts pipeline.ExtractOptions) (*pipeline.Outcome, error)
	WriteReport(path string, r *interfaces.CorpusReport) error
}

// ExtractObserver receives run progress. Both callbacks are optional.
type ExtractObserver struct {
	// OnFile is called once per document as it is validated.
	OnFile func(pipeline.FileStatus)
	// OnComplete is called with the raw outcome and error of every run,
	// including validation and fatal failures.
	OnComplete func(*pipeline.Outcome, error)
}

func (o ExtractObserver) complete(outcome *pipeline.Outcome, err error) {
	if o.OnComplete != nil {
		o.OnComplete(outcome, err)
	}
}

// ExtractHandler runs the pipeline and commits the artifact.
type ExtractHandler struct {
	inner    *commands.Handler[ExtractCommand]
	observer ExtractObserver
}

// NewExtractHandler creates a handler bound to the supplied extractor.
func NewExtractHandler(extractor Extractor, logger interfaces.Logger, observer ExtractObserver, opts ...commands.HandlerOption[ExtractCommand]) *ExtractHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg ExtractCommand) error {
		if extractor == nil {
			return errors.New("metadata extract: extractor is nil")
		}
		runCtx, cancel := commands.CommandContext(ctx, msg.Timeout)
		defer cancel()

		outcome, err := extractor.Extract(runCtx, pipeline.ExtractOptions{
			InputDir:          msg.InputDir,
			Pattern:           msg.Pattern,
			Recursive:         msg.Recursive,
			Workers:           msg.Workers,
			ReferencePrefix:   msg.ReferencePrefix,
			IncludeSkillFiles: msg.IncludeSkillFiles,
			Extensions:        msg.Extensions,
			AllowedCategories: msg.AllowedCategories,
			OnFile:            observer.OnFile,
		})
		if err != nil {
			observer.complete(nil, err)
			return err
		}
		if err := extractor.WriteReport(msg.Output, outcome.Report); err != nil {
			observer.complete(outcome, err)
			return err
		}

		logging.WithFields(baseLogger, map[string]any{
			"documents":             outcome.Report.TotalDocuments,
			"documents_with_errors": outcome.Report.DocumentsWithErrors,
			"parse_failures":        outcome.ParseFailures,
			"average_confidence":    outcome.Report.AverageConfidence,
		}).Info("metadata.command.extract.completed")
		observer.complete(outcome, nil)
		return nil
	}

	handlerOpts := []commands.HandlerOption[ExtractCommand]{
		commands.WithLogger[ExtractCommand](baseLogger),
		commands.WithOperation[ExtractCommand](extractOperation),
		commands.WithMessageFields(func(msg ExtractCommand) map[string]any {
			fields := map[string]any{
				"input_dir": msg.InputDir,
				"output":    msg.Output,
			}
			if msg.ReferencePrefix != "" {
				fields["reference_prefix"] = msg.ReferencePrefix
			}
			if msg.Workers > 0 {
				fields["workers"] = msg.Workers
			}
			if msg.IncludeSkillFiles {
				fields["include_skill_files"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[ExtractCommand](nil)),
	}
	handlerOpts = append(handlerOpts, opts...)

	h := &ExtractHandler{observer: observer}
	h.inner = commands.NewHandler(exec, handlerOpts...)
	return h
}

// Execute satisfies command.Commander[ExtractCommand]. Message validation
// failures are reported to the observer as well.
func (h *ExtractHandler) Execute(ctx context.Context, msg ExtractCommand) error {
	if err := command.ValidateMessage(msg); err != nil {
		wrapped := h.inner.Execute(ctx, msg)
		h.observer.complete(nil, wrapped)
		return wrapped
	}
	return h.inner.Execute(ctx, msg)
}

// ValidateObserver receives the summary of a validate run.
type ValidateObserver struct {
	OnComplete func(*report.Summary, error)
}

func (o ValidateObserver) complete(summary *report.Summary, err error) {
	if o.OnComplete != nil {
		o.OnComplete(summary, err)
	}
}

// Loader reads a written artifact back.
type Loader func(path string) (*interfaces.CorpusReport, error)

// ValidateHandler loads an artifact, checks it against the artifact schema and
// recomputes its summary.
type ValidateHandler struct {
	inner    *commands.Handler[ValidateCommand]
	observer ValidateObserver
}

// NewValidateHandler creates a validate handler. A nil loader uses report.Load.
func NewValidateHandler(load Loader, logger interfaces.Logger, observer ValidateObserver, opts ...commands.HandlerOption[ValidateCommand]) *ValidateHandler {
	baseLogger := commands.EnsureLogger(logger)
	if load == nil {
		load = report.Load
	}

	exec := func(ctx context.Context, msg ValidateCommand) error {
		if err := commands.Interrupted(ctx); err != nil {
			observer.complete(nil, err)
			return err
		}

		artifact, err := load(msg.MetadataPath)
		if err != nil {
			observer.complete(nil, err)
			return err
		}
		summary := report.Summarize(artifact, report.SummaryOptions{
			LowConfidence: msg.LowConfidence,
			MaxPerGroup:   msg.MaxPerGroup,
		})

		logging.WithFields(baseLogger, map[string]any{
			"documents":             summary.TotalDocuments,
			"documents_with_errors": summary.DocumentsWithErrors,
			"warnings":              summary.TotalWarnings,
		}).Info("metadata.command.validate.completed")
		observer.complete(&summary, nil)
		return nil
	}

	handlerOpts := []commands.HandlerOption[ValidateCommand]{
		commands.WithLogger[ValidateCommand](baseLogger),
		commands.WithOperation[ValidateCommand](validateOperation),
		commands.WithMessageFields(func(msg ValidateCommand) map[string]any {
			return map[string]any{"metadata_path": msg.MetadataPath}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[ValidateCommand](nil)),
	}
	handlerOpts = append(handlerOpts, opts...)

	h := &ValidateHandler{observer: observer}
	h.inner = commands.NewHandler(exec, handlerOpts...)
	return h
}

// Execute satisfies command.Commander[ValidateCommand].
func (h *ValidateHandler) Execute(ctx context.Context, msg ValidateCommand) error {
	if err := command.ValidateMessage(msg); err != nil {
		wrapped := h.inner.Execute(ctx, msg)
		h.observer.complete(nil, wrapped)
		return wrapped
	}
	return h.inner.Execute(ctx, msg)
}
