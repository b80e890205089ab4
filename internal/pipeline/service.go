// Package pipeline runs the two-pass extraction over a command corpus: parse
// every file, build the command index, then resolve references and validate.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-playbook-meta/internal/logging"
	"github.com/goliatone/go-playbook-meta/internal/markdown"
	"github.com/goliatone/go-playbook-meta/internal/report"
	"github.com/goliatone/go-playbook-meta/internal/validation"
	"github.com/goliatone/go-playbook-meta/internal/xref"
	"github.com/goliatone/go-playbook-meta/pkg/interfaces"
)

const defaultRootCategory = "commands"

// ExtractOptions configures one extraction run.
type ExtractOptions struct {
	// InputDir is the corpus root on disk. It is ignored when FS is set.
	InputDir string
	// FS overrides the filesystem the corpus is read from.
	FS fs.FS
	// RootCategory names the category of files sitting directly in the root.
	// Defaults to the base name of InputDir.
	RootCategory      string
	Pattern           string
	Recursive         bool
	Workers           int
	ReferencePrefix   string
	IncludeSkillFiles bool
	Extensions        []string
	AllowedCategories []string
	// OnFile is called once per document, in discovery order, after it has
	// been validated.
	OnFile func(FileStatus)
}

// FileStatus is the per-file verdict of a run.
type FileStatus struct {
	Path      string
	CommandID string
	Status    report.Status
	Reason    string
}

// Outcome is the result of a completed run.
type Outcome struct {
	Report    *interfaces.CorpusReport
	Documents []*interfaces.Document
	Results   []interfaces.ValidationResult
	Files     []FileStatus
	// Skipped lists prompt-template files left out of the corpus.
	Skipped []string
	// ParseFailures counts documents carrying at least one parse error.
	ParseFailures int
}

// HasParseFailures reports whether any document failed to parse.
func (o *Outcome) HasParseFailures() bool {
	return o != nil && o.ParseFailures > 0
}

// Totals returns the passed, warning and failed document counts.
func (o *Outcome) Totals() (passed, warnings, failed int) {
	if o == nil {
		return 0, 0, 0
	}
	for _, file := range o.Files {
		switch file.Status {
		case report.StatusFail:
			failed++
		case report.StatusWarn:
			warnings++
		default:
			passed++
		}
	}
	return passed, warnings, failed
}

// Option configures a Service.
type Option func(*Service)

// WithLogger injects the logger used for run diagnostics.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLoggerProvider scopes the run, extract and validate loggers to their
// modules of provider.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(s *Service) {
		if provider == nil {
			return
		}
		s.logger = logging.PipelineLogger(provider)
		s.extractLog = logging.ExtractLogger(provider)
		s.validateLog = logging.ValidateLogger(provider)
	}
}

// WithClock overrides the clock stamped into generated_at.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// Service runs extractions. It holds no per-run state.
type Service struct {
	logger      interfaces.Logger
	extractLog  interfaces.Logger
	validateLog interfaces.Logger
	now         func() time.Time
}

// NewService constructs a pipeline service.
func NewService(opts ...Option) *Service {
	s := &Service{
		logger:      logging.NoOp(),
		extractLog:  logging.NoOp(),
		validateLog: logging.NoOp(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Extract runs both passes and builds the corpus report. Parse and validation
// problems are recorded in the outcome; only environment failures, which
// leave no meaningful report, are returned as a *FatalError.
func (s *Service) Extract(ctx context.Context, opts ExtractOptions) (*Outcome, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logging.ContextWithRunID(ctx, uuid.NewString())
	logger := s.logger.WithContext(ctx)

	fsys, err := s.corpusFS(opts)
	if err != nil {
		return nil, err
	}

	loader := markdown.NewLoader(fsys, markdown.LoaderConfig{
		Pattern:      opts.Pattern,
		Recursive:    opts.Recursive,
		RootCategory: rootCategory(opts),
	})
	sources, err := loader.Discover(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &FatalError{Kind: ErrFileRead, Path: opts.InputDir, Err: err}
	}
	logger.Debug("pbmeta.pipeline.discovered", "files", len(sources))

	if err := checkDuplicates(sources); err != nil {
		return nil, err
	}

	docs, skipped, err := s.parseAll(ctx, loader, sources, opts)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		ids = append(ids, doc.CommandID)
	}
	index := xref.NewIndex(ids)

	outcome := &Outcome{
		Documents: docs,
		Results:   make([]interfaces.ValidationResult, 0, len(docs)),
		Files:     make([]FileStatus, 0, len(docs)),
		Skipped:   skipped,
	}
	validator := validation.NewValidator(validation.Options{AllowedCategories: opts.AllowedCategories})
	entries := make([]report.Entry, 0, len(docs))

	for _, doc := range docs {
		resolution := xref.Resolve(doc.CommandID, doc.Body, index, opts.ReferencePrefix)
		doc.RelatedCommands = resolution.Related
		doc.UnresolvedReferences = resolution.Unresolved

		result := validator.Validate(doc, index)
		outcome.Results = append(outcome.Results, result)
		entries = append(entries, report.Entry{Document: doc, Result: result})
		if len(doc.ParseErrors) > 0 {
			outcome.ParseFailures++
		}

		status := fileStatus(doc, result)
		outcome.Files = append(outcome.Files, status)
		s.logValidated(ctx, doc, result, status)
		if opts.OnFile != nil {
			opts.OnFile(status)
		}
	}

	outcome.Report = report.Build(entries, s.now())
	logger.Info("pbmeta.pipeline.completed",
		"documents", outcome.Report.TotalDocuments,
		"documents_with_errors", outcome.Report.DocumentsWithErrors,
		"parse_failures", outcome.ParseFailures,
		"skipped", len(skipped),
	)
	return outcome, nil
}

// WriteReport encodes the report and commits it atomically to path.
func (s *Service) WriteReport(path string, r *interfaces.CorpusReport) error {
	data, err := report.Encode(r)
	if err != nil {
		return &FatalError{Kind: ErrOutputWrite, Path: path, Err: err}
	}
	if err := report.WriteAtomic(path, data); err != nil {
		return &FatalError{Kind: ErrOutputWrite, Path: path, Err: err}
	}
	s.logger.Info("pbmeta.pipeline.report.written", "path", path, "bytes", len(data))
	return nil
}

func (s *Service) corpusFS(opts ExtractOptions) (fs.FS, error) {
	if opts.FS != nil {
		return opts.FS, nil
	}
	dir := strings.TrimSpace(opts.InputDir)
	info, err := os.Stat(dir)
	if err != nil {
		return nil, &FatalError{Kind: ErrFileRead, Path: dir, Err: err}
	}
	if !info.IsDir() {
		return nil, &FatalError{Kind: ErrFileRead, Path: dir, Err: errors.New("not a directory")}
	}
	return os.DirFS(dir), nil
}

// parseAll runs pass one in a bounded pool. Results are slotted by source
// index so the document order never depends on scheduling.
func (s *Service) parseAll(ctx context.Context, loader *markdown.Loader, sources []markdown.Source, opts ExtractOptions) ([]*interfaces.Document, []string, error) {
	extractor := markdown.NewService(markdown.Config{
		ReferencePrefix: opts.ReferencePrefix,
		Extensions:      opts.Extensions,
	})

	parsed := make([]*interfaces.Document, len(sources))
	skippedAt := make([]bool, len(sources))

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(workerCount(opts.Workers, len(sources)))
	for i, src := range sources {
		group.Go(func() error {
			data, err := loader.Read(gctx, src)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				return &FatalError{Kind: ErrFileRead, Path: filepath.Join(opts.InputDir, filepath.FromSlash(src.Path)), Err: err}
			}
			if !opts.IncludeSkillFiles && markdown.IsSkillFile(data) {
				skippedAt[i] = true
				return nil
			}
			parsed[i] = extractor.Extract(src, data)
			s.logParsed(gctx, parsed[i])
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, nil, err
	}

	docs := make([]*interfaces.Document, 0, len(sources))
	skipped := []string{}
	for i, doc := range parsed {
		if skippedAt[i] {
			skipped = append(skipped, sources[i].Path)
			s.extractLog.WithContext(ctx).Debug("pbmeta.extract.skill_file.skipped", "source_file", sources[i].Path)
			continue
		}
		docs = append(docs, doc)
	}
	return docs, skipped, nil
}

func (s *Service) logParsed(ctx context.Context, doc *interfaces.Document) {
	logger := logging.WithDocumentContext(s.extractLog.WithContext(ctx), doc.CommandID, doc.SourcePath, doc.Category)
	if len(doc.ParseErrors) > 0 {
		logging.WithError(logger, errors.Join(doc.ParseErrors...)).Warn("pbmeta.extract.document.parse_failed")
		return
	}
	logger.Debug("pbmeta.extract.document.parsed", "sections", len(doc.Sections))
}

func (s *Service) logValidated(ctx context.Context, doc *interfaces.Document, result interfaces.ValidationResult, status FileStatus) {
	logger := logging.WithDocumentContext(s.validateLog.WithContext(ctx), doc.CommandID, doc.SourcePath, doc.Category)
	args := []any{
		"status", string(status.Status),
		"confidence", result.Confidence,
		"errors", len(result.Errors),
		"warnings", len(result.Warnings),
	}
	switch status.Status {
	case report.StatusFail:
		logger.Warn("pbmeta.validate.document.failed", append(args, "reason", status.Reason)...)
	default:
		logger.Debug("pbmeta.validate.document.validated", args...)
	}
}

// checkDuplicates rejects two sources deriving the same command ID before any
// file is parsed.
func checkDuplicates(sources []markdown.Source) error {
	seen := make(map[string]string, len(sources))
	for _, src := range sources {
		if first, ok := seen[src.CommandID]; ok {
			return &FatalError{
				Kind: ErrDuplicateCommandID,
				Path: src.Path,
				Err:  fmt.Errorf("command %q is also defined by %s", src.CommandID, first),
			}
		}
		seen[src.CommandID] = src.Path
	}
	return nil
}

func fileStatus(doc *interfaces.Document, result interfaces.ValidationResult) FileStatus {
	status := FileStatus{
		Path:      doc.SourcePath,
		CommandID: doc.CommandID,
		Status:    report.StatusOK,
	}
	switch {
	case len(result.Errors) > 0:
		status.Status = report.StatusFail
		status.Reason = result.Errors[0]
	case len(result.Warnings) > 0:
		status.Status = report.StatusWarn
		status.Reason = result.Warnings[0]
	}
	return status
}

func rootCategory(opts ExtractOptions) string {
	if category := strings.TrimSpace(opts.RootCategory); category != "" {
		return category
	}
	if dir := strings.TrimSpace(opts.InputDir); dir != "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			abs = filepath.Clean(dir)
		}
		if base := filepath.Base(abs); base != "." && base != string(filepath.Separator) {
			return base
		}
	}
	return defaultRootCategory
}

func workerCount(requested, jobs int) int {
	workers := requested
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if jobs > 0 && workers > jobs {
		workers = jobs
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}
