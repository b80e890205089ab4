package metadatacmd

import (
	"context"
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-playbook-meta/internal/logging"
	"github.com/goliatone/go-playbook-meta/internal/pipeline"
	"github.com/goliatone/go-playbook-meta/internal/report"
	"github.com/goliatone/go-playbook-meta/pkg/interfaces"
)

type writeCall struct {
	path   string
	report *interfaces.CorpusReport
}

type stubExtractor struct {
	extractCalls []pipeline.ExtractOptions
	writeCalls   []writeCall

	outcome    *pipeline.Outcome
	extractErr error
	writeErr   error
}

func (s *stubExtractor) Extract(_ context.Context, opts pipeline.ExtractOptions) (*pipeline.Outcome, error) {
	s.extractCalls = append(s.extractCalls, opts)
	if s.extractErr != nil {
		return nil, s.extractErr
	}
	if opts.OnFile != nil {
		for _, file := range s.outcome.Files {
			opts.OnFile(file)
		}
	}
	return s.outcome, nil
}

func (s *stubExtractor) WriteReport(path string, r *interfaces.CorpusReport) error {
	s.writeCalls = append(s.writeCalls, writeCall{path: path, report: r})
	return s.writeErr
}

func sampleOutcome() *pipeline.Outcome {
	return &pipeline.Outcome{
		Report: &interfaces.CorpusReport{
			MetadataVersion: interfaces.MetadataVersion,
			TotalDocuments:  1,
			Documents:       []interfaces.DocumentReport{{CommandID: "pb-start", Confidence: 0.8}},
		},
		Files: []pipeline.FileStatus{{Path: "development/pb-start.md", CommandID: "pb-start", Status: report.StatusOK}},
	}
}

func TestExtractHandlerRunsPipelineAndWrites(t *testing.T) {
	extractor := &stubExtractor{outcome: sampleOutcome()}
	var files []pipeline.FileStatus
	var completed *pipeline.Outcome
	handler := NewExtractHandler(extractor, logging.NoOp(), ExtractObserver{
		OnFile:     func(file pipeline.FileStatus) { files = append(files, file) },
		OnComplete: func(outcome *pipeline.Outcome, err error) { completed = outcome },
	})

	err := handler.Execute(context.Background(), ExtractCommand{
		InputDir:        "commands",
		Output:          "metadata.json",
		Recursive:       true,
		Workers:         2,
		ReferencePrefix: "pb-",
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(extractor.extractCalls) != 1 {
		t.Fatalf("expected one extract call, got %d", len(extractor.extractCalls))
	}
	opts := extractor.extractCalls[0]
	if opts.InputDir != "commands" || !opts.Recursive || opts.Workers != 2 || opts.ReferencePrefix != "pb-" {
		t.Fatalf("unexpected extract options %+v", opts)
	}
	if len(extractor.writeCalls) != 1 || extractor.writeCalls[0].path != "metadata.json" {
		t.Fatalf("expected report written to metadata.json, got %+v", extractor.writeCalls)
	}
	if len(files) != 1 || files[0].CommandID != "pb-start" {
		t.Fatalf("expected file progress to reach observer, got %+v", files)
	}
	if completed == nil || completed.Report.TotalDocuments != 1 {
		t.Fatalf("expected outcome to reach observer, got %+v", completed)
	}
}

func TestExtractHandlerFatalSkipsWrite(t *testing.T) {
	fatal := &pipeline.FatalError{Kind: pipeline.ErrDuplicateCommandID, Path: "core/pb-start.md"}
	extractor := &stubExtractor{extractErr: fatal}
	var observed error
	handler := NewExtractHandler(extractor, nil, ExtractObserver{
		OnComplete: func(_ *pipeline.Outcome, err error) { observed = err },
	})

	err := handler.Execute(context.Background(), ExtractCommand{InputDir: "commands", Output: "metadata.json"})
	if !errors.Is(err, pipeline.ErrDuplicateCommandID) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
	if !errors.Is(observed, pipeline.ErrDuplicateCommandID) {
		t.Fatalf("expected raw error to reach observer, got %v", observed)
	}
	if len(extractor.writeCalls) != 0 {
		t.Fatalf("expected no write after fatal error, got %d", len(extractor.writeCalls))
	}
}

func TestExtractHandlerValidationFailure(t *testing.T) {
	extractor := &stubExtractor{outcome: sampleOutcome()}
	var observed error
	handler := NewExtractHandler(extractor, nil, ExtractObserver{
		OnComplete: func(_ *pipeline.Outcome, err error) { observed = err },
	})

	err := handler.Execute(context.Background(), ExtractCommand{Output: "metadata.json"})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	if observed == nil {
		t.Fatal("expected validation failure to reach observer")
	}
	if len(extractor.extractCalls) != 0 {
		t.Fatalf("expected no extract call, got %d", len(extractor.extractCalls))
	}
}

func TestExtractHandlerWriteFailure(t *testing.T) {
	extractor := &stubExtractor{
		outcome:  sampleOutcome(),
		writeErr: &pipeline.FatalError{Kind: pipeline.ErrOutputWrite, Path: "metadata.json"},
	}
	var observedOutcome *pipeline.Outcome
	var observedErr error
	handler := NewExtractHandler(extractor, nil, ExtractObserver{
		OnComplete: func(outcome *pipeline.Outcome, err error) {
			observedOutcome, observedErr = outcome, err
		},
	})

	err := handler.Execute(context.Background(), ExtractCommand{InputDir: "commands", Output: "metadata.json"})
	if !errors.Is(err, pipeline.ErrOutputWrite) {
		t.Fatalf("expected output write error, got %v", err)
	}
	if observedOutcome == nil || !errors.Is(observedErr, pipeline.ErrOutputWrite) {
		t.Fatalf("expected outcome and error to reach observer, got %v %v", observedOutcome, observedErr)
	}
}

func TestValidateHandlerSummarisesArtifact(t *testing.T) {
	artifact := &interfaces.CorpusReport{
		MetadataVersion: interfaces.MetadataVersion,
		TotalDocuments:  2,
		Documents: []interfaces.DocumentReport{
			{CommandID: "pb-start", Category: "development", Confidence: 0.9},
			{CommandID: "pb-broken", Category: "development", Confidence: 0.2, Errors: []string{"title: is required"}},
		},
	}
	var loadedFrom string
	var summary *report.Summary
	handler := NewValidateHandler(func(path string) (*interfaces.CorpusReport, error) {
		loadedFrom = path
		return artifact, nil
	}, nil, ValidateObserver{
		OnComplete: func(s *report.Summary, err error) { summary = s },
	})

	if err := handler.Execute(context.Background(), ValidateCommand{MetadataPath: "metadata.json"}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if loadedFrom != "metadata.json" {
		t.Fatalf("expected artifact loaded from metadata.json, got %q", loadedFrom)
	}
	if summary == nil || summary.TotalDocuments != 2 || summary.DocumentsWithErrors != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}
}

func TestValidateHandlerLoadFailure(t *testing.T) {
	var observed error
	handler := NewValidateHandler(func(string) (*interfaces.CorpusReport, error) {
		return nil, report.ErrArtifactInvalid
	}, nil, ValidateObserver{
		OnComplete: func(_ *report.Summary, err error) { observed = err },
	})

	err := handler.Execute(context.Background(), ValidateCommand{MetadataPath: "metadata.json"})
	if !errors.Is(err, report.ErrArtifactInvalid) {
		t.Fatalf("expected invalid artifact error, got %v", err)
	}
	if !errors.Is(observed, report.ErrArtifactInvalid) {
		t.Fatalf("expected raw error to reach observer, got %v", observed)
	}
}
