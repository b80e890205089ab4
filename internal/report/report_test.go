package report

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-playbook-meta/pkg/interfaces"
)

var fixedTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func sampleEntries() []Entry {
	return []Entry{
		{
			Document: &interfaces.Document{
				CommandID:            "pb-start",
				Category:             "core",
				SourcePath:           "core/pb-start.md",
				Checksum:             "aa",
				Title:                "Start Development Work",
				Purpose:              "Begin a focused unit of work on a branch.",
				Frequency:            interfaces.FrequencyDaily,
				Sections:             []interfaces.Section{{Heading: "When to Use", Slug: "when-to-use"}},
				RelatedCommands:      []string{"pb-cycle"},
				UnresolvedReferences: []string{},
				TierApplicability:    []interfaces.Tier{interfaces.TierS},
				DecisionContext:      map[string]string{"use_when_0": "starting work"},
			},
			Result: interfaces.ValidationResult{CommandID: "pb-start", Confidence: 0.9},
		},
		{
			Document: &interfaces.Document{
				CommandID:  "pb-broken",
				Category:   "core",
				SourcePath: "core/pb-broken.md",
				Checksum:   "bb",
				Frequency:  interfaces.FrequencyAsNeeded,
			},
			Result: interfaces.ValidationResult{
				CommandID:  "pb-broken",
				Errors:     []string{"title: MissingTitle: core/pb-broken.md: no level-1 heading"},
				Warnings:   []string{"related_commands: unresolved reference /pb-nope"},
				Confidence: 0.2,
			},
		},
		{
			Document: &interfaces.Document{
				CommandID:  "pb-plan",
				Category:   "planning",
				SourcePath: "planning/pb-plan.md",
				Checksum:   "cc",
				Title:      "Plan the Work",
				Purpose:    "Break the feature into reviewable steps.",
				Frequency:  interfaces.FrequencyStartOfFeature,
			},
			Result: interfaces.ValidationResult{CommandID: "pb-plan", Confidence: 0.6},
		},
	}
}

func TestBuild(t *testing.T) {
	report := Build(sampleEntries(), fixedTime)

	if report.MetadataVersion != interfaces.MetadataVersion {
		t.Fatalf("unexpected version %q", report.MetadataVersion)
	}
	if report.GeneratedAt != "2024-05-01T12:00:00Z" {
		t.Fatalf("unexpected generated_at %q", report.GeneratedAt)
	}
	if report.TotalDocuments != 3 || report.SuccessfulDocuments != 2 || report.DocumentsWithErrors != 1 {
		t.Fatalf("unexpected counts %+v", report)
	}
	if report.TotalErrors != 1 || report.TotalWarnings != 1 {
		t.Fatalf("unexpected issue totals %d/%d", report.TotalErrors, report.TotalWarnings)
	}
	if report.AverageConfidence != 0.5667 {
		t.Fatalf("unexpected average %v", report.AverageConfidence)
	}

	ids := []string{}
	for _, doc := range report.Documents {
		ids = append(ids, doc.CommandID)
	}
	if strings.Join(ids, ",") != "pb-broken,pb-plan,pb-start" {
		t.Fatalf("documents not sorted: %v", ids)
	}

	core := report.Categories["core"]
	if core.Count != 2 || strings.Join(core.Commands, ",") != "pb-broken,pb-start" {
		t.Fatalf("unexpected core category %+v", core)
	}
	if report.CorpusFingerprint == "" {
		t.Fatalf("expected fingerprint")
	}

	broken := report.Documents[0]
	if broken.RelatedCommands == nil || broken.Sections == nil || broken.TierApplicability == nil || broken.NextSteps == nil {
		t.Fatalf("expected non-nil lists, got %+v", broken)
	}
}

func TestBuildEmptyCorpus(t *testing.T) {
	report := Build(nil, fixedTime)

	if report.TotalDocuments != 0 || report.AverageConfidence != 0 {
		t.Fatalf("unexpected empty report %+v", report)
	}
	data, err := Encode(report)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !bytes.Contains(data, []byte(`"documents": []`)) {
		t.Fatalf("expected empty documents array, got %s", data)
	}
	if !bytes.Contains(data, []byte(`"average_confidence": 0`)) {
		t.Fatalf("expected zero average, got %s", data)
	}
	if _, err := Decode(data); err != nil {
		t.Fatalf("empty artifact should satisfy the schema: %v", err)
	}
}

func TestEncodeIsCanonical(t *testing.T) {
	first, err := Encode(Build(sampleEntries(), fixedTime))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	entries := sampleEntries()
	entries[0], entries[2] = entries[2], entries[0]
	second, err := Encode(Build(entries, fixedTime))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Fatalf("encoding depends on entry order")
	}
	if bytes.HasSuffix(first, []byte("\n")) {
		t.Fatalf("expected no trailing newline")
	}
	if !bytes.HasPrefix(first, []byte("{\n  \"metadata_version\": \"1.0\",\n  \"generated_at\"")) {
		t.Fatalf("unexpected key order or indentation:\n%s", first[:80])
	}
}

func TestWriteAtomicAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "metadata.json")

	data, err := Encode(Build(sampleEntries(), fixedTime))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := WriteAtomic(path, data); err != nil {
		t.Fatalf("WriteAtomic: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the artifact, found %d entries", len(entries))
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.TotalDocuments != 3 || len(loaded.Documents) != 3 {
		t.Fatalf("unexpected loaded report %+v", loaded)
	}
	if loaded.Documents[2].DecisionContext["use_when_0"] != "starting work" {
		t.Fatalf("decision context lost: %+v", loaded.Documents[2].DecisionContext)
	}
}

func TestWriteAtomicMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "metadata.json")

	if err := WriteAtomic(path, []byte("{}")); err == nil {
		t.Fatalf("expected error for missing directory")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected no output file, stat err=%v", err)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "absent.json")); !errors.Is(err, ErrArtifactRead) {
		t.Fatalf("expected ErrArtifactRead, got %v", err)
	}

	tests := []struct {
		name string
		data string
	}{
		{name: "not json", data: "{"},
		{name: "missing documents", data: `{"metadata_version":"1.0","generated_at":"x","total_documents":0,"average_confidence":0,"documents_with_errors":0}`},
		{name: "confidence out of range", data: `{"metadata_version":"1.0","generated_at":"x","total_documents":1,"average_confidence":2,"documents_with_errors":0,"documents":[]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(tt.name, " ", "_")+".json")
			if err := os.WriteFile(path, []byte(tt.data), 0o644); err != nil {
				t.Fatalf("write: %v", err)
			}
			if _, err := Load(path); !errors.Is(err, ErrArtifactInvalid) {
				t.Fatalf("expected ErrArtifactInvalid, got %v", err)
			}
		})
	}
}
