// Package report reduces validated documents into the corpus artifact, encodes
// it canonically and renders human readable summaries of it.
package report

import (
	"math"
	"sort"
	"time"

	"github.com/goliatone/go-playbook-meta/internal/identity"
	"github.com/goliatone/go-playbook-meta/pkg/interfaces"
)

// Entry pairs a document with its validation verdict.
type Entry struct {
	Document *interfaces.Document
	Result   interfaces.ValidationResult
}

// Build reduces entries into a CorpusReport. Documents are ordered by command
// ID and every list is non-nil so the encoded form never carries null arrays.
func Build(entries []Entry, generatedAt time.Time) *interfaces.CorpusReport {
	report := &interfaces.CorpusReport{
		MetadataVersion: interfaces.MetadataVersion,
		GeneratedAt:     generatedAt.UTC().Format(time.RFC3339),
		Categories:      map[string]interfaces.CategorySummary{},
		Documents:       make([]interfaces.DocumentReport, 0, len(entries)),
	}

	checksums := make(map[string]string, len(entries))
	var confidenceSum float64

	for _, entry := range entries {
		if entry.Document == nil {
			continue
		}
		doc := documentReport(entry.Document, entry.Result)
		report.Documents = append(report.Documents, doc)
		checksums[doc.CommandID] = entry.Document.Checksum

		confidenceSum += doc.Confidence
		report.TotalErrors += len(doc.Errors)
		report.TotalWarnings += len(doc.Warnings)
		if len(doc.Errors) > 0 {
			report.DocumentsWithErrors++
		} else {
			report.SuccessfulDocuments++
		}

		summary := report.Categories[doc.Category]
		summary.Count++
		summary.Commands = append(summary.Commands, doc.CommandID)
		report.Categories[doc.Category] = summary
	}

	sort.Slice(report.Documents, func(i, j int) bool {
		return report.Documents[i].CommandID < report.Documents[j].CommandID
	})
	for category, summary := range report.Categories {
		sort.Strings(summary.Commands)
		report.Categories[category] = summary
	}

	report.TotalDocuments = len(report.Documents)
	if report.TotalDocuments > 0 {
		report.AverageConfidence = round4(confidenceSum / float64(report.TotalDocuments))
	}
	report.CorpusFingerprint = identity.CorpusFingerprint(checksums).String()
	return report
}

func documentReport(doc *interfaces.Document, result interfaces.ValidationResult) interfaces.DocumentReport {
	sections := make([]string, 0, len(doc.Sections))
	for _, section := range doc.Sections {
		sections = append(sections, section.Slug)
	}
	tiers := make([]string, 0, len(doc.TierApplicability))
	for _, tier := range doc.TierApplicability {
		tiers = append(tiers, string(tier))
	}
	decisions := make(map[string]string, len(doc.DecisionContext))
	for key, value := range doc.DecisionContext {
		decisions[key] = value
	}

	return interfaces.DocumentReport{
		CommandID:            doc.CommandID,
		SourceFile:           doc.SourcePath,
		Title:                doc.Title,
		Category:             doc.Category,
		Purpose:              doc.Purpose,
		Frequency:            string(doc.Frequency),
		Sections:             sections,
		RelatedCommands:      nonNil(doc.RelatedCommands),
		UnresolvedReferences: nonNil(doc.UnresolvedReferences),
		NextSteps:            nonNil(doc.NextSteps),
		Prerequisites:        nonNil(doc.Prerequisites),
		TierApplicability:    tiers,
		DecisionContext:      decisions,
		HasExamples:          doc.HasExamples,
		HasChecklist:         doc.HasChecklist,
		Confidence:           result.Confidence,
		Errors:               nonNil(result.Errors),
		Warnings:             nonNil(result.Warnings),
	}
}

func nonNil(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)
	return out
}

func round4(value float64) float64 {
	return math.Round(value*10000) / 10000
}
