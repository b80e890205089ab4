package report

import (
	"sort"
	"strings"

	"github.com/goliatone/go-playbook-meta/pkg/interfaces"
)

// DefaultLowConfidence is the score under which a document is listed as low
// confidence.
const DefaultLowConfidence = 0.8

// Status is the one-word verdict printed for a document.
type Status string

const (
	StatusOK   Status = "OK"
	StatusWarn Status = "WARN"
	StatusFail Status = "FAIL"
)

// DocumentStatus derives the verdict of a reported document.
func DocumentStatus(doc interfaces.DocumentReport) Status {
	switch {
	case len(doc.Errors) > 0:
		return StatusFail
	case len(doc.Warnings) > 0:
		return StatusWarn
	default:
		return StatusOK
	}
}

// SummaryOptions tunes Summarize.
type SummaryOptions struct {
	// LowConfidence overrides DefaultLowConfidence when positive.
	LowConfidence float64
	// MaxPerGroup caps the issues listed per warning field and suggestion
	// field. Zero lists everything.
	MaxPerGroup int
}

// Issue is one message attributed to a document.
type Issue struct {
	CommandID string
	Message   string
}

// IssueGroup collects the warnings raised for one field.
type IssueGroup struct {
	Field  string
	Issues []Issue
}

// CategoryCount is one row of the category distribution.
type CategoryCount struct {
	Category string
	Count    int
}

// Completeness reports how many documents carry a field.
type Completeness struct {
	Field   string
	Present int
	Total   int
}

// Suggestion proposes a concrete edit for a document.
type Suggestion struct {
	CommandID string
	Field     string
	Text      string
	Action    string
}

// Summary is the human oriented reduction of a CorpusReport. Counts are
// recomputed from the documents rather than trusted from the artifact.
type Summary struct {
	TotalDocuments      int
	Passed              int
	WithWarnings        int
	DocumentsWithErrors int
	TotalErrors         int
	TotalWarnings       int
	AverageConfidence   float64
	LowConfidenceLimit  float64
	MaxPerGroup         int

	Errors        []Issue
	Warnings      []IssueGroup
	Categories    []CategoryCount
	Completeness  []Completeness
	LowConfidence []Issue
	Suggestions   []Suggestion
}

// Summarize reduces report for display.
func Summarize(report *interfaces.CorpusReport, opts SummaryOptions) Summary {
	limit := opts.LowConfidence
	if limit <= 0 {
		limit = DefaultLowConfidence
	}
	summary := Summary{
		LowConfidenceLimit: limit,
		MaxPerGroup:        opts.MaxPerGroup,
	}
	if report == nil {
		return summary
	}

	docs := append([]interfaces.DocumentReport(nil), report.Documents...)
	sort.Slice(docs, func(i, j int) bool { return docs[i].CommandID < docs[j].CommandID })

	warningsByField := map[string][]Issue{}
	categories := map[string]int{}
	present := map[string]int{}
	type lowEntry struct {
		id         string
		confidence float64
	}
	var low []lowEntry
	var confidenceSum float64

	for _, doc := range docs {
		summary.TotalDocuments++
		confidenceSum += doc.Confidence
		summary.TotalErrors += len(doc.Errors)
		summary.TotalWarnings += len(doc.Warnings)

		switch DocumentStatus(doc) {
		case StatusFail:
			summary.DocumentsWithErrors++
		case StatusWarn:
			summary.WithWarnings++
		default:
			summary.Passed++
		}

		for _, message := range doc.Errors {
			summary.Errors = append(summary.Errors, Issue{CommandID: doc.CommandID, Message: message})
		}
		for _, message := range doc.Warnings {
			field := messageField(message)
			warningsByField[field] = append(warningsByField[field], Issue{CommandID: doc.CommandID, Message: message})
		}

		category := doc.Category
		if category == "" {
			category = "unknown"
		}
		categories[category]++

		countPresent(present, doc)
		if doc.Confidence < limit {
			low = append(low, lowEntry{id: doc.CommandID, confidence: doc.Confidence})
		}
		summary.Suggestions = append(summary.Suggestions, suggestionsFor(doc)...)
	}

	if summary.TotalDocuments > 0 {
		summary.AverageConfidence = round4(confidenceSum / float64(summary.TotalDocuments))
	}

	fields := make([]string, 0, len(warningsByField))
	for field := range warningsByField {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		summary.Warnings = append(summary.Warnings, IssueGroup{Field: field, Issues: warningsByField[field]})
	}

	names := make([]string, 0, len(categories))
	for name := range categories {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		summary.Categories = append(summary.Categories, CategoryCount{Category: name, Count: categories[name]})
	}

	for _, field := range completenessFields {
		summary.Completeness = append(summary.Completeness, Completeness{
			Field:   field,
			Present: present[field],
			Total:   summary.TotalDocuments,
		})
	}

	sort.SliceStable(low, func(i, j int) bool { return low[i].confidence < low[j].confidence })
	for _, entry := range low {
		summary.LowConfidence = append(summary.LowConfidence, Issue{
			CommandID: entry.id,
			Message:   formatPercent(entry.confidence),
		})
	}
	return summary
}

// HasWarnings reports whether any document carries a warning.
func (s Summary) HasWarnings() bool {
	return s.TotalWarnings > 0
}

var completenessFields = []string{"purpose", "tier_applicability", "related_commands", "next_steps", "prerequisites", "has_examples", "has_checklist"}

func countPresent(present map[string]int, doc interfaces.DocumentReport) {
	if strings.TrimSpace(doc.Purpose) != "" {
		present["purpose"]++
	}
	if len(doc.TierApplicability) > 0 {
		present["tier_applicability"]++
	}
	if len(doc.RelatedCommands) > 0 {
		present["related_commands"]++
	}
	if len(doc.NextSteps) > 0 {
		present["next_steps"]++
	}
	if len(doc.Prerequisites) > 0 {
		present["prerequisites"]++
	}
	if doc.HasExamples {
		present["has_examples"]++
	}
	if doc.HasChecklist {
		present["has_checklist"]++
	}
}

var (
	tierCategories      = map[string]struct{}{"core": {}, "development": {}, "planning": {}}
	nextStepsCategories = map[string]struct{}{"development": {}, "planning": {}}
)

func suggestionsFor(doc interfaces.DocumentReport) []Suggestion {
	var out []Suggestion
	if _, ok := tierCategories[doc.Category]; ok && len(doc.TierApplicability) == 0 {
		out = append(out, Suggestion{
			CommandID: doc.CommandID,
			Field:     "tier_applicability",
			Text:      "Add explicit tier information (XS/S/M/L)",
			Action:    "Add 'Tier: S' or 'Tier: [S, M, L]' to the command file",
		})
	}
	if !doc.HasExamples && doc.Category != "templates" {
		out = append(out, Suggestion{
			CommandID: doc.CommandID,
			Field:     "has_examples",
			Text:      "Add code examples or concrete usage examples",
			Action:    "Include at least one fenced code block with a real example",
		})
	}
	if _, ok := nextStepsCategories[doc.Category]; ok && len(doc.NextSteps) == 0 {
		out = append(out, Suggestion{
			CommandID: doc.CommandID,
			Field:     "next_steps",
			Text:      "Add a 'Next Steps' section showing workflow progression",
			Action:    "Add '## Next Steps' with command references",
		})
	}
	for _, message := range append(append([]string{}, doc.Errors...), doc.Warnings...) {
		if messageField(message) == "purpose" {
			out = append(out, Suggestion{
				CommandID: doc.CommandID,
				Field:     "purpose",
				Text:      "Clarify the purpose statement",
				Action:    "Make the first paragraph after the title one complete, specific sentence",
			})
			break
		}
	}
	return out
}

// messageField returns the "<field>" prefix of a "<field>: <reason>" message.
func messageField(message string) string {
	if field, _, ok := strings.Cut(message, ": "); ok {
		return field
	}
	return "general"
}
