package validation

import (
	"strings"
	"testing"

	"github.com/goliatone/go-playbook-meta/internal/markdown"
	"github.com/goliatone/go-playbook-meta/internal/xref"
	"github.com/goliatone/go-playbook-meta/pkg/interfaces"
)

func validDocument() *interfaces.Document {
	return &interfaces.Document{
		CommandID:   "pb-start",
		Category:    "core",
		SourcePath:  "core/pb-start.md",
		Title:       "Start Development Work",
		Purpose:     "Begin a focused unit of work on a branch.",
		FrontMatter: interfaces.FrontMatter{"name": "pb-start"},
		Sections: []interfaces.Section{
			{Heading: "When to Use", Slug: "when-to-use", Body: "Run /pb-cycle afterwards."},
		},
		RelatedCommands:      []string{"pb-cycle"},
		UnresolvedReferences: []string{},
	}
}

func corpusIndex() xref.Index {
	return xref.NewIndex([]string{"pb-start", "pb-cycle", "pb-ship"})
}

func TestValidateCleanDocument(t *testing.T) {
	doc := validDocument()

	result := NewValidator(Options{}).Validate(doc, corpusIndex())

	if len(result.Errors) != 0 || len(result.Warnings) != 0 {
		t.Fatalf("expected clean result, got errors=%v warnings=%v", result.Errors, result.Warnings)
	}
	if result.Confidence != 0.8 {
		t.Fatalf("expected confidence 0.8, got %v", result.Confidence)
	}
	if doc.Confidence != result.Confidence {
		t.Fatalf("expected confidence recorded on document")
	}
	for _, field := range Fields {
		if result.FieldResults[field].Status != interfaces.FieldPass {
			t.Fatalf("expected %s to pass, got %s", field, result.FieldResults[field].Status)
		}
	}
}

func TestValidateShortPurposeWarns(t *testing.T) {
	doc := validDocument()
	doc.Purpose = "Too short."

	result := NewValidator(Options{}).Validate(doc, corpusIndex())

	if result.HasErrors() {
		t.Fatalf("short purpose must not be an error: %v", result.Errors)
	}
	if len(result.Warnings) != 1 || !strings.HasPrefix(result.Warnings[0], "purpose: length must be between 20 and 300") {
		t.Fatalf("expected purpose length warning, got %v", result.Warnings)
	}
	if result.Confidence != 0.7 {
		t.Fatalf("expected confidence 0.7, got %v", result.Confidence)
	}
}

func TestValidateMissingTitleUsesParseError(t *testing.T) {
	doc := validDocument()
	doc.Title = ""
	doc.ParseErrors = []error{&markdown.ParseError{Path: doc.SourcePath, Kind: markdown.ErrMissingTitle, Reason: "no level-1 heading"}}

	result := NewValidator(Options{}).Validate(doc, corpusIndex())

	if len(result.Errors) != 1 {
		t.Fatalf("expected one error, got %v", result.Errors)
	}
	if !strings.HasPrefix(result.Errors[0], "title: MissingTitle") {
		t.Fatalf("expected MissingTitle message, got %q", result.Errors[0])
	}
	if result.FieldResults[FieldTitle].Status != interfaces.FieldFail {
		t.Fatalf("expected title to fail")
	}
}

func TestValidateFrontMatterFailures(t *testing.T) {
	doc := validDocument()
	doc.ParseErrors = []error{&markdown.ParseError{Path: doc.SourcePath, Kind: markdown.ErrMalformedFrontMatter, Reason: "never closed"}}

	result := NewValidator(Options{}).Validate(doc, corpusIndex())

	if result.FieldResults[FieldFrontMatter].Status != interfaces.FieldFail {
		t.Fatalf("expected front matter to fail, got %#v", result.FieldResults[FieldFrontMatter])
	}
	if !result.HasErrors() {
		t.Fatalf("expected errors")
	}
}

func TestValidateTitleRules(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{name: "too short", title: "Go", want: "title: length must be between 5 and 80 characters"},
		{name: "generic", title: "README", want: `title: "README" is too generic`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := validDocument()
			doc.Title = tt.title
			result := NewValidator(Options{}).Validate(doc, corpusIndex())
			if len(result.Warnings) != 1 || result.Warnings[0] != tt.want {
				t.Fatalf("expected %q, got %v", tt.want, result.Warnings)
			}
		})
	}
}

func TestValidatePurposePunctuation(t *testing.T) {
	doc := validDocument()
	doc.Purpose = "Begin a focused unit of work on a branch"

	result := NewValidator(Options{}).Validate(doc, corpusIndex())

	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0], "should end with") {
		t.Fatalf("expected punctuation warning, got %v", result.Warnings)
	}
}

func TestValidateCategory(t *testing.T) {
	doc := validDocument()
	doc.Category = ""
	result := NewValidator(Options{}).Validate(doc, corpusIndex())
	if len(result.Errors) != 1 || result.Errors[0] != "category: is required" {
		t.Fatalf("expected category required error, got %v", result.Errors)
	}

	doc = validDocument()
	result = NewValidator(Options{AllowedCategories: []string{"planning"}}).Validate(doc, corpusIndex())
	if len(result.Warnings) != 1 || result.Warnings[0] != `category: "core" is not an allowed category` {
		t.Fatalf("expected category warning, got %v", result.Warnings)
	}
}

func TestValidateUnresolvedReference(t *testing.T) {
	doc := validDocument()
	doc.UnresolvedReferences = []string{"/pb-does-not-exist"}

	result := NewValidator(Options{}).Validate(doc, corpusIndex())

	if len(result.Warnings) != 1 || result.Warnings[0] != "related_commands: unresolved reference /pb-does-not-exist" {
		t.Fatalf("expected unresolved warning, got %v", result.Warnings)
	}
	if result.Confidence != 0.7 {
		t.Fatalf("expected half the reference weight, got %v", result.Confidence)
	}
}

func TestValidateDeclaredReferences(t *testing.T) {
	doc := validDocument()
	doc.FrontMatter["related_commands"] = []any{"/pb-ship", "pb-missing", "pb-start"}

	result := NewValidator(Options{}).Validate(doc, corpusIndex())

	want := []string{
		"front_matter.related_commands: declared /pb-ship is never referenced in the body",
		"front_matter.related_commands: declared /pb-missing does not resolve",
		"front_matter.related_commands: declared /pb-missing is never referenced in the body",
		"front_matter.related_commands: /pb-cycle is referenced in the body but not declared",
	}
	if strings.Join(result.Warnings, "\n") != strings.Join(want, "\n") {
		t.Fatalf("unexpected warnings:\n%s", strings.Join(result.Warnings, "\n"))
	}
}

func TestValidateFrontMatterEnums(t *testing.T) {
	doc := validDocument()
	doc.FrontMatter["tier"] = []any{"m", "XXL"}
	doc.FrontMatter["frequency"] = "sometimes"

	result := NewValidator(Options{}).Validate(doc, corpusIndex())

	if result.FieldResults[FieldTier].Status != interfaces.FieldWarn {
		t.Fatalf("expected tier warning, got %#v", result.FieldResults[FieldTier])
	}
	if len(result.FieldResults[FieldTier].Messages) != 1 {
		t.Fatalf("expected a single tier message, got %v", result.FieldResults[FieldTier].Messages)
	}
	if result.FieldResults[FieldFrequency].Status != interfaces.FieldWarn {
		t.Fatalf("expected frequency warning, got %#v", result.FieldResults[FieldFrequency])
	}
}

func TestValidateWorkflowNumbering(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "sequential", body: "1. one\n2. two\n   1. nested\n3. three"},
		{name: "gap", body: "1. one\n2. two\n4. four", want: "structure: Workflow numbering jumps from 2 to 4"},
		{name: "reset", body: "1. one\n2. two\n1. again", want: "structure: Workflow numbering restarts at 1 after 2"},
		{name: "start", body: "2. two\n3. three", want: "structure: Workflow numbering starts at 2"},
		{name: "fenced ignored", body: "1. one\n```\n5. not a step\n```\n2. two"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := validDocument()
			doc.Sections = append(doc.Sections, interfaces.Section{Heading: "Workflow", Slug: "workflow", Body: tt.body})
			result := NewValidator(Options{}).Validate(doc, corpusIndex())
			messages := result.FieldResults[FieldStructure].Messages
			if tt.want == "" {
				if len(messages) != 0 {
					t.Fatalf("expected no structure messages, got %v", messages)
				}
				return
			}
			if len(messages) != 1 || messages[0] != tt.want {
				t.Fatalf("expected %q, got %v", tt.want, messages)
			}
		})
	}
}
