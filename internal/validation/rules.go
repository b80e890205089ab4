// Package validation applies the per-document rule table and computes the
// confidence score recorded in the corpus report.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-playbook-meta/internal/markdown"
	"github.com/goliatone/go-playbook-meta/internal/xref"
	"github.com/goliatone/go-playbook-meta/pkg/interfaces"
)

// Field names used as FieldResults keys and message prefixes.
const (
	FieldFrontMatter     = "front_matter"
	FieldTitle           = "title"
	FieldPurpose         = "purpose"
	FieldCategory        = "category"
	FieldRelatedCommands = "related_commands"
	FieldDeclaredRelated = "front_matter.related_commands"
	FieldTier            = "tier_applicability"
	FieldFrequency       = "frequency"
	FieldStructure       = "structure"
)

// Fields lists every field the validator reports on, in evaluation order.
var Fields = []string{
	FieldFrontMatter,
	FieldTitle,
	FieldPurpose,
	FieldCategory,
	FieldRelatedCommands,
	FieldDeclaredRelated,
	FieldTier,
	FieldFrequency,
	FieldStructure,
}

const (
	titleMinRunes   = 5
	titleMaxRunes   = 80
	purposeMinRunes = 20
	purposeMaxRunes = 300
)

var (
	genericTitles      = []any{"help", "guide", "readme", "index", "notes", "todo", "untitled"}
	purposeEndPattern  = regexp.MustCompile(`[.!?]$`)
	workflowHeadings   = []string{"Workflow", "Core Workflow"}
	declaredRelatedKey = "related_commands"
)

// Options tunes the rule table.
type Options struct {
	// AllowedCategories, when non-empty, restricts category to its members.
	AllowedCategories []string
}

// Validator evaluates documents against the rule table. It is stateless after
// construction and safe for concurrent use.
type Validator struct {
	allowedCategories []any
}

// NewValidator constructs a Validator.
func NewValidator(opts Options) *Validator {
	allowed := make([]any, 0, len(opts.AllowedCategories))
	for _, category := range opts.AllowedCategories {
		if trimmed := strings.TrimSpace(category); trimmed != "" {
			allowed = append(allowed, trimmed)
		}
	}
	return &Validator{allowedCategories: allowed}
}

// Validate runs every rule against doc. The computed confidence is returned on
// the result and recorded on doc.
func (v *Validator) Validate(doc *interfaces.Document, index xref.Index) interfaces.ValidationResult {
	results := newResultSet()

	v.checkFrontMatter(doc, results)
	v.checkTitle(doc, results)
	v.checkPurpose(doc, results)
	v.checkCategory(doc, results)
	v.checkReferences(doc, results)
	v.checkDeclaredReferences(doc, index, results)
	v.checkTiers(doc, results)
	v.checkFrequency(doc, results)
	v.checkStructure(doc, results)

	out := results.result(doc.CommandID)
	out.Confidence = Confidence(doc, out.FieldResults)
	doc.Confidence = out.Confidence
	return out
}

func (v *Validator) checkFrontMatter(doc *interfaces.Document, rs *resultSet) {
	for _, err := range doc.ParseErrors {
		if errors.Is(err, markdown.ErrMalformedFrontMatter) || errors.Is(err, markdown.ErrUnsupportedFrontMatter) {
			rs.add(FieldFrontMatter, interfaces.FieldFail, err.Error())
		}
	}
}

func (v *Validator) checkTitle(doc *interfaces.Document, rs *resultSet) {
	title := strings.TrimSpace(doc.Title)
	if title == "" {
		reason := "is required"
		for _, err := range doc.ParseErrors {
			if errors.Is(err, markdown.ErrMissingTitle) {
				reason = err.Error()
				break
			}
		}
		rs.add(FieldTitle, interfaces.FieldFail, reason)
		return
	}
	rs.check(FieldTitle, interfaces.FieldWarn, title,
		validation.RuneLength(titleMinRunes, titleMaxRunes).Error(fmt.Sprintf("length must be between %d and %d characters", titleMinRunes, titleMaxRunes)))
	rs.check(FieldTitle, interfaces.FieldWarn, strings.ToLower(title),
		validation.NotIn(genericTitles...).Error(fmt.Sprintf("%q is too generic", title)))
}

func (v *Validator) checkPurpose(doc *interfaces.Document, rs *resultSet) {
	purpose := strings.TrimSpace(doc.Purpose)
	if !rs.check(FieldPurpose, interfaces.FieldFail, purpose, validation.Required.Error("is required")) {
		return
	}
	rs.check(FieldPurpose, interfaces.FieldWarn, purpose,
		validation.RuneLength(purposeMinRunes, purposeMaxRunes).Error(fmt.Sprintf("length must be between %d and %d characters", purposeMinRunes, purposeMaxRunes)))
	rs.check(FieldPurpose, interfaces.FieldWarn, purpose,
		validation.Match(purposeEndPattern).Error("should end with '.', '!' or '?'"))
}

func (v *Validator) checkCategory(doc *interfaces.Document, rs *resultSet) {
	category := strings.TrimSpace(doc.Category)
	if !rs.check(FieldCategory, interfaces.FieldFail, category, validation.Required.Error("is required")) {
		return
	}
	if len(v.allowedCategories) == 0 {
		return
	}
	rs.check(FieldCategory, interfaces.FieldWarn, category,
		validation.In(v.allowedCategories...).Error(fmt.Sprintf("%q is not an allowed category", category)))
}

func (v *Validator) checkReferences(doc *interfaces.Document, rs *resultSet) {
	for _, token := range doc.UnresolvedReferences {
		rs.add(FieldRelatedCommands, interfaces.FieldWarn, fmt.Sprintf("unresolved reference %s", token))
	}
}

// checkDeclaredReferences compares the front-matter related_commands list with
// the corpus index and with the references found in the body.
func (v *Validator) checkDeclaredReferences(doc *interfaces.Document, index xref.Index, rs *resultSet) {
	declared, ok := doc.FrontMatter.Strings(declaredRelatedKey)
	if !ok {
		return
	}

	inBody := map[string]struct{}{}
	for _, id := range doc.RelatedCommands {
		inBody[id] = struct{}{}
	}
	for _, token := range doc.UnresolvedReferences {
		inBody[xref.Normalize(token)] = struct{}{}
	}

	declaredSet := map[string]struct{}{}
	for _, entry := range declared {
		id := xref.Normalize(entry)
		if id == "" || id == doc.CommandID {
			continue
		}
		if _, seen := declaredSet[id]; seen {
			continue
		}
		declaredSet[id] = struct{}{}
		if !index.Contains(id) {
			rs.add(FieldDeclaredRelated, interfaces.FieldWarn, fmt.Sprintf("declared /%s does not resolve", id))
		}
		if _, found := inBody[id]; !found {
			rs.add(FieldDeclaredRelated, interfaces.FieldWarn, fmt.Sprintf("declared /%s is never referenced in the body", id))
		}
	}
	for _, id := range doc.RelatedCommands {
		if _, found := declaredSet[id]; !found {
			rs.add(FieldDeclaredRelated, interfaces.FieldWarn, fmt.Sprintf("/%s is referenced in the body but not declared", id))
		}
	}
}

func (v *Validator) checkTiers(doc *interfaces.Document, rs *resultSet) {
	declared, ok := doc.FrontMatter.Strings("tier")
	if !ok {
		return
	}
	valid := make([]any, 0, len(interfaces.ValidTiers))
	for _, tier := range interfaces.ValidTiers {
		valid = append(valid, string(tier))
	}
	for _, item := range declared {
		rs.check(FieldTier, interfaces.FieldWarn, strings.ToUpper(strings.TrimSpace(item)),
			validation.In(valid...).Error(fmt.Sprintf("tier %q is not one of XS, S, M, L", item)))
	}
}

func (v *Validator) checkFrequency(doc *interfaces.Document, rs *resultSet) {
	declared, ok := doc.FrontMatter.String("frequency")
	if !ok || declared == "" {
		return
	}
	valid := make([]any, 0, len(interfaces.ValidFrequencies))
	for _, freq := range interfaces.ValidFrequencies {
		valid = append(valid, string(freq))
	}
	rs.check(FieldFrequency, interfaces.FieldWarn, declared,
		validation.In(valid...).Error(fmt.Sprintf("%q is not a known frequency", declared)))
}

// checkStructure requires the workflow steps to be numbered 1, 2, 3 without
// gaps or restarts. Only the first break is reported.
func (v *Validator) checkStructure(doc *interfaces.Document, rs *resultSet) {
	section, ok := doc.FindSection(workflowHeadings...)
	if !ok {
		return
	}
	numbers := markdown.ListNumbers(section.Body)
	for i, n := range numbers {
		want := i + 1
		if n == want {
			continue
		}
		switch {
		case i == 0:
			rs.add(FieldStructure, interfaces.FieldWarn, fmt.Sprintf("%s numbering starts at %d", section.Heading, n))
		case n < want:
			rs.add(FieldStructure, interfaces.FieldWarn, fmt.Sprintf("%s numbering restarts at %d after %d", section.Heading, n, numbers[i-1]))
		default:
			rs.add(FieldStructure, interfaces.FieldWarn, fmt.Sprintf("%s numbering jumps from %d to %d", section.Heading, numbers[i-1], n))
		}
		return
	}
}

type resultSet struct {
	fields map[string]interfaces.FieldResult
	errs   []string
	warns  []string
}

func newResultSet() *resultSet {
	fields := make(map[string]interfaces.FieldResult, len(Fields))
	for _, name := range Fields {
		fields[name] = interfaces.FieldResult{Status: interfaces.FieldPass}
	}
	return &resultSet{fields: fields}
}

// check runs rules against value and records a violation at severity. It
// reports whether the value passed.
func (rs *resultSet) check(field string, severity interfaces.FieldStatus, value any, rules ...validation.Rule) bool {
	if err := validation.Validate(value, rules...); err != nil {
		rs.add(field, severity, err.Error())
		return false
	}
	return true
}

func (rs *resultSet) add(field string, severity interfaces.FieldStatus, reason string) {
	message := field + ": " + reason
	current := rs.fields[field]
	if statusRank(severity) > statusRank(current.Status) {
		current.Status = severity
	}
	current.Messages = append(current.Messages, message)
	rs.fields[field] = current

	switch severity {
	case interfaces.FieldFail:
		rs.errs = append(rs.errs, message)
	case interfaces.FieldWarn:
		rs.warns = append(rs.warns, message)
	}
}

func (rs *resultSet) result(commandID string) interfaces.ValidationResult {
	errs := append([]string{}, rs.errs...)
	warns := append([]string{}, rs.warns...)
	return interfaces.ValidationResult{
		CommandID:    commandID,
		FieldResults: rs.fields,
		Errors:       errs,
		Warnings:     warns,
	}
}

func statusRank(status interfaces.FieldStatus) int {
	switch status {
	case interfaces.FieldFail:
		return 2
	case interfaces.FieldWarn:
		return 1
	default:
		return 0
	}
}
