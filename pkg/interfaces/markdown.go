package interfaces

import (
	"fmt"
	"sort"
	"strings"
)

// Tier is the effort bucket a command document applies to.
type Tier string

const (
	TierXS Tier = "XS"
	TierS  Tier = "S"
	TierM  Tier = "M"
	TierL  Tier = "L"
)

// ValidTiers lists the tier enumeration in ascending order.
var ValidTiers = []Tier{TierXS, TierS, TierM, TierL}

// ParseTier normalises raw text into a Tier. Unknown values report false.
func ParseTier(value string) (Tier, bool) {
	candidate := Tier(strings.ToUpper(strings.TrimSpace(value)))
	for _, tier := range ValidTiers {
		if tier == candidate {
			return tier, true
		}
	}
	return "", false
}

// Rank returns the ordinal position of the tier, or -1 when unknown.
func (t Tier) Rank() int {
	for i, tier := range ValidTiers {
		if tier == t {
			return i
		}
	}
	return -1
}

// NormalizeTiers deduplicates tiers and orders them XS, S, M, L. Unknown
// entries are dropped.
func NormalizeTiers(tiers []Tier) []Tier {
	seen := make(map[Tier]struct{}, len(tiers))
	out := make([]Tier, 0, len(tiers))
	for _, tier := range tiers {
		if tier.Rank() < 0 {
			continue
		}
		if _, ok := seen[tier]; ok {
			continue
		}
		seen[tier] = struct{}{}
		out = append(out, tier)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rank() < out[j].Rank() })
	return out
}

// Frequency describes how often a command is expected to be used.
type Frequency string

const (
	FrequencyDaily          Frequency = "daily"
	FrequencyWeekly         Frequency = "weekly"
	FrequencyStartOfFeature Frequency = "start-of-feature"
	FrequencyPerIteration   Frequency = "per-iteration"
	FrequencyPerPR          Frequency = "per-pr"
	FrequencyPreRelease     Frequency = "pre-release"
	FrequencyOnIncident     Frequency = "on-incident"
	FrequencyOneTime        Frequency = "one-time"
	FrequencyAsNeeded       Frequency = "as-needed"
)

// ValidFrequencies enumerates the accepted frequency values.
var ValidFrequencies = []Frequency{
	FrequencyDaily,
	FrequencyWeekly,
	FrequencyStartOfFeature,
	FrequencyPerIteration,
	FrequencyPerPR,
	FrequencyPreRelease,
	FrequencyOnIncident,
	FrequencyOneTime,
	FrequencyAsNeeded,
}

// IsValidFrequency reports whether value is part of the frequency enumeration.
func IsValidFrequency(value string) bool {
	for _, freq := range ValidFrequencies {
		if string(freq) == value {
			return true
		}
	}
	return false
}

// FrontMatter holds the flat key/value metadata declared at the top of a
// command document. Values are scalars or []any.
type FrontMatter map[string]any

// String returns the scalar value stored under key rendered as text.
func (fm FrontMatter) String(key string) (string, bool) {
	value, ok := fm[key]
	if !ok || value == nil {
		return "", false
	}
	switch typed := value.(type) {
	case string:
		return strings.TrimSpace(typed), true
	case []any:
		return "", false
	default:
		return fmt.Sprint(typed), true
	}
}

// Strings returns the list stored under key. A scalar is promoted to a single
// element list so `tags: go` and `tags: [go]` read the same.
func (fm FrontMatter) Strings(key string) ([]string, bool) {
	value, ok := fm[key]
	if !ok || value == nil {
		return nil, false
	}
	switch typed := value.(type) {
	case []any:
		out := make([]string, 0, len(typed))
		for _, item := range typed {
			if item == nil {
				continue
			}
			if text := strings.TrimSpace(fmt.Sprint(item)); text != "" {
				out = append(out, text)
			}
		}
		return out, true
	case []string:
		return append([]string(nil), typed...), true
	case string:
		if strings.TrimSpace(typed) == "" {
			return []string{}, true
		}
		return []string{strings.TrimSpace(typed)}, true
	default:
		return []string{fmt.Sprint(typed)}, true
	}
}

// Section is a level-2 heading together with the text that follows it.
type Section struct {
	Heading string
	Slug    string
	Body    string
}

// Document is one parsed command file. Fields are populated by the markdown
// extractor in pass one; RelatedCommands, UnresolvedReferences and Confidence
// are filled once the corpus index exists.
type Document struct {
	CommandID  string
	Category   string
	SourcePath string
	// Checksum is the hex SHA-256 of the raw file content.
	Checksum string

	Title       string
	Purpose     string
	FrontMatter FrontMatter
	Sections    []Section
	// Body is the Markdown text following the front matter.
	Body string

	RelatedCommands      []string
	UnresolvedReferences []string
	TierApplicability    []Tier
	NextSteps            []string
	Prerequisites        []string
	Frequency            Frequency
	DecisionContext      map[string]string
	HasExamples          bool
	HasChecklist         bool

	// ParseErrors collects per-file parse failures. They never abort a run.
	ParseErrors []error

	Confidence float64
}

// FindSection returns the first section whose heading equals one of names,
// compared case-insensitively.
func (d *Document) FindSection(names ...string) (Section, bool) {
	if d == nil {
		return Section{}, false
	}
	for _, section := range d.Sections {
		heading := strings.TrimSpace(section.Heading)
		for _, name := range names {
			if strings.EqualFold(heading, name) {
				return section, true
			}
		}
	}
	return Section{}, false
}

// FieldStatus is the outcome of a single validation rule group.
type FieldStatus string

const (
	FieldPass FieldStatus = "pass"
	FieldWarn FieldStatus = "warn"
	FieldFail FieldStatus = "fail"
)

// FieldResult captures the worst status observed for a field and every
// message produced while validating it.
type FieldResult struct {
	Status   FieldStatus `json:"status"`
	Messages []string    `json:"messages,omitempty"`
}

// ValidationResult is the per-document verdict produced by the validator.
type ValidationResult struct {
	CommandID    string
	FieldResults map[string]FieldResult
	Errors       []string
	Warnings     []string
	Confidence   float64
}

// HasErrors reports whether any fail-level rule was violated.
func (r ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}
