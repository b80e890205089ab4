package markdown

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/goliatone/go-playbook-meta/internal/xref"
	"github.com/goliatone/go-playbook-meta/pkg/interfaces"
)

var (
	explicitTierPattern = regexp.MustCompile(`\b[Tt]ier:(?:\*\*)?\s*\[?\s*((?:XS|S|M|L)\b(?:\s*,\s*(?:XS|S|M|L)\b)*)`)
	tableTierPattern    = regexp.MustCompile(`\|\s*\*\*(XS|S|M|L)\*\*\s*\|`)
	tierSplitPattern    = regexp.MustCompile(`\s*,\s*`)
)

// ExtractTiers collects tier applicability from explicit "Tier: S" or
// "Tier: [S, M]" statements, bold tier cells in tables, and the front-matter
// "tier" key. The result is ordered XS, S, M, L.
func ExtractTiers(body string, fm interfaces.FrontMatter) []interfaces.Tier {
	var tiers []interfaces.Tier

	for _, match := range explicitTierPattern.FindAllStringSubmatch(body, -1) {
		for _, item := range tierSplitPattern.Split(match[1], -1) {
			if tier, ok := interfaces.ParseTier(item); ok {
				tiers = append(tiers, tier)
			}
		}
	}
	for _, match := range tableTierPattern.FindAllStringSubmatch(body, -1) {
		if tier, ok := interfaces.ParseTier(match[1]); ok {
			tiers = append(tiers, tier)
		}
	}
	if declared, ok := fm.Strings("tier"); ok {
		for _, item := range declared {
			if tier, ok := interfaces.ParseTier(item); ok {
				tiers = append(tiers, tier)
			}
		}
	}
	return interfaces.NormalizeTiers(tiers)
}

type frequencyRule struct {
	frequency interfaces.Frequency
	pattern   *regexp.Regexp
}

// Evaluated in order; the first match wins.
var frequencyRules = []frequencyRule{
	{interfaces.FrequencyDaily, regexp.MustCompile(`\bdaily\b|\beveryday\b`)},
	{interfaces.FrequencyWeekly, regexp.MustCompile(`\bweekly\b|\bweek\b`)},
	{interfaces.FrequencyStartOfFeature, regexp.MustCompile(`\bstart of feature\b|\bstart of\b.*\bfeature\b|\bbeginning of feature\b`)},
	{interfaces.FrequencyPerIteration, regexp.MustCompile(`\bper iteration\b|\beach iteration\b|\bevery iteration\b`)},
	{interfaces.FrequencyPerPR, regexp.MustCompile(`\bper pr\b|\bbefore.*\bpr\b|\beach.*\bpr\b`)},
	{interfaces.FrequencyPreRelease, regexp.MustCompile(`\brelease\b|\bpre-release\b|\bdeployment\b`)},
	{interfaces.FrequencyOnIncident, regexp.MustCompile(`\bincident\b|\bhotfix\b|\bemergency\b`)},
	{interfaces.FrequencyOneTime, regexp.MustCompile(`\bone-time\b|\binitial setup\b|\bfirst time\b`)},
}

// ExtractFrequency prefers a valid front-matter "frequency" value and otherwise
// infers one from the "When to Use" section, defaulting to as-needed.
func ExtractFrequency(doc *interfaces.Document) interfaces.Frequency {
	if declared, ok := doc.FrontMatter.String("frequency"); ok && interfaces.IsValidFrequency(declared) {
		return interfaces.Frequency(declared)
	}
	section, ok := doc.FindSection("When to Use")
	if !ok {
		return interfaces.FrequencyAsNeeded
	}
	text := strings.ToLower(section.Body)
	for _, rule := range frequencyRules {
		if rule.pattern.MatchString(text) {
			return rule.frequency
		}
	}
	return interfaces.FrequencyAsNeeded
}

var (
	nextStepHeadings     = []string{"Next Steps", "Then", "Workflow", "After"}
	prerequisiteHeadings = []string{"Prerequisites", "Before", "Pre-Start"}
)

// ExtractNextSteps returns the ordered references listed in the first
// "Next Steps", "Then", "Workflow" or "After" section.
func ExtractNextSteps(doc *interfaces.Document, prefix string) []string {
	return sectionReferences(doc, prefix, nextStepHeadings)
}

// ExtractPrerequisites returns the ordered references listed in the first
// "Prerequisites", "Before" or "Pre-Start" section.
func ExtractPrerequisites(doc *interfaces.Document, prefix string) []string {
	return sectionReferences(doc, prefix, prerequisiteHeadings)
}

func sectionReferences(doc *interfaces.Document, prefix string, headings []string) []string {
	out := []string{}
	section, ok := doc.FindSection(headings...)
	if !ok {
		return out
	}
	for _, token := range xref.Scan(section.Body, prefix) {
		if id := xref.Normalize(token); id != doc.CommandID {
			out = append(out, id)
		}
	}
	return out
}

var (
	decisionArrowPattern = regexp.MustCompile(`(?i)([^→\n]+?)\s*→\s*(?:use\s+)?(/[a-z0-9-]{3,})`)
	useWhenPattern       = regexp.MustCompile(`(?i)use\s+(?:when|if):\s*([^\n]+)`)
)

// ExtractDecisionContext captures "condition → /command" routing hints and the
// "Use when:" conditions of the When to Use section.
func ExtractDecisionContext(doc *interfaces.Document) map[string]string {
	ctx := map[string]string{}
	for _, match := range decisionArrowPattern.FindAllStringSubmatch(doc.Body, -1) {
		condition := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(match[1]), "-*|"))
		if condition == "" {
			continue
		}
		ctx[condition] = match[2]
	}
	if section, ok := doc.FindSection("When to Use"); ok {
		for _, match := range useWhenPattern.FindAllStringSubmatch(section.Body, -1) {
			ctx[fmt.Sprintf("use_when_%d", len(ctx))] = strings.TrimSpace(match[1])
		}
	}
	return ctx
}

var skillIndicators = []string{"You are ", "You will ", "Lets ", "You should "}

// IsSkillFile reports whether source is a prompt template rather than a
// command document, judged by its first line.
func IsSkillFile(source []byte) bool {
	first := string(bytes.TrimPrefix(source, byteOrderMark))
	if idx := strings.IndexByte(first, '\n'); idx >= 0 {
		first = first[:idx]
	}
	first = strings.TrimSpace(first)
	for _, prefix := range skillIndicators {
		if strings.HasPrefix(first, prefix) {
			return true
		}
	}
	return false
}
