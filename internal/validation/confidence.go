package validation

import (
	"math"

	"github.com/goliatone/go-playbook-meta/pkg/interfaces"
)

// Confidence weights. Required fields share 0.6 and optional completeness
// shares 0.4; the total is 1.
const (
	WeightTitle     = 0.2
	WeightPurpose   = 0.2
	WeightCategory  = 0.2
	WeightResolved  = 0.2
	WeightTier      = 0.1
	WeightExamples  = 0.05
	WeightChecklist = 0.05
)

const confidencePrecision = 10000

// Confidence scores doc from its current field state. Required fields earn
// their full weight on pass, half on warn and nothing on fail. References earn
// WeightResolved scaled by the resolved share of all references; a document
// with no references has nothing left unresolved and earns the full weight.
func Confidence(doc *interfaces.Document, fields map[string]interfaces.FieldResult) float64 {
	if doc == nil {
		return 0
	}

	score := requiredScore(fields[FieldTitle].Status, WeightTitle) +
		requiredScore(fields[FieldPurpose].Status, WeightPurpose) +
		requiredScore(fields[FieldCategory].Status, WeightCategory)

	score += WeightResolved * resolvedShare(doc)
	if len(doc.TierApplicability) > 0 {
		score += WeightTier
	}
	if doc.HasExamples {
		score += WeightExamples
	}
	if doc.HasChecklist {
		score += WeightChecklist
	}

	return math.Round(score*confidencePrecision) / confidencePrecision
}

func resolvedShare(doc *interfaces.Document) float64 {
	resolved := len(doc.RelatedCommands)
	total := resolved + len(doc.UnresolvedReferences)
	if total == 0 {
		return 1
	}
	return float64(resolved) / float64(total)
}

func requiredScore(status interfaces.FieldStatus, weight float64) float64 {
	switch status {
	case interfaces.FieldPass:
		return weight
	case interfaces.FieldWarn:
		return weight / 2
	default:
		return 0
	}
}
