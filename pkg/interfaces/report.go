package interfaces

// MetadataVersion identifies the artifact layout written by the extractor.
const MetadataVersion = "1.0"

// CorpusReport is the JSON artifact emitted by an extraction run. Field order
// here is the key order in the encoded output.
type CorpusReport struct {
	MetadataVersion     string                     `json:"metadata_version"`
	GeneratedAt         string                     `json:"generated_at"`
	CorpusFingerprint   string                     `json:"corpus_fingerprint"`
	TotalDocuments      int                        `json:"total_documents"`
	SuccessfulDocuments int                        `json:"successful_documents"`
	AverageConfidence   float64                    `json:"average_confidence"`
	DocumentsWithErrors int                        `json:"documents_with_errors"`
	TotalErrors         int                        `json:"total_errors"`
	TotalWarnings       int                        `json:"total_warnings"`
	Categories          map[string]CategorySummary `json:"categories"`
	Documents           []DocumentReport           `json:"documents"`
}

// CategorySummary groups command IDs under their derived category.
type CategorySummary struct {
	Count    int      `json:"count"`
	Commands []string `json:"commands"`
}

// DocumentReport is the serialised view of one Document and its
// ValidationResult.
type DocumentReport struct {
	CommandID            string            `json:"command_id"`
	SourceFile           string            `json:"source_file"`
	Title                string            `json:"title"`
	Category             string            `json:"category"`
	Purpose              string            `json:"purpose"`
	Frequency            string            `json:"frequency"`
	Sections             []string          `json:"sections"`
	RelatedCommands      []string          `json:"related_commands"`
	UnresolvedReferences []string          `json:"unresolved_references"`
	NextSteps            []string          `json:"next_steps"`
	Prerequisites        []string          `json:"prerequisites"`
	TierApplicability    []string          `json:"tier_applicability"`
	DecisionContext      map[string]string `json:"decision_context"`
	HasExamples          bool              `json:"has_examples"`
	HasChecklist         bool              `json:"has_checklist"`
	Confidence           float64           `json:"confidence"`
	Errors               []string          `json:"errors"`
	Warnings             []string          `json:"warnings"`
}
