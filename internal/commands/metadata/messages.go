package metadatacmd

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	extractMessageType  = "pbmeta.metadata.extract"
	validateMessageType = "pbmeta.metadata.validate"
)

// ExtractCommand runs a full extraction over InputDir and writes the corpus
// report to Output.
type ExtractCommand struct {
	// InputDir is the corpus root containing one Markdown file per command.
	InputDir string `json:"input_dir"`
	// Output is the path of the JSON artifact. It is only written when the run
	// completes without a fatal error.
	Output string `json:"output"`
	// Pattern limits discovered files (defaults to "*.md").
	Pattern string `json:"pattern,omitempty"`
	// Recursive traverses category sub-directories.
	Recursive bool `json:"recursive,omitempty"`
	// Workers bounds first-pass parsing concurrency. Zero uses GOMAXPROCS.
	Workers int `json:"workers,omitempty"`
	// ReferencePrefix restricts cross-references to IDs with this prefix.
	ReferencePrefix string `json:"reference_prefix,omitempty"`
	// IncludeSkillFiles keeps prompt-template files in the corpus.
	IncludeSkillFiles bool `json:"include_skill_files,omitempty"`
	// Extensions names the goldmark extensions used for structural inspection.
	Extensions []string `json:"extensions,omitempty"`
	// AllowedCategories, when set, warns on documents outside the list.
	AllowedCategories []string `json:"allowed_categories,omitempty"`
	// Timeout bounds the run. Zero disables the bound.
	Timeout time.Duration `json:"timeout,omitempty"`
}

// Type implements command.Message.
func (ExtractCommand) Type() string { return extractMessageType }

// Validate ensures the input and output locations are present before handlers execute.
func (cmd ExtractCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.InputDir, validation.By(requiredText("pbmeta.metadata.extract.input_dir_required", "input directory is required"))),
		validation.Field(&cmd.Output, validation.By(requiredText("pbmeta.metadata.extract.output_required", "output path is required"))),
		validation.Field(&cmd.Workers, validation.Min(0)),
		validation.Field(&cmd.Timeout, validation.Min(time.Duration(0))),
	)
}

// ValidateCommand re-checks a previously written artifact and summarises it.
type ValidateCommand struct {
	// MetadataPath is the artifact to read.
	MetadataPath string `json:"metadata_path"`
	// LowConfidence lists documents scoring below the threshold.
	LowConfidence float64 `json:"low_confidence,omitempty"`
	// MaxPerGroup caps the messages shown per issue group.
	MaxPerGroup int `json:"max_per_group,omitempty"`
}

// Type implements command.Message.
func (ValidateCommand) Type() string { return validateMessageType }

// Validate ensures the artifact path is present before handlers execute.
func (cmd ValidateCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.MetadataPath, validation.By(requiredText("pbmeta.metadata.validate.metadata_required", "metadata path is required"))),
		validation.Field(&cmd.LowConfidence, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&cmd.MaxPerGroup, validation.Min(0)),
	)
}

func requiredText(code, message string) validation.RuleFunc {
	return func(value any) error {
		text, _ := value.(string)
		if strings.TrimSpace(text) == "" {
			return validation.NewError(code, message)
		}
		return nil
	}
}
