package runtimeconfig

import (
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"
)

var ErrInputDirRequired = errors.New("pbmeta config: input directory is required")
var ErrOutputRequired = errors.New("pbmeta config: output path is required")
var ErrMetadataPathRequired = errors.New("pbmeta config: metadata path is required")
var ErrPatternInvalid = errors.New("pbmeta config: file pattern is invalid")
var ErrWorkersInvalid = errors.New("pbmeta config: workers must be zero or positive")
var ErrTimeoutInvalid = errors.New("pbmeta config: timeout must be zero or positive")
var ErrLowConfidenceInvalid = errors.New("pbmeta config: low confidence threshold must be within [0, 1]")
var ErrLoggingProviderRequired = errors.New("pbmeta config: logging provider is required")
var ErrLoggingProviderUnknown = errors.New("pbmeta config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("pbmeta config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("pbmeta config: logging format is invalid")

// ErrEnvInvalid wraps an environment override that cannot be parsed.
var ErrEnvInvalid = errors.New("pbmeta config: environment value is invalid")

// Config aggregates the settings of both CLI operations. Defaults come from
// DefaultConfig, PBMETA_* variables are layered on with ApplyEnv and flags win
// last.
type Config struct {
	Extract    ExtractConfig
	Validation ValidationConfig
	Logging    LoggingConfig
}

// ExtractConfig controls discovery and per-file extraction.
type ExtractConfig struct {
	InputDir  string
	Output    string
	Pattern   string
	Recursive bool
	// Workers bounds the pass-one parse pool; zero selects GOMAXPROCS.
	Workers int
	// ReferencePrefix restricts recognised references (e.g. "pb-"). Empty accepts any.
	ReferencePrefix   string
	IncludeSkillFiles bool
	// Extensions names the goldmark extensions used for structural inspection.
	Extensions []string
	Timeout    time.Duration
}

// ValidationConfig tunes the rule table and the summary shown by validate.
type ValidationConfig struct {
	// MetadataPath is the artifact read by validate.
	MetadataPath      string
	AllowedCategories []string
	LowConfidence     float64
	FailOnWarning     bool
	MaxPerGroup       int
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// DefaultConfig returns the defaults used when neither env nor flags override.
func DefaultConfig() Config {
	return Config{
		Extract: ExtractConfig{
			Pattern:    "*.md",
			Recursive:  true,
			Workers:    0,
			Extensions: []string{"gfm"},
		},
		Validation: ValidationConfig{
			LowConfidence: 0.8,
			MaxPerGroup:   3,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "warn",
			Format:   "console",
		},
	}
}

// Validate performs consistency checks that hold for every operation.
func (cfg Config) Validate() error {
	if _, err := path.Match(cfg.Extract.Pattern, ""); err != nil {
		return fmt.Errorf("%w: %s", ErrPatternInvalid, cfg.Extract.Pattern)
	}
	if cfg.Extract.Workers < 0 {
		return ErrWorkersInvalid
	}
	if cfg.Extract.Timeout < 0 {
		return ErrTimeoutInvalid
	}
	if cfg.Validation.LowConfidence < 0 || cfg.Validation.LowConfidence > 1 {
		return ErrLowConfidenceInvalid
	}

	provider := normalizeProvider(cfg.Logging.Provider)
	if provider == "" {
		return ErrLoggingProviderRequired
	}
	if !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider == "gologger" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

// ValidateExtract additionally requires the extract paths.
func (cfg Config) ValidateExtract() error {
	if strings.TrimSpace(cfg.Extract.InputDir) == "" {
		return ErrInputDirRequired
	}
	if strings.TrimSpace(cfg.Extract.Output) == "" {
		return ErrOutputRequired
	}
	return cfg.Validate()
}

// ValidateMetadata additionally requires the artifact path read by validate.
func (cfg Config) ValidateMetadata() error {
	if strings.TrimSpace(cfg.Validation.MetadataPath) == "" {
		return ErrMetadataPathRequired
	}
	return cfg.Validate()
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overlays PBMETA_* variables onto cfg. Unset variables leave the
// current value alone.
func (cfg *Config) ApplyEnv(lookup LookupFunc) error {
	if lookup == nil {
		return nil
	}

	str := func(key string, dst *string) {
		if value, ok := lookup(key); ok {
			*dst = strings.TrimSpace(value)
		}
	}
	list := func(key string, dst *[]string) {
		if value, ok := lookup(key); ok {
			*dst = SplitList(value)
		}
	}
	boolean := func(key string, dst *bool) error {
		value, ok := lookup(key)
		if !ok {
			return nil
		}
		parsed, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrEnvInvalid, key, value)
		}
		*dst = parsed
		return nil
	}

	str("PBMETA_INPUT_DIR", &cfg.Extract.InputDir)
	str("PBMETA_OUTPUT", &cfg.Extract.Output)
	str("PBMETA_PATTERN", &cfg.Extract.Pattern)
	str("PBMETA_REF_PREFIX", &cfg.Extract.ReferencePrefix)
	list("PBMETA_EXTENSIONS", &cfg.Extract.Extensions)
	str("PBMETA_METADATA", &cfg.Validation.MetadataPath)
	list("PBMETA_CATEGORIES", &cfg.Validation.AllowedCategories)
	str("PBMETA_LOG_PROVIDER", &cfg.Logging.Provider)
	str("PBMETA_LOG_LEVEL", &cfg.Logging.Level)
	str("PBMETA_LOG_FORMAT", &cfg.Logging.Format)
	list("PBMETA_LOG_FOCUS", &cfg.Logging.Focus)

	if err := boolean("PBMETA_RECURSIVE", &cfg.Extract.Recursive); err != nil {
		return err
	}
	if err := boolean("PBMETA_INCLUDE_SKILL_FILES", &cfg.Extract.IncludeSkillFiles); err != nil {
		return err
	}
	if err := boolean("PBMETA_FAIL_ON_WARNING", &cfg.Validation.FailOnWarning); err != nil {
		return err
	}

	if value, ok := lookup("PBMETA_WORKERS"); ok {
		workers, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%w: PBMETA_WORKERS=%q", ErrEnvInvalid, value)
		}
		cfg.Extract.Workers = workers
	}
	if value, ok := lookup("PBMETA_TIMEOUT"); ok {
		timeout, err := time.ParseDuration(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%w: PBMETA_TIMEOUT=%q", ErrEnvInvalid, value)
		}
		cfg.Extract.Timeout = timeout
	}
	if value, ok := lookup("PBMETA_LOW_CONFIDENCE"); ok {
		threshold, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return fmt.Errorf("%w: PBMETA_LOW_CONFIDENCE=%q", ErrEnvInvalid, value)
		}
		cfg.Validation.LowConfidence = threshold
	}
	return nil
}

// SplitList splits a comma separated value, dropping blank entries.
func SplitList(value string) []string {
	out := []string{}
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
