package runtimeconfig_test

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/goliatone/go-playbook-meta/internal/runtimeconfig"
)

func envMap(values map[string]string) runtimeconfig.LookupFunc {
	return func(key string) (string, bool) {
		value, ok := values[key]
		return value, ok
	}
}

func TestDefaultConfigValidates(t *testing.T) {
	if err := runtimeconfig.DefaultConfig().Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}

func TestDefaultConfigLogsToConsole(t *testing.T) {
	if got := runtimeconfig.DefaultConfig().Logging.Provider; got != "console" {
		t.Fatalf("expected console provider by default, got %q", got)
	}
}

func TestConfigValidateExtract_RequiresPaths(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	if err := cfg.ValidateExtract(); !errors.Is(err, runtimeconfig.ErrInputDirRequired) {
		t.Fatalf("expected ErrInputDirRequired, got %v", err)
	}

	cfg.Extract.InputDir = "commands"
	cfg.Extract.Output = " "
	if err := cfg.ValidateExtract(); !errors.Is(err, runtimeconfig.ErrOutputRequired) {
		t.Fatalf("expected ErrOutputRequired, got %v", err)
	}

	cfg.Extract.Output = "metadata.json"
	if err := cfg.ValidateExtract(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestConfigValidateMetadata_RequiresPath(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	if err := cfg.ValidateMetadata(); !errors.Is(err, runtimeconfig.ErrMetadataPathRequired) {
		t.Fatalf("expected ErrMetadataPathRequired, got %v", err)
	}
	if err := cfg.ApplyEnv(envMap(map[string]string{"PBMETA_METADATA": "metadata.json"})); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if err := cfg.ValidateMetadata(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestConfigValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*runtimeconfig.Config)
		want   error
	}{
		{name: "pattern", mutate: func(c *runtimeconfig.Config) { c.Extract.Pattern = "[" }, want: runtimeconfig.ErrPatternInvalid},
		{name: "workers", mutate: func(c *runtimeconfig.Config) { c.Extract.Workers = -1 }, want: runtimeconfig.ErrWorkersInvalid},
		{name: "timeout", mutate: func(c *runtimeconfig.Config) { c.Extract.Timeout = -time.Second }, want: runtimeconfig.ErrTimeoutInvalid},
		{name: "threshold", mutate: func(c *runtimeconfig.Config) { c.Validation.LowConfidence = 1.5 }, want: runtimeconfig.ErrLowConfidenceInvalid},
		{name: "provider required", mutate: func(c *runtimeconfig.Config) { c.Logging.Provider = "" }, want: runtimeconfig.ErrLoggingProviderRequired},
		{name: "provider unknown", mutate: func(c *runtimeconfig.Config) { c.Logging.Provider = "syslog" }, want: runtimeconfig.ErrLoggingProviderUnknown},
		{name: "level", mutate: func(c *runtimeconfig.Config) { c.Logging.Level = "loud" }, want: runtimeconfig.ErrLoggingLevelInvalid},
		{name: "format", mutate: func(c *runtimeconfig.Config) { c.Logging.Provider, c.Logging.Format = "gologger", "xml" }, want: runtimeconfig.ErrLoggingFormatInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := runtimeconfig.DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestConfigValidate_ConsoleProviderIgnoresFormat(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Logging.Provider = "console"
	cfg.Logging.Format = "xml"

	if err := cfg.Validate(); err != nil {
		t.Fatalf("console provider should ignore format, got %v", err)
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	err := cfg.ApplyEnv(envMap(map[string]string{
		"PBMETA_INPUT_DIR":           "commands",
		"PBMETA_OUTPUT":              " metadata.json ",
		"PBMETA_WORKERS":             "4",
		"PBMETA_REF_PREFIX":          "pb-",
		"PBMETA_INCLUDE_SKILL_FILES": "true",
		"PBMETA_CATEGORIES":          "core, planning,,",
		"PBMETA_LOW_CONFIDENCE":      "0.75",
		"PBMETA_TIMEOUT":             "30s",
		"PBMETA_LOG_LEVEL":           "debug",
	}))
	if err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}

	if cfg.Extract.InputDir != "commands" || cfg.Extract.Output != "metadata.json" {
		t.Fatalf("unexpected paths %+v", cfg.Extract)
	}
	if cfg.Extract.Workers != 4 || cfg.Extract.ReferencePrefix != "pb-" || !cfg.Extract.IncludeSkillFiles {
		t.Fatalf("unexpected extract config %+v", cfg.Extract)
	}
	if cfg.Extract.Timeout != 30*time.Second {
		t.Fatalf("unexpected timeout %v", cfg.Extract.Timeout)
	}
	if !reflect.DeepEqual(cfg.Validation.AllowedCategories, []string{"core", "planning"}) {
		t.Fatalf("unexpected categories %v", cfg.Validation.AllowedCategories)
	}
	if cfg.Validation.LowConfidence != 0.75 || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected overrides %+v %+v", cfg.Validation, cfg.Logging)
	}
	if cfg.Extract.Pattern != "*.md" {
		t.Fatalf("unset variables must keep defaults, got pattern %q", cfg.Extract.Pattern)
	}
}

func TestApplyEnv_InvalidValues(t *testing.T) {
	for _, key := range []string{"PBMETA_WORKERS", "PBMETA_RECURSIVE", "PBMETA_TIMEOUT", "PBMETA_LOW_CONFIDENCE"} {
		cfg := runtimeconfig.DefaultConfig()
		err := cfg.ApplyEnv(envMap(map[string]string{key: "not-a-value"}))
		if !errors.Is(err, runtimeconfig.ErrEnvInvalid) {
			t.Fatalf("%s: expected ErrEnvInvalid, got %v", key, err)
		}
	}
}
