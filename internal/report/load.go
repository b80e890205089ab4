package report

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/goliatone/go-playbook-meta/internal/validation"
	"github.com/goliatone/go-playbook-meta/pkg/interfaces"
)

var (
	// ErrArtifactRead marks an artifact that cannot be read from disk.
	ErrArtifactRead = errors.New("ArtifactReadError")
	// ErrArtifactInvalid marks an artifact that is not JSON or violates the schema.
	ErrArtifactInvalid = errors.New("ArtifactInvalid")
)

//go:embed schema/metadata.schema.json
var artifactSchema []byte

var (
	schemaOnce     sync.Once
	compiledSchema *validation.Schema
	schemaErr      error
)

// ArtifactSchema returns the compiled schema of the JSON artifact.
func ArtifactSchema() (*validation.Schema, error) {
	schemaOnce.Do(func() {
		compiledSchema, schemaErr = validation.CompileSchema("metadata.schema.json", artifactSchema)
	})
	return compiledSchema, schemaErr
}

// Load reads the artifact at path, checks it against the artifact schema and
// decodes it.
func Load(path string) (*interfaces.CorpusReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrArtifactRead, path, err)
	}
	return Decode(data)
}

// Decode validates and decodes an encoded artifact.
func Decode(data []byte) (*interfaces.CorpusReport, error) {
	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArtifactInvalid, err)
	}

	schema, err := ArtifactSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(payload); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrArtifactInvalid, err)
	}

	var report interfaces.CorpusReport
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&report); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArtifactInvalid, err)
	}
	if report.Categories == nil {
		report.Categories = map[string]interfaces.CategorySummary{}
	}
	if report.Documents == nil {
		report.Documents = []interfaces.DocumentReport{}
	}
	return &report, nil
}
