package markdown

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/goliatone/go-playbook-meta/pkg/interfaces"
)

// Config controls per-file extraction.
type Config struct {
	// ReferencePrefix restricts recognised references to identifiers starting
	// with it (e.g. "pb-"). Empty accepts any identifier.
	ReferencePrefix string
	// Extensions names the goldmark extensions used for structural inspection.
	Extensions []string
}

// Service extracts a Document from one source file. It holds no per-file
// state, so a single instance can serve concurrent workers.
type Service struct {
	cfg       Config
	inspector *GoldmarkInspector
}

// NewService constructs an extraction service.
func NewService(cfg Config) *Service {
	return &Service{
		cfg:       cfg,
		inspector: NewGoldmarkInspector(cfg.Extensions),
	}
}

// Extract parses source into a Document. Parse failures are recorded on
// Document.ParseErrors rather than returned; extraction is best effort so a
// broken front matter still yields title and sections where possible.
// Cross-references are resolved later, once the corpus index exists.
func (s *Service) Extract(src Source, source []byte) *interfaces.Document {
	sum := sha256.Sum256(source)
	doc := &interfaces.Document{
		CommandID:  src.CommandID,
		Category:   src.Category,
		SourcePath: src.Path,
		Checksum:   hex.EncodeToString(sum[:]),
	}

	fm, body, err := ParseFrontMatter(src.Path, source)
	if err != nil {
		doc.ParseErrors = append(doc.ParseErrors, err)
	}
	if fm == nil {
		fm = interfaces.FrontMatter{}
	}
	doc.FrontMatter = fm
	doc.Body = string(body)

	title, purpose, sections, err := ExtractSections(src.Path, body)
	if err != nil {
		doc.ParseErrors = append(doc.ParseErrors, err)
	}
	doc.Title = title
	doc.Purpose = purpose
	doc.Sections = sections

	doc.TierApplicability = ExtractTiers(doc.Body, doc.FrontMatter)
	doc.Frequency = ExtractFrequency(doc)
	doc.NextSteps = ExtractNextSteps(doc, s.cfg.ReferencePrefix)
	doc.Prerequisites = ExtractPrerequisites(doc, s.cfg.ReferencePrefix)
	doc.DecisionContext = ExtractDecisionContext(doc)

	structure := s.inspector.Inspect(body)
	doc.HasExamples = structure.HasExamples
	doc.HasChecklist = structure.HasChecklist

	doc.RelatedCommands = []string{}
	doc.UnresolvedReferences = []string{}
	return doc
}
