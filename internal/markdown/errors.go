package markdown

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedFrontMatter marks a document whose opening fence is never closed
	// or whose front-matter block cannot be decoded.
	ErrMalformedFrontMatter = errors.New("MalformedFrontMatter")
	// ErrUnsupportedFrontMatter marks front matter using nested mappings.
	ErrUnsupportedFrontMatter = errors.New("UnsupportedFrontMatter")
	// ErrMissingTitle marks a document without a level-1 heading before its first section.
	ErrMissingTitle = errors.New("MissingTitle")
)

// ParseError is a per-file parse failure. It is data: the pipeline records it on
// the document and keeps processing the rest of the corpus.
type ParseError struct {
	Path   string
	Kind   error
	Reason string
}

func (e *ParseError) Error() string {
	kind := "ParseError"
	if e.Kind != nil {
		kind = e.Kind.Error()
	}
	parts := []string{kind}
	if path := strings.TrimSpace(e.Path); path != "" {
		parts = append(parts, path)
	}
	if reason := strings.TrimSpace(e.Reason); reason != "" {
		parts = append(parts, reason)
	}
	return strings.Join(parts, ": ")
}

func (e *ParseError) Unwrap() error {
	return e.Kind
}

func newParseError(kind error, path, format string, args ...any) *ParseError {
	return &ParseError{
		Path:   path,
		Kind:   kind,
		Reason: fmt.Sprintf(format, args...),
	}
}

// IsParseFailure reports whether err is one of the per-file parse failures.
func IsParseFailure(err error) bool {
	return errors.Is(err, ErrMalformedFrontMatter) ||
		errors.Is(err, ErrUnsupportedFrontMatter) ||
		errors.Is(err, ErrMissingTitle)
}
