// Package xref recognises slash-prefixed command references in document text
// and resolves them against the corpus command index.
package xref

import (
	"regexp"
	"sort"
	"strings"
)

var tokenPattern = regexp.MustCompile(`/([a-z0-9-]{3,})`)

// Index is the immutable set of command IDs known to a corpus. It is built once
// after every file has been parsed and only read afterwards.
type Index struct {
	ids map[string]struct{}
}

// NewIndex builds an index from ids. Blank entries are ignored.
func NewIndex(ids []string) Index {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if trimmed := strings.TrimSpace(id); trimmed != "" {
			set[trimmed] = struct{}{}
		}
	}
	return Index{ids: set}
}

// Contains reports whether id belongs to the corpus.
func (i Index) Contains(id string) bool {
	_, ok := i.ids[Normalize(id)]
	return ok
}

// Len returns the number of known command IDs.
func (i Index) Len() int {
	return len(i.ids)
}

// IDs returns the sorted command IDs.
func (i Index) IDs() []string {
	out := make([]string, 0, len(i.ids))
	for id := range i.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Normalize strips surrounding whitespace and the leading slash.
func Normalize(token string) string {
	return strings.TrimPrefix(strings.TrimSpace(token), "/")
}

// Scan returns the reference tokens found in text, slash included, deduplicated
// in order of first appearance. When prefix is set only identifiers starting
// with it are kept.
//
// A token must start at a word boundary and must not continue into a path,
// file name or URL: "/usr/local", "/notes.md" and "https://host/path" yield
// nothing, while "`/pb-start`" and "see /pb-start." are references.
func Scan(text, prefix string) []string {
	matches := tokenPattern.FindAllStringSubmatchIndex(text, -1)
	seen := make(map[string]struct{}, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		start, end := m[0], m[1]
		if !leftBoundary(text, start) || !rightBoundary(text, end) {
			continue
		}
		ident := text[m[2]:m[3]]
		if prefix != "" && !strings.HasPrefix(ident, prefix) {
			continue
		}
		token := "/" + ident
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		out = append(out, token)
	}
	return out
}

func leftBoundary(text string, start int) bool {
	if start == 0 {
		return true
	}
	prev := text[start-1]
	return !(isWordByte(prev) || prev == '.' || prev == '/' || prev == ':' || prev == '-')
}

func rightBoundary(text string, end int) bool {
	if end >= len(text) {
		return true
	}
	next := text[end]
	if isWordByte(next) || next == '/' {
		return false
	}
	if next == '.' && end+1 < len(text) && isAlnumByte(text[end+1]) {
		return false
	}
	return true
}

func isAlnumByte(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func isWordByte(b byte) bool {
	return isAlnumByte(b) || b == '_'
}

// Resolution is the outcome of resolving one document's references.
type Resolution struct {
	// Related holds resolved command IDs without the leading slash.
	Related []string
	// Unresolved holds tokens, slash included, that name no known command.
	Unresolved []string
	// SelfReferences counts mentions of the document's own ID.
	SelfReferences int
}

// Total returns the number of distinct references, self references excluded.
func (r Resolution) Total() int {
	return len(r.Related) + len(r.Unresolved)
}

// Resolve scans text and splits its references into resolved and unresolved
// sets. References to selfID are dropped and never count as unresolved.
func Resolve(selfID, text string, index Index, prefix string) Resolution {
	res := Resolution{
		Related:    []string{},
		Unresolved: []string{},
	}
	for _, token := range Scan(text, prefix) {
		id := Normalize(token)
		switch {
		case id == selfID:
			res.SelfReferences++
		case index.Contains(id):
			res.Related = append(res.Related, id)
		default:
			res.Unresolved = append(res.Unresolved, token)
		}
	}
	return res
}
