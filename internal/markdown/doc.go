// Package markdown turns command documents into interfaces.Document values.
// It owns file discovery, front-matter decoding, the heading grammar used to
// split a document into title, purpose and sections, and the heuristics that
// derive tiers, frequency and workflow references from section text.
package markdown
