package markdown

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/goliatone/go-slug"

	"github.com/goliatone/go-playbook-meta/pkg/interfaces"
)

// mdLine is one body line annotated with whether it belongs to a fenced code
// block (fence lines included). Fenced lines are never headings or rules.
type mdLine struct {
	text   string
	fenced bool
}

func scanLines(body string) []mdLine {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	raw := strings.Split(body, "\n")
	lines := make([]mdLine, 0, len(raw))

	var marker string
	for _, text := range raw {
		trimmed := strings.TrimLeft(text, " ")
		indent := len(text) - len(trimmed)
		if marker != "" {
			lines = append(lines, mdLine{text: text, fenced: true})
			if indent <= 3 && strings.HasPrefix(trimmed, marker) && strings.TrimSpace(strings.TrimLeft(trimmed, marker[:1])) == "" {
				marker = ""
			}
			continue
		}
		if indent <= 3 {
			if open := fenceMarker(trimmed); open != "" {
				marker = open
				lines = append(lines, mdLine{text: text, fenced: true})
				continue
			}
		}
		lines = append(lines, mdLine{text: text})
	}
	return lines
}

func fenceMarker(trimmed string) string {
	for _, ch := range []string{"`", "~"} {
		count := 0
		for count < len(trimmed) && trimmed[count] == ch[0] {
			count++
		}
		if count >= 3 {
			return trimmed[:count]
		}
	}
	return ""
}

func isTitleLine(text string) bool {
	return strings.HasPrefix(text, "# ")
}

func isSectionLine(text string) bool {
	return strings.HasPrefix(text, "## ")
}

func isRuleLine(text string) bool {
	return strings.TrimSpace(text) == fenceDelimiter
}

var emphasisMarkers = regexp.MustCompile(`\*\*|__`)

// ExtractSections applies the heading grammar to a document body. The title is
// the first level-1 heading found before any level-2 heading; when none exists
// the returned error wraps ErrMissingTitle and purpose is empty, but sections
// are still returned so validation can report on them.
func ExtractSections(path string, body []byte) (title, purpose string, sections []interfaces.Section, err error) {
	lines := scanLines(string(body))

	titleIdx := -1
	for i, line := range lines {
		if line.fenced {
			continue
		}
		if isSectionLine(line.text) {
			break
		}
		if isTitleLine(line.text) {
			titleIdx = i
			break
		}
	}

	if titleIdx >= 0 {
		title = cleanHeading(lines[titleIdx].text[2:])
		purpose = extractPurpose(lines[titleIdx+1:])
	} else {
		err = newParseError(ErrMissingTitle, path, "no level-1 heading before the first section")
	}

	sections = splitSections(lines)
	return title, purpose, sections, err
}

// extractPurpose returns the first paragraph between the title and the first
// rule or level-2 heading, with its lines joined by single spaces.
func extractPurpose(lines []mdLine) string {
	var parts []string
	for _, line := range lines {
		if line.fenced {
			break
		}
		if isRuleLine(line.text) || isSectionLine(line.text) {
			break
		}
		trimmed := strings.TrimSpace(line.text)
		if trimmed == "" {
			if len(parts) > 0 {
				break
			}
			continue
		}
		if strings.HasPrefix(trimmed, "#") {
			break
		}
		parts = append(parts, trimmed)
	}
	return strings.Join(parts, " ")
}

func splitSections(lines []mdLine) []interfaces.Section {
	sections := []interfaces.Section{}
	var current *interfaces.Section
	var buf []string

	flush := func() {
		if current == nil {
			return
		}
		current.Body = strings.TrimSpace(strings.Join(buf, "\n"))
		sections = append(sections, *current)
	}

	for _, line := range lines {
		if !line.fenced && isSectionLine(line.text) {
			flush()
			heading := cleanHeading(line.text[3:])
			current = &interfaces.Section{
				Heading: heading,
				Slug:    slugify(heading),
			}
			buf = buf[:0]
			continue
		}
		if current != nil {
			buf = append(buf, line.text)
		}
	}
	flush()
	return sections
}

func cleanHeading(text string) string {
	return strings.TrimSpace(emphasisMarkers.ReplaceAllString(text, ""))
}

var slugFallback = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(heading string) string {
	if normalized, err := slug.Normalize(heading); err == nil && normalized != "" {
		return normalized
	}
	return strings.Trim(slugFallback.ReplaceAllString(strings.ToLower(heading), "-"), "-")
}

var orderedItemPattern = regexp.MustCompile(`^(\d+)[.)]\s`)

// ListNumbers returns the numbers of the unindented ordered-list items in body,
// in document order. Items inside fenced code blocks are ignored.
func ListNumbers(body string) []int {
	var numbers []int
	for _, line := range scanLines(body) {
		if line.fenced {
			continue
		}
		match := orderedItemPattern.FindStringSubmatch(line.text)
		if match == nil {
			continue
		}
		n, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		numbers = append(numbers, n)
	}
	return numbers
}
