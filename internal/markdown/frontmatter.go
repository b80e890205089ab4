package markdown

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-playbook-meta/pkg/interfaces"
)

const fenceDelimiter = "---"

var byteOrderMark = []byte("\ufeff")

var yamlFormat = frontmatter.NewFormat(fenceDelimiter, fenceDelimiter, yaml.Unmarshal)

// ParseFrontMatter splits source into its front-matter map and the Markdown body.
//
// A leading UTF-8 byte order mark is dropped before anything else. A document
// without an opening fence on its very first line has no front
// matter: the map is empty and the whole source is body. When the opening fence
// is never closed the returned error wraps ErrMalformedFrontMatter and the body
// is everything after the opening fence so callers can still extract sections.
// Nested mappings decode successfully but are reported with
// ErrUnsupportedFrontMatter; the offending keys are left out of the map.
func ParseFrontMatter(path string, source []byte) (interfaces.FrontMatter, []byte, error) {
	source = bytes.TrimPrefix(source, byteOrderMark)
	block, body, found, closed := splitFrontMatter(source)
	if !found {
		return interfaces.FrontMatter{}, source, nil
	}
	if !closed {
		return interfaces.FrontMatter{}, body, newParseError(ErrMalformedFrontMatter, path, "front matter opened on line 1 is never closed")
	}
	if len(bytes.TrimSpace(block)) == 0 {
		return interfaces.FrontMatter{}, body, nil
	}

	raw, err := decodeBlock(block)
	if err != nil {
		return interfaces.FrontMatter{}, body, newParseError(ErrMalformedFrontMatter, path, "%v", err)
	}

	fm, nested := flatten(raw)
	if len(nested) > 0 {
		return fm, body, newParseError(ErrUnsupportedFrontMatter, path, "nested mapping not supported for %s", strings.Join(nested, ", "))
	}
	return fm, body, nil
}

// splitFrontMatter locates the fence lines. found reports an opening fence on
// the first line; closed reports a matching closing fence.
func splitFrontMatter(source []byte) (block, body []byte, found, closed bool) {
	first, rest, ok := cutLine(source)
	if !ok && len(first) == 0 {
		return nil, source, false, false
	}
	if string(trimCR(first)) != fenceDelimiter {
		return nil, source, false, false
	}

	cursor := rest
	offset := 0
	for len(cursor) > 0 {
		line, next, hasNewline := cutLine(cursor)
		if string(trimCR(line)) == fenceDelimiter {
			return rest[:offset], next, true, true
		}
		consumed := len(line)
		if hasNewline {
			consumed++
		}
		offset += consumed
		cursor = next
	}
	return nil, rest, true, false
}

func decodeBlock(block []byte) (map[string]any, error) {
	var buf bytes.Buffer
	buf.WriteString(fenceDelimiter + "\n")
	buf.Write(block)
	if !bytes.HasSuffix(block, []byte("\n")) {
		buf.WriteByte('\n')
	}
	buf.WriteString(fenceDelimiter + "\n")

	var raw map[string]any
	if _, err := frontmatter.Parse(&buf, &raw, yamlFormat); err != nil {
		return nil, fmt.Errorf("decode front matter: %w", err)
	}
	return raw, nil
}

// flatten keeps scalar and list values, normalising them to JSON friendly
// types. Keys holding mappings are returned sorted in nested.
func flatten(raw map[string]any) (interfaces.FrontMatter, []string) {
	fm := make(interfaces.FrontMatter, len(raw))
	var nested []string
	for key, value := range raw {
		normalized, ok := normalizeValue(value)
		if !ok {
			nested = append(nested, key)
			continue
		}
		fm[key] = normalized
	}
	sort.Strings(nested)
	return fm, nested
}

func normalizeValue(value any) (any, bool) {
	switch typed := value.(type) {
	case nil, string, bool, int, int64, float64:
		return typed, true
	case time.Time:
		if typed.Hour() == 0 && typed.Minute() == 0 && typed.Second() == 0 && typed.Nanosecond() == 0 {
			return typed.Format("2006-01-02"), true
		}
		return typed.UTC().Format(time.RFC3339), true
	case []any:
		out := make([]any, 0, len(typed))
		for _, item := range typed {
			normalized, ok := normalizeValue(item)
			if !ok {
				return nil, false
			}
			if _, isList := normalized.([]any); isList {
				return nil, false
			}
			out = append(out, normalized)
		}
		return out, true
	case map[string]any, map[any]any:
		return nil, false
	default:
		return fmt.Sprint(typed), true
	}
}

func cutLine(data []byte) (line, rest []byte, hasNewline bool) {
	if idx := bytes.IndexByte(data, '\n'); idx >= 0 {
		return data[:idx], data[idx+1:], true
	}
	return data, nil, false
}

func trimCR(line []byte) []byte {
	return bytes.TrimSuffix(line, []byte("\r"))
}
