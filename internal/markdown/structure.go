package markdown

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// Structure reports structural features of a document body.
type Structure struct {
	HasExamples  bool
	HasChecklist bool
}

// GoldmarkInspector walks the goldmark AST of a body to detect fenced code
// blocks and task-list checkboxes. Headings are not taken from the AST; the
// section grammar in sections.go owns those. The inspector is stateless and
// safe for concurrent use.
type GoldmarkInspector struct {
	engine goldmark.Markdown
}

// NewGoldmarkInspector builds an inspector with the named extensions. The task
// list extension is always enabled since checklist detection depends on it.
func NewGoldmarkInspector(extensions []string) *GoldmarkInspector {
	exts := collectExtensions(extensions)
	if !hasTaskList(exts) {
		exts = append(exts, extension.TaskList)
	}
	return &GoldmarkInspector{
		engine: goldmark.New(goldmark.WithExtensions(exts...)),
	}
}

// Inspect parses body and reports its structural features.
func (i *GoldmarkInspector) Inspect(body []byte) Structure {
	var out Structure
	root := i.engine.Parser().Parse(text.NewReader(body))
	_ = ast.Walk(root, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node.Kind() {
		case ast.KindFencedCodeBlock:
			out.HasExamples = true
		case extast.KindTaskCheckBox:
			out.HasChecklist = true
		}
		if out.HasExamples && out.HasChecklist {
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	return out
}

func hasTaskList(exts []goldmark.Extender) bool {
	for _, ext := range exts {
		if ext == extension.GFM || ext == extension.TaskList {
			return true
		}
	}
	return false
}

var extensionRegistry = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"tables":        extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"autolink":      extension.Linkify,
	"tasklist":      extension.TaskList,
	"definition":    extension.DefinitionList,
	"footnote":      extension.Footnote,
}

func collectExtensions(names []string) []goldmark.Extender {
	if len(names) == 0 {
		return []goldmark.Extender{
			extension.GFM,
		}
	}

	var extenders []goldmark.Extender
	seen := map[string]struct{}{}

	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}

		if _, ok := seen[key]; ok {
			continue
		}

		ext, ok := extensionRegistry[key]
		if !ok {
			continue
		}

		extenders = append(extenders, ext)
		seen[key] = struct{}{}
	}

	return extenders
}
