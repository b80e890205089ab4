package markdown

import (
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-playbook-meta/pkg/testsupport"
)

func TestParseFrontMatter(t *testing.T) {
	data := readFixture(t, "testdata/basic.md")

	fm, body, err := ParseFrontMatter("testdata/basic.md", data)
	if err != nil {
		t.Fatalf("ParseFrontMatter: %v", err)
	}

	if name, _ := fm.String("name"); name != "pb-start" {
		t.Fatalf("front matter name mismatch, got %q", name)
	}
	tags, ok := fm.Strings("tags")
	if !ok || len(tags) != 2 || tags[1] != "daily use" {
		t.Fatalf("front matter tags mismatch: %#v", tags)
	}
	related, _ := fm.Strings("related_commands")
	if len(related) != 2 || related[0] != "/pb-cycle" {
		t.Fatalf("front matter related_commands mismatch: %#v", related)
	}
	if !strings.HasPrefix(string(body), "# Start Development Work") {
		t.Fatalf("body should start after the closing fence, got %q", string(body)[:20])
	}
}

func TestParseFrontMatterAbsent(t *testing.T) {
	source := []byte("# Title\n\nSome purpose text here.\n")

	fm, body, err := ParseFrontMatter("plain.md", source)
	if err != nil {
		t.Fatalf("expected no error without front matter, got %v", err)
	}
	if len(fm) != 0 {
		t.Fatalf("expected empty front matter, got %#v", fm)
	}
	if string(body) != string(source) {
		t.Fatalf("expected whole source as body")
	}
}

func TestParseFrontMatterSkipsByteOrderMark(t *testing.T) {
	fm, body, err := ParseFrontMatter("bom.md", []byte("\ufeff---\nname: pb-bom\n---\n# Title\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name, _ := fm.String("name"); name != "pb-bom" {
		t.Fatalf("expected name behind the BOM, got %#v", fm)
	}
	if string(body) != "# Title\n" {
		t.Fatalf("unexpected body %q", body)
	}

	_, body, _ = ParseFrontMatter("plain.md", []byte("\ufeff# Title\n"))
	if string(body) != "# Title\n" {
		t.Fatalf("expected BOM stripped from a plain body, got %q", body)
	}
}

func TestParseFrontMatterFenceMustBeFirstLine(t *testing.T) {
	source := []byte("\n---\nname: x\n---\n# Title\n")

	fm, body, err := ParseFrontMatter("late.md", source)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fm) != 0 || string(body) != string(source) {
		t.Fatalf("fence after the first line must not open front matter")
	}
}

func TestParseFrontMatterUnclosed(t *testing.T) {
	source := []byte("---\nname: pb-broken\n# Broken\n\nPurpose.\n")

	fm, body, err := ParseFrontMatter("core/pb-broken.md", source)
	if !errors.Is(err, ErrMalformedFrontMatter) {
		t.Fatalf("expected ErrMalformedFrontMatter, got %v", err)
	}
	if !strings.Contains(err.Error(), "core/pb-broken.md") {
		t.Fatalf("expected error to name the file, got %q", err.Error())
	}
	if len(fm) != 0 {
		t.Fatalf("expected empty front matter, got %#v", fm)
	}
	if !strings.HasPrefix(string(body), "name: pb-broken") {
		t.Fatalf("expected best-effort body after the opening fence, got %q", string(body))
	}
}

func TestParseFrontMatterInvalidYAML(t *testing.T) {
	source := []byte("---\nname: [unterminated\n---\n# Title\n")

	_, _, err := ParseFrontMatter("bad.md", source)
	if !errors.Is(err, ErrMalformedFrontMatter) {
		t.Fatalf("expected ErrMalformedFrontMatter, got %v", err)
	}
}

func TestParseFrontMatterRejectsNestedMappings(t *testing.T) {
	source := []byte("---\nname: pb-nested\nowner:\n  team: platform\n---\n# Title\n")

	fm, _, err := ParseFrontMatter("nested.md", source)
	if !errors.Is(err, ErrUnsupportedFrontMatter) {
		t.Fatalf("expected ErrUnsupportedFrontMatter, got %v", err)
	}
	if !strings.Contains(err.Error(), "owner") {
		t.Fatalf("expected error to name the nested key, got %q", err.Error())
	}
	if _, ok := fm["owner"]; ok {
		t.Fatalf("nested key must not be kept")
	}
	if name, _ := fm.String("name"); name != "pb-nested" {
		t.Fatalf("flat keys should survive, got %#v", fm)
	}
}

func TestParseFrontMatterEmptyBlock(t *testing.T) {
	fm, body, err := ParseFrontMatter("empty.md", []byte("---\n---\n# Title\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fm) != 0 {
		t.Fatalf("expected empty map, got %#v", fm)
	}
	if string(body) != "# Title\n" {
		t.Fatalf("unexpected body %q", string(body))
	}
}

func TestGoldmarkInspector(t *testing.T) {
	inspector := NewGoldmarkInspector(nil)

	cases := []struct {
		name      string
		body      string
		examples  bool
		checklist bool
	}{
		{name: "plain", body: "# Title\n\nText only.\n"},
		{name: "fence", body: "# Title\n\n```go\nfmt.Println()\n```\n", examples: true},
		{name: "open task", body: "- [ ] todo\n", checklist: true},
		{name: "done task", body: "- [x] done\n", checklist: true},
		{name: "both", body: "- [ ] todo\n\n~~~\ncode\n~~~\n", examples: true, checklist: true},
		{name: "brackets in prose", body: "Call f[ ] in text.\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := inspector.Inspect([]byte(tc.body))
			if got.HasExamples != tc.examples {
				t.Fatalf("HasExamples: expected %v, got %v", tc.examples, got.HasExamples)
			}
			if got.HasChecklist != tc.checklist {
				t.Fatalf("HasChecklist: expected %v, got %v", tc.checklist, got.HasChecklist)
			}
		})
	}
}

func TestGoldmarkInspectorKeepsTaskListWithCustomExtensions(t *testing.T) {
	inspector := NewGoldmarkInspector([]string{"table"})

	if !inspector.Inspect([]byte("- [ ] item\n")).HasChecklist {
		t.Fatalf("expected checklist detection with custom extensions")
	}
}

func readFixture(tb testing.TB, path string) []byte {
	tb.Helper()
	data, err := testsupport.LoadFixture(path)
	if err != nil {
		tb.Fatalf("read fixture %s: %v", path, err)
	}
	return data
}
