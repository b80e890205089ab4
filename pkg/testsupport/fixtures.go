// Package testsupport holds fixture helpers shared by package tests.
package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// LoadFixture reads a fixture file.
func LoadFixture(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// LoadGolden decodes a JSON golden file into v.
func LoadGolden(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// WriteCorpus lays files out under a fresh "commands" directory and returns
// its path. Keys are slash separated paths relative to that root.
func WriteCorpus(tb testing.TB, files map[string]string) string {
	tb.Helper()
	root := filepath.Join(tb.TempDir(), "commands")
	if err := os.MkdirAll(root, 0o755); err != nil {
		tb.Fatalf("testsupport: mkdir %s: %v", root, err)
	}
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			tb.Fatalf("testsupport: mkdir %s: %v", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			tb.Fatalf("testsupport: write %s: %v", name, err)
		}
	}
	return root
}
