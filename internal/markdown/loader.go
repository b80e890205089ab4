package markdown

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// LoaderConfig configures how command documents are discovered under a root.
type LoaderConfig struct {
	// Pattern limits discovered files to those matching the glob (defaults to "*.md").
	Pattern string
	// Recursive controls whether sub-directories are traversed.
	Recursive bool
	// RootCategory is the category assigned to files that sit directly in the
	// root, normally the root directory's own name.
	RootCategory string
}

// Source identifies one discovered command document.
type Source struct {
	// Path is slash separated and relative to the loader root.
	Path      string
	CommandID string
	Category  string
}

// Loader walks a filesystem for command documents.
type Loader struct {
	fs           fs.FS
	pattern      string
	recursive    bool
	rootCategory string
}

// NewLoader constructs a Loader using the provided filesystem and configuration.
func NewLoader(filesystem fs.FS, cfg LoaderConfig) *Loader {
	pattern := cfg.Pattern
	if strings.TrimSpace(pattern) == "" {
		pattern = "*.md"
	}

	return &Loader{
		fs:           filesystem,
		pattern:      pattern,
		recursive:    cfg.Recursive,
		rootCategory: strings.TrimSpace(cfg.RootCategory),
	}
}

// Discover lists matching files sorted by relative path. Hidden directories are
// skipped. Any walk failure is returned as is; callers treat it as fatal.
func (l *Loader) Discover(ctx context.Context) ([]Source, error) {
	var sources []Source

	walkErr := fs.WalkDir(l.fs, ".", func(current string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if d.IsDir() {
			if current == "." {
				return nil
			}
			if strings.HasPrefix(d.Name(), ".") || !l.recursive {
				return fs.SkipDir
			}
			return nil
		}

		rel := filepath.ToSlash(current)
		if !l.matchesPattern(rel) {
			return nil
		}
		sources = append(sources, Source{
			Path:      rel,
			CommandID: CommandIDFromPath(rel),
			Category:  l.categoryFor(rel),
		})
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("markdown loader walk: %w", walkErr)
	}

	sort.Slice(sources, func(i, j int) bool {
		return sources[i].Path < sources[j].Path
	})
	return sources, nil
}

// Read returns the raw bytes of src.
func (l *Loader) Read(ctx context.Context, src Source) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(l.fs, src.Path)
	if err != nil {
		return nil, fmt.Errorf("markdown loader read %s: %w", src.Path, err)
	}
	return data, nil
}

// CommandIDFromPath derives the command ID from the file name without its
// extension.
func CommandIDFromPath(rel string) string {
	base := path.Base(filepath.ToSlash(rel))
	return strings.TrimSuffix(base, path.Ext(base))
}

func (l *Loader) categoryFor(rel string) string {
	dir := path.Dir(rel)
	if dir == "." || dir == "/" {
		return l.rootCategory
	}
	return path.Base(dir)
}

func (l *Loader) matchesPattern(rel string) bool {
	pattern := filepath.ToSlash(l.pattern)
	if strings.Contains(pattern, "**") {
		pattern = strings.ReplaceAll(pattern, "**/", "")
	}
	target := path.Base(rel)
	if strings.Contains(pattern, "/") {
		target = rel
	}
	match, err := path.Match(pattern, target)
	if err != nil {
		return false
	}
	return match
}
