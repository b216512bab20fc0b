package discovery

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Repository is one input tree processed as a unit.
type Repository struct {
	Name string
	Root string // absolute path
}

// ResolveRepositories expands patterns under root into repositories. Each
// matching directory is one repository named by its slash path relative to
// root. Without patterns, root itself is the only repository, named name or
// the root's base name.
func ResolveRepositories(root string, patterns []string, name string) ([]Repository, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root is not a directory: %s", absRoot)
	}

	if len(patterns) == 0 {
		if name == "" {
			name = filepath.Base(absRoot)
		}
		return []Repository{{Name: name, Root: absRoot}}, nil
	}

	var repos []Repository
	seen := make(map[string]bool)
	fsys := os.DirFS(absRoot)
	for _, pattern := range patterns {
		matches, err := resolvePattern(fsys, pattern)
		if err != nil {
			return nil, fmt.Errorf("resolve pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if seen[m] {
				continue
			}
			seen[m] = true
			repos = append(repos, Repository{Name: m, Root: filepath.Join(absRoot, filepath.FromSlash(m))})
		}
	}
	if len(repos) == 0 {
		return nil, fmt.Errorf("no directories match %v under %s", patterns, absRoot)
	}
	sort.Slice(repos, func(i, j int) bool { return repos[i].Name < repos[j].Name })
	return repos, nil
}

// resolvePattern expands one pattern to directories, relative to fsys.
func resolvePattern(fsys fs.FS, pattern string) ([]string, error) {
	pattern = strings.TrimPrefix(filepath.ToSlash(pattern), "./")

	if !containsGlob(pattern) {
		info, err := fs.Stat(fsys, pattern)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("path is not a directory: %s", pattern)
		}
		return []string{pattern}, nil
	}

	// Use doublestar for ** support
	dirs, err := doublestar.Glob(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("glob error: %w", err)
	}
	var out []string
	for _, m := range dirs {
		info, err := fs.Stat(fsys, m)
		if err != nil || !info.IsDir() || m == "." {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// containsGlob checks if a pattern contains glob characters.
func containsGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}
