package golang

import (
	"os"
	"path"
	"path/filepath"
	"sync"

	"golang.org/x/mod/modfile"
)

type module struct {
	root string
	path string
}

// moduleResolver finds the go.mod governing a directory. Lookups are cached
// per directory.
type moduleResolver struct {
	mu    sync.Mutex
	byDir map[string]*module // nil entry: no go.mod above the directory
}

func newModuleResolver() *moduleResolver {
	return &moduleResolver{byDir: make(map[string]*module)}
}

// importPath returns the import path of the package containing file, or pkg
// when the file is not inside a module.
func (r *moduleResolver) importPath(file, pkg string) string {
	if file == "" {
		return pkg
	}
	dir := filepath.Dir(file)
	mod := r.find(dir)
	if mod == nil {
		return pkg
	}
	rel, err := filepath.Rel(mod.root, dir)
	if err != nil || rel == "." {
		return mod.path
	}
	return path.Join(mod.path, filepath.ToSlash(rel))
}

func (r *moduleResolver) find(dir string) *module {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.findLocked(dir)
}

func (r *moduleResolver) findLocked(dir string) *module {
	if mod, ok := r.byDir[dir]; ok {
		return mod
	}

	var mod *module
	goModPath := filepath.Join(dir, "go.mod")
	if content, err := os.ReadFile(goModPath); err == nil {
		if modulePath := modfile.ModulePath(content); modulePath != "" {
			mod = &module{root: dir, path: modulePath}
		}
	}
	if mod == nil {
		if parent := filepath.Dir(dir); parent != dir {
			mod = r.findLocked(parent)
		}
	}
	r.byDir[dir] = mod
	return mod
}
