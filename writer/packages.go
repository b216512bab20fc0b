package writer

import (
	"sort"
	"strings"

	"github.com/c360studio/semcode/export"
	"github.com/c360studio/semcode/identity"
	"github.com/c360studio/semcode/processor/ast"
	"github.com/c360studio/semcode/vocabulary/code"
)

// WriteFrameworks links the file's content to every configured framework one
// of its imports belongs to.
func (w *Writer) WriteFrameworks(e *Emitter, f File, names *Names) {
	if len(w.opts.Frameworks) == 0 {
		return
	}
	frameworks := make([]string, 0, len(w.opts.Frameworks))
	for name := range w.opts.Frameworks {
		frameworks = append(frameworks, name)
	}
	sort.Strings(frameworks)

	for _, entry := range sorted(names.Of(ast.KindImport)) {
		imp := entry.Construct.(*ast.Import)
		module := imp.Module
		if module == "" {
			module = imp.Name
		}
		for _, name := range frameworks {
			if matchesAny(module, w.opts.Frameworks[name]) {
				e.Relate(f.ContentURI, code.PropUsesFramework, w.Framework(e, name))
			}
		}
	}
}

// Framework writes the framework entity for name and returns its IRI.
func (w *Writer) Framework(e *Emitter, name string) string {
	id := w.ids.Frameworks.GetOrCreate(identity.FrameworkKey(name))
	uri := w.uris.Framework(id)
	e.Entity(uri, w.classes.Resolve(code.ClassSoftwareFramework))
	e.Label(uri, boundedLabel("Framework", name, w.opts.MaxLabelLength))
	e.Literal(uri, code.PropHasCanonicalName, export.Literal(name))
	return uri
}

// matchesAny reports whether an import module is one of prefixes or lies
// beneath one of them.
func matchesAny(module string, prefixes []string) bool {
	for _, p := range prefixes {
		if module == p {
			return true
		}
		for _, sep := range []string{"/", ".", "::"} {
			if strings.HasPrefix(module, p+sep) {
				return true
			}
		}
	}
	return false
}

// WritePackageRefs writes the package entity of every package declaration and
// links it to the declaration and the file's content.
func (w *Writer) WritePackageRefs(e *Emitter, f File, names *Names) {
	for _, entry := range sorted(names.Of(ast.KindPackage)) {
		decl := entry.Construct.(*ast.Package)
		name := decl.ImportPath
		if name == "" {
			name = decl.QualifiedName()
		}
		pkg := w.SoftwarePackage(e, f.Language, name)
		e.Relate(f.ContentURI, code.PropDeclaresPackage, pkg)
		e.Relate(entry.URI, code.PropRefersToPackage, pkg)
	}
}

// SoftwarePackage writes the package entity for (language, name) and returns
// its IRI.
func (w *Writer) SoftwarePackage(e *Emitter, language, name string) string {
	id := w.ids.Packages.GetOrCreate(identity.PackageKey(language, name))
	uri := w.uris.Package(id)
	e.Entity(uri, w.classes.Resolve(code.ClassSoftwarePackage))
	e.Label(uri, boundedLabel("Package", name, w.opts.MaxLabelLength))
	e.Literal(uri, code.PropHasCanonicalName, export.Literal(name))
	e.Literal(uri, code.PropHasImportPath, export.Literal(name))
	return uri
}
