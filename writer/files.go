package writer

import (
	"path"
	"strings"

	"github.com/c360studio/semcode/discovery"
	"github.com/c360studio/semcode/export"
	"github.com/c360studio/semcode/identity"
	"github.com/c360studio/semcode/processor/ast"
	"github.com/c360studio/semcode/vocabulary/code"
)

// Stylesheet file class name used by the default classifier rules.
const classStylesheetFile = "StylesheetFile"

const classStyleSheet = "StyleSheet"

// WriteRepository writes the repository entity and returns its IRI.
func (w *Writer) WriteRepository(e *Emitter, repo string) string {
	uri := w.uris.Repository(repo)
	e.Entity(uri, w.classes.Resolve(code.ClassRepository))
	e.Label(uri, boundedLabel("Repository", repo, w.opts.MaxLabelLength))
	e.Literal(uri, code.PropHasCanonicalName, export.Literal(repo))
	e.Literal(uri, code.PropHasRepositoryID, export.Literal(repo))
	return uri
}

// FileURI returns the IRI of a file entity, minting its id on first use.
func (w *Writer) FileURI(repo, relPath string) string {
	return w.uris.File(w.ids.Files.GetOrCreate(identity.FileKey(repo, relPath)))
}

// ContentURI returns the IRI of a file's content entity, minting its id on
// first use. The content stage and the code stage both call it, so they
// agree on the entity.
func (w *Writer) ContentURI(repo, relPath string) string {
	return w.uris.Content(w.ids.Contents.GetOrCreate(identity.ContentKey(repo, relPath)))
}

// File returns the write context of a discovered file.
func (w *Writer) File(rec discovery.FileRecord) File {
	return File{
		Repository: rec.Repository,
		Path:       rec.RelPath,
		Language:   rec.Language,
		URI:        w.FileURI(rec.Repository, rec.RelPath),
		ContentURI: w.ContentURI(rec.Repository, rec.RelPath),
	}
}

// WriteFileRecord writes a discovered file, links it to its repository and
// returns its IRI.
func (w *Writer) WriteFileRecord(e *Emitter, rec discovery.FileRecord) string {
	uri := w.FileURI(rec.Repository, rec.RelPath)
	e.Entity(uri, w.classes.File(rec.Class))
	e.Label(uri, boundedLabel("File", rec.RelPath, w.opts.MaxLabelLength))
	e.Literal(uri, code.PropHasRelativePath, export.Literal(identity.NormalizePath(rec.RelPath)))
	e.Literal(uri, code.PropHasFileName, export.Literal(rec.Name))
	if rec.Ext != "" {
		e.Literal(uri, code.PropHasExtension, export.Literal(rec.Ext))
	}
	e.Literal(uri, code.PropHasSizeInBytes, export.Int(rec.Size))
	if !rec.ModTime.IsZero() {
		e.Literal(uri, code.PropHasModificationTime, export.DateTime(rec.ModTime))
	}
	if rec.Confidence != "" {
		e.Literal(uri, code.PropHasClassificationConfidence, export.Literal(string(rec.Confidence)))
	}
	if rec.Language != "" {
		e.Literal(uri, code.PropHasLanguage, export.Literal(rec.Language))
	}

	repo := w.uris.Repository(rec.Repository)
	e.Declare(repo, w.classes.Resolve(code.ClassRepository))
	e.Relate(repo, code.PropHasFile, uri)
	return uri
}

// ContentClass returns the content class IRI for a discovered file.
func (w *Writer) ContentClass(rec discovery.FileRecord) string {
	switch {
	case rec.Language != "":
		return w.classes.Content(code.ClassSoftwareCode)
	case rec.Class == classStylesheetFile:
		return w.classes.Content(classStyleSheet)
	}
	return w.classes.Content(code.ClassInformationContentEntity)
}

// WriteContent writes the content entity of a file, links it to the file and
// returns its IRI. hash is the hex digest of the file's bytes.
func (w *Writer) WriteContent(e *Emitter, rec discovery.FileRecord, hash string) string {
	uri := w.ContentURI(rec.Repository, rec.RelPath)
	e.Entity(uri, w.ContentClass(rec))
	e.Label(uri, boundedLabel("Content", rec.RelPath, w.opts.MaxLabelLength))
	if hash != "" {
		e.Literal(uri, code.PropHasContentHash, export.Literal(hash))
	}
	if rec.Language != "" {
		e.Literal(uri, code.PropHasLanguage, export.Literal(rec.Language))
	}

	file := w.FileURI(rec.Repository, rec.RelPath)
	e.Declare(file, w.classes.File(rec.Class))
	e.Relate(file, code.PropHasContent, uri)
	return uri
}

var stylesheetExts = []string{".css", ".scss", ".sass", ".less", ".styl"}

// WriteStyling links the file's content to the content of every stylesheet
// it imports by relative path. Only stylesheets the content stage registered
// are linked.
func (w *Writer) WriteStyling(e *Emitter, f File, names *Names) {
	for _, entry := range sorted(names.Of(ast.KindImport)) {
		imp := entry.Construct.(*ast.Import)
		module := imp.Module
		if module == "" {
			module = imp.Name
		}
		if !hasAnySuffix(strings.ToLower(module), stylesheetExts) {
			continue
		}
		target := path.Join(path.Dir(identity.NormalizePath(f.Path)), module)
		id, ok := w.ids.Contents.Lookup(identity.ContentKey(f.Repository, target))
		if !ok {
			continue
		}
		style := w.uris.Content(id)
		e.Declare(style, w.classes.Content(classStyleSheet))
		e.Relate(f.ContentURI, code.PropIsStyledBy, style)
	}
}

// WriteTesting links a test file's content to the content of the file it
// tests, found by naming convention among registered contents.
func (w *Writer) WriteTesting(e *Emitter, f File) {
	for _, subject := range TestSubjects(f.Path) {
		id, ok := w.ids.Contents.Lookup(identity.ContentKey(f.Repository, subject))
		if !ok {
			continue
		}
		uri := w.uris.Content(id)
		e.Declare(uri, w.classes.Content(code.ClassSoftwareCode))
		e.Relate(f.ContentURI, code.PropTestsContent, uri)
		return
	}
}

// TestSubjects returns the candidate paths of the file a test file covers,
// most likely first, or nil when relPath is not a test file:
//
//	foo_test.go            → foo.go
//	test_foo.py, foo_test.py → foo.py (also one directory up from tests/)
//	foo.test.ts, foo.spec.js → foo.ts, foo.tsx, foo.js, foo.jsx (also up from __tests__/)
//	FooTest.java           → Foo.java (also src/main for src/test)
func TestSubjects(relPath string) []string {
	p := identity.NormalizePath(relPath)
	dir, base := path.Split(p)
	dir = strings.TrimSuffix(dir, "/")
	ext := path.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	var names []string
	var dirs []string
	switch ext {
	case ".go":
		if s, ok := strings.CutSuffix(stem, "_test"); ok {
			names = []string{s + ext}
			dirs = []string{dir}
		}
	case ".py":
		if s, ok := strings.CutPrefix(stem, "test_"); ok {
			names = []string{s + ext}
		} else if s, ok := strings.CutSuffix(stem, "_test"); ok {
			names = []string{s + ext}
		}
		dirs = withParent(dir, "tests", "test")
	case ".ts", ".tsx", ".js", ".jsx", ".mjs":
		for _, marker := range []string{".test", ".spec"} {
			if s, ok := strings.CutSuffix(stem, marker); ok {
				for _, x := range []string{ext, ".ts", ".tsx", ".js", ".jsx"} {
					names = appendNew(names, s+x)
				}
				break
			}
		}
		dirs = withParent(dir, "__tests__", "test", "tests")
	case ".java":
		for _, marker := range []string{"Tests", "Test"} {
			if s, ok := strings.CutSuffix(stem, marker); ok && s != "" {
				names = []string{s + ext}
				break
			}
		}
		dirs = []string{dir}
		if strings.Contains("/"+dir+"/", "/src/test/") {
			dirs = append(dirs, strings.Replace("/"+dir, "/src/test/", "/src/main/", 1)[1:])
		}
	}
	if len(names) == 0 {
		return nil
	}

	var out []string
	for _, d := range dirs {
		for _, n := range names {
			out = appendNew(out, path.Join(d, n))
		}
	}
	return out
}

func withParent(dir string, markers ...string) []string {
	dirs := []string{dir}
	for _, m := range markers {
		if path.Base(dir) == m {
			dirs = append(dirs, path.Dir(dir))
			break
		}
	}
	return dirs
}

func hasAnySuffix(s string, suffixes []string) bool {
	for _, x := range suffixes {
		if strings.HasSuffix(s, x) {
			return true
		}
	}
	return false
}

func appendNew(list []string, s string) []string {
	for _, have := range list {
		if have == s {
			return list
		}
	}
	return append(list, s)
}
