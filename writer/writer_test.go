package writer

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semcode/discovery"
	"github.com/c360studio/semcode/export"
	"github.com/c360studio/semcode/graph"
	"github.com/c360studio/semcode/identity"
	"github.com/c360studio/semcode/ontology"
	"github.com/c360studio/semcode/processor/ast"
	"github.com/c360studio/semcode/processor/ast/treesitter"
	"github.com/c360studio/semcode/vocabulary/code"
)

func iri(name string) string { return code.Namespace + name }

func newWriter(t *testing.T, opts Options) *Writer {
	t.Helper()
	o, err := ontology.Default()
	require.NoError(t, err)
	w, err := New(o, identity.NewBundle(), identity.NewURIs(code.EntityNamespace), opts, nil)
	require.NoError(t, err)
	return w
}

func testFile(w *Writer, path, language string) File {
	return w.File(discovery.FileRecord{Repository: "repo", RelPath: path, Language: language})
}

func write(w *Writer, f File, s *ast.Summary) (*graph.Graph, Result) {
	buf := graph.NewBuffer()
	res := w.WriteFile(buf, f, s)
	g := graph.New()
	buf.FlushTo(g)
	return g, res
}

func requireTriple(t *testing.T, g *graph.Graph, s, p string, o export.Term) {
	t.Helper()
	require.Truef(t, g.Has(export.T(s, p, o)), "missing triple %s", export.T(s, p, o).NTriples())
}

func requireLink(t *testing.T, g *graph.Graph, s, prop, o string) {
	t.Helper()
	requireTriple(t, g, s, iri(prop), export.IRI(o))
}

// shapes is a hand-built Go summary exercising every relationship writer.
func shapes() *ast.Summary {
	s := ast.NewSummary("pkg/shapes.go", "go")
	s.Add(&ast.Package{Base: ast.Base{Name: "shapes", StartLine: 1, EndLine: 1}, ImportPath: "example.com/shapes"})
	s.Add(&ast.Import{Base: ast.Base{Name: "fmt", StartLine: 3, EndLine: 3}, Module: "fmt"})
	s.Add(&ast.Interface{Base: ast.Base{Name: "Shape", StartLine: 5, EndLine: 7}})
	s.Add(&ast.Comment{Base: ast.Base{Name: "Square is a shape.", StartLine: 9, EndLine: 9}, Text: "Square is a shape.", Doc: true})
	s.Add(&ast.Struct{
		Base:       ast.Base{Name: "Square", StartLine: 10, EndLine: 13, Raw: "type Square struct {\n\tBase\n\tSide int\n}"},
		Implements: []string{"Shape"},
	})
	s.Add(&ast.Attribute{Base: ast.Base{Name: "Side", Parent: "Square", ParentKind: ast.KindStruct, StartLine: 12, EndLine: 12}, DeclaredType: "int"})
	s.Add(&ast.Function{
		Base: ast.Base{
			Name: "Area", Parent: "Square", ParentKind: ast.KindStruct, StartLine: 15, EndLine: 20, Access: "public",
			Raw: "func (s Square) Area() Shape {\n\tif s.Side > 0 && s.Side < 10 {\n\t\thelper(s.Side)\n\t}\n\treturn s\n}",
		},
		ReturnType: "Shape",
	})
	s.Add(&ast.Function{Base: ast.Base{Name: "helper", StartLine: 22, EndLine: 24}, Params: []string{"n"}})
	s.Add(&ast.Parameter{Base: ast.Base{Name: "n", Parent: "helper", ParentKind: ast.KindFunction, StartLine: 22, EndLine: 22}, DeclaredType: "Unit"})
	s.Add(&ast.Variable{Base: ast.Base{Name: "Max", StartLine: 26, EndLine: 26}, Constant: true})
	s.Add(&ast.CallSite{Base: ast.Base{Name: "helper", Parent: "Square.Area", ParentKind: ast.KindFunction, StartLine: 17, EndLine: 17}, Callee: "helper"})
	s.Add(&ast.CallSite{Base: ast.Base{Name: "Println", Parent: "helper", ParentKind: ast.KindFunction, StartLine: 23, EndLine: 23}, Callee: "fmt.Println"})

	s.TypeUsages = []ast.TypeUsage{
		{From: "helper.n", FromKind: ast.KindParameter, Type: "Unit", Role: ast.RoleDeclared},
		{From: "Square.Area", FromKind: ast.KindFunction, Type: "Shape", Role: ast.RoleReturn},
	}
	s.Accesses = []ast.Reference{{From: "Square.Area", FromKind: ast.KindFunction, To: "Square.Side", ToKind: ast.KindAttribute}}
	s.Usages = []ast.Reference{{From: "helper", FromKind: ast.KindFunction, To: "Max", ToKind: ast.KindVariable}}
	s.Embeds = []ast.Reference{{From: "Square", FromKind: ast.KindStruct, To: "Base"}}
	return s
}

func TestWriteFile_SingleClass(t *testing.T) {
	tables, err := treesitter.LoadQueries("", nil)
	require.NoError(t, err)
	p, err := treesitter.NewParser("javascript", tables["javascript"], nil)
	require.NoError(t, err)

	s := p.Extract(context.Background(), ast.FileInput{
		RelPath:  "src/foo.js",
		Language: "javascript",
		Source:   []byte("class Foo extends Base { bar() {} }\n"),
	})
	require.Empty(t, s.Errors)

	w := newWriter(t, Options{})
	f := testFile(w, "src/foo.js", "javascript")
	g, _ := write(w, f, s)

	foo := identity.Construct(f.URI, string(ast.KindClass), "Foo", 0)
	bar := identity.Construct(f.URI, string(ast.KindFunction), "Foo.bar", 0)

	requireTriple(t, g, foo, code.RDFType, export.IRI(iri("ClassDefinition")))
	requireTriple(t, g, foo, code.RDFSLabel, export.Literal("Class: Foo"))
	requireTriple(t, g, foo, iri("hasCanonicalName"), export.Literal("Foo"))

	baseID, ok := w.Registries().Types.Lookup(identity.TypeKey("repo", "Base"))
	require.True(t, ok, "Base becomes a type reference")
	base := w.URIs().Type(baseID)
	requireTriple(t, g, base, code.RDFType, export.IRI(iri("TypeReference")))
	requireLink(t, g, foo, "extendsType", base)
	requireLink(t, g, base, "isExtendedBy", foo)

	requireTriple(t, g, bar, code.RDFType, export.IRI(iri("FunctionDefinition")))
	requireTriple(t, g, bar, code.RDFSLabel, export.Literal("Function: bar"))
	requireTriple(t, g, bar, iri("hasCanonicalName"), export.Literal("Foo.bar"))
	requireLink(t, g, foo, "hasMethod", bar)
	requireLink(t, g, bar, "isMethodOf", foo)

	for _, c := range []string{foo, bar} {
		requireLink(t, g, f.ContentURI, "hasCodePart", c)
		requireLink(t, g, c, "isCodePartOf", f.ContentURI)
	}
}

func extractWith(t *testing.T, language, path, src string) *ast.Summary {
	t.Helper()
	tables, err := treesitter.LoadQueries("", nil)
	require.NoError(t, err)
	p, err := treesitter.NewParser(language, tables[language], nil)
	require.NoError(t, err)
	s := p.Extract(context.Background(), ast.FileInput{RelPath: path, Language: language, Source: []byte(src)})
	require.Empty(t, s.Errors)
	return s
}

func TestWriteFile_Implementations(t *testing.T) {
	tests := []struct {
		name, language, path, src string
		implKind                  ast.Kind
		implName, ifaceName       string
		ifaceKind                 ast.Kind
	}{
		{
			name: "rust trait impl", language: "rust", path: "src/lib.rs",
			src:      "trait Shape { fn area(&self) -> f64; }\nstruct Point;\nimpl Shape for Point { fn area(&self) -> f64 { 0.0 } }\n",
			implKind: ast.KindStruct, implName: "Point", ifaceKind: ast.KindTrait, ifaceName: "Shape",
		},
		{
			name: "python abstract base", language: "python", path: "app.py",
			src:      "from abc import ABC\n\nclass IThing(ABC):\n    pass\n\nclass App(IThing):\n    pass\n",
			implKind: ast.KindClass, implName: "App", ifaceKind: ast.KindClass, ifaceName: "IThing",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWriter(t, Options{})
			f := testFile(w, tt.path, tt.language)
			g, res := write(w, f, extractWith(t, tt.language, tt.path, tt.src))

			impl, ok := res.Names.Lookup(tt.implKind, tt.implName)
			require.True(t, ok)
			iface, ok := res.Names.Lookup(tt.ifaceKind, tt.ifaceName)
			require.True(t, ok)
			requireLink(t, g, impl.URI, "implementsInterface", iface.URI)
			requireLink(t, g, iface.URI, "isImplementedBy", impl.URI)
			assert.Zero(t, res.Fallbacks)
		})
	}
}

func TestWriteFile_GrammarAccessesAndUsages(t *testing.T) {
	src := "LIMIT = 10\n\n\nclass Counter:\n    def __init__(self):\n        self.count = 0\n\n    def bump(self):\n        if self.count < LIMIT:\n            self.count += 1\n"
	w := newWriter(t, Options{})
	f := testFile(w, "counter.py", "python")
	g, res := write(w, f, extractWith(t, "python", "counter.py", src))

	lookup := func(k ast.Kind, key string) string {
		e, ok := res.Names.Lookup(k, key)
		require.Truef(t, ok, "%s %s not written", k, key)
		return e.URI
	}
	bump := lookup(ast.KindFunction, "Counter.bump")
	count := lookup(ast.KindAttribute, "Counter.count")
	limit := lookup(ast.KindVariable, "LIMIT")

	requireLink(t, g, bump, "accessesAttribute", count)
	requireLink(t, g, count, "isAccessedBy", bump)
	requireLink(t, g, bump, "usesDeclaration", limit)
	requireLink(t, g, limit, "isUsedBy", bump)
	assert.Zero(t, res.Fallbacks)
}

func TestWriteFile_Relationships(t *testing.T) {
	w := newWriter(t, Options{})
	f := testFile(w, "pkg/shapes.go", "go")
	g, res := write(w, f, shapes())

	uri := func(k ast.Kind, key string) string {
		e, ok := res.Names.Lookup(k, key)
		require.Truef(t, ok, "%s %s not written", k, key)
		return e.URI
	}
	typeRef := func(name string) string {
		id, ok := w.Registries().Types.Lookup(identity.TypeKey("repo", name))
		require.Truef(t, ok, "no type reference for %s", name)
		return w.URIs().Type(id)
	}

	square := uri(ast.KindStruct, "Square")
	shape := uri(ast.KindInterface, "Shape")
	area := uri(ast.KindFunction, "Square.Area")
	helper := uri(ast.KindFunction, "helper")
	side := uri(ast.KindAttribute, "Square.Side")
	n := uri(ast.KindParameter, "helper.n")
	maxVar := uri(ast.KindVariable, "Max")
	call := uri(ast.KindCallSite, "Square.Area.helper@L17")
	doc := uri(ast.KindComment, "Square is a shape.@L9")
	pkg := uri(ast.KindPackage, "shapes")

	requireLink(t, g, square, "implementsInterface", shape)
	requireLink(t, g, square, "hasMethod", area)
	requireLink(t, g, square, "hasAttribute", side)
	requireLink(t, g, square, "embedsType", typeRef("Base"))
	requireLink(t, g, helper, "hasParameter", n)
	requireLink(t, g, n, "hasDeclaredType", typeRef("Unit"))
	requireLink(t, g, area, "returnsType", shape)
	requireLink(t, g, area, "hasCallSite", call)
	requireLink(t, g, call, "invokes", helper)
	requireLink(t, g, area, "callsFunction", helper)
	requireLink(t, g, area, "accessesAttribute", side)
	requireLink(t, g, helper, "usesDeclaration", maxVar)
	requireLink(t, g, doc, "documents", square)
	requireLink(t, g, pkg, "refersToPackage", w.SoftwarePackage(w.NewEmitter(graph.NewBuffer()), "go", "example.com/shapes"))

	requireTriple(t, g, area, iri("hasAccessModifier"), export.Literal("public"))
	requireTriple(t, g, area, iri("hasCyclomaticComplexity"), export.Int(3))
	requireTriple(t, g, area, iri("hasLineCount"), export.Int(6))
	requireTriple(t, g, maxVar, iri("isFinal"), export.Bool(true))
	requireTriple(t, g, doc, iri("isDocComment"), export.Bool(true))
	requireTriple(t, g, pkg, iri("hasCanonicalName"), export.Literal("example.com/shapes"))

	// fmt.Println is not defined in the file: a call site without a callee link
	printlnCall := uri(ast.KindCallSite, "helper.Println@L23")
	requireTriple(t, g, printlnCall, iri("hasCalleeName"), export.Literal("fmt.Println"))
	assert.Empty(t, g.Match(printlnCall, iri("invokes"), export.Term{}))

	assert.Zero(t, res.Fallbacks, "every relation is admitted by the default ontology")
}

func TestWriteFile_Containment(t *testing.T) {
	w := newWriter(t, Options{})
	f := testFile(w, "pkg/shapes.go", "go")
	_, res := write(w, f, shapes())

	require.NotZero(t, res.Names.Len())
	for _, k := range ast.Kinds {
		for key, e := range res.Names.Of(k) {
			assert.Truef(t, strings.HasPrefix(e.URI, f.URI+"/"), "%s %s: %s not under %s", k, key, e.URI, f.URI)
		}
	}
}

func TestWriteFile_RelationshipSymmetry(t *testing.T) {
	o, err := ontology.Default()
	require.NoError(t, err)
	w := newWriter(t, Options{})
	f := testFile(w, "pkg/shapes.go", "go")
	g, _ := write(w, f, shapes())

	checked := 0
	for _, tr := range g.Triples() {
		inv, ok := o.Inverse(tr.Predicate)
		if !ok || !tr.Object.IsIRI() {
			continue
		}
		checked++
		assert.Truef(t, g.Has(export.T(tr.Object.Value, inv, export.IRI(tr.Subject))),
			"no inverse for %s", tr.NTriples())
	}
	assert.Greater(t, checked, 20)
}

func TestWriteFile_Idempotent(t *testing.T) {
	w := newWriter(t, Options{})
	f := testFile(w, "pkg/shapes.go", "go")
	g, _ := write(w, f, shapes())
	size := g.Len()

	buf := graph.NewBuffer()
	w.WriteFile(buf, f, shapes())
	assert.Zero(t, buf.FlushTo(g), "rewriting in the same run adds nothing")

	// a fresh run mints the same identifiers
	w2 := newWriter(t, Options{})
	g2, _ := write(w2, testFile(w2, "pkg/shapes.go", "go"), shapes())
	assert.Zero(t, g.Merge(g2))
	assert.Equal(t, size, g.Len())
}

func TestWriteFile_EmptyNamesDropped(t *testing.T) {
	s := ast.NewSummary("a.py", "python")
	s.Add(&ast.Function{Base: ast.Base{Name: ""}})
	s.Add(&ast.Function{Base: ast.Base{Name: "ok", StartLine: 1}})

	w := newWriter(t, Options{})
	_, res := write(w, testFile(w, "a.py", "python"), s)
	assert.Equal(t, 1, res.Names.Len(), "empty names are dropped")
}

func TestWriteFile_OverloadsAreKept(t *testing.T) {
	s := ast.NewSummary("src/Calc.java", "java")
	s.Add(&ast.Class{Base: ast.Base{Name: "Calc", StartLine: 1, EndLine: 9}})
	s.Add(&ast.Function{Base: ast.Base{Name: "add", Parent: "Calc", ParentKind: ast.KindClass, StartLine: 2, EndLine: 4}})
	s.Add(&ast.Function{Base: ast.Base{Name: "add", Parent: "Calc", ParentKind: ast.KindClass, StartLine: 5, EndLine: 7}})
	s.Add(&ast.Function{Base: ast.Base{Name: "add", Parent: "Calc", ParentKind: ast.KindClass, StartLine: 5, EndLine: 7}})

	w := newWriter(t, Options{})
	f := testFile(w, "src/Calc.java", "java")
	g, res := write(w, f, s)

	first, ok := res.Names.Lookup(ast.KindFunction, "Calc.add")
	require.True(t, ok, "the first overload keeps the plain name")
	second, ok := res.Names.Lookup(ast.KindFunction, "Calc.add@L5")
	require.True(t, ok, "a later overload is keyed by its line")
	assert.Len(t, res.Names.Of(ast.KindFunction), 2, "the same name on the same line is written once")
	assert.NotEqual(t, first.URI, second.URI)

	calc, ok := res.Names.Lookup(ast.KindClass, "Calc")
	require.True(t, ok)
	requireLink(t, g, calc.URI, "hasMethod", first.URI)
	requireLink(t, g, calc.URI, "hasMethod", second.URI)
	requireTriple(t, g, second.URI, code.RDFSLabel, export.Literal("Function: add"))
}

func TestWriteFrameworks(t *testing.T) {
	w := newWriter(t, Options{Frameworks: map[string][]string{
		"django": {"django"},
		"react":  {"react", "react-dom"},
	}})

	for _, path := range []string{"app/models.py", "app/views.py"} {
		s := ast.NewSummary(path, "python")
		s.Add(&ast.Import{Base: ast.Base{Name: "django.db.models", StartLine: 1}, Module: "django.db.models"})
		s.Add(&ast.Import{Base: ast.Base{Name: "djangoish", StartLine: 2}, Module: "djangoish"})
		f := testFile(w, path, "python")
		g, _ := write(w, f, s)

		id, ok := w.Registries().Frameworks.Lookup(identity.FrameworkKey("django"))
		require.True(t, ok)
		django := w.URIs().Framework(id)
		requireLink(t, g, f.ContentURI, "usesFramework", django)
		requireLink(t, g, django, "isFrameworkUsedBy", f.ContentURI)
		requireTriple(t, g, django, code.RDFType, export.IRI(iri("SoftwareFramework")))
		assert.Len(t, g.Match(f.ContentURI, iri("usesFramework"), export.Term{}), 1)
	}
	assert.Equal(t, 1, w.Registries().Frameworks.Len())
}

func TestWriteStylingAndTesting(t *testing.T) {
	w := newWriter(t, Options{})
	css := w.ContentURI("repo", "src/app.css")
	subject := w.ContentURI("repo", "src/app.js")

	s := ast.NewSummary("src/app.test.js", "javascript")
	s.Add(&ast.Import{Base: ast.Base{Name: "./app.css", StartLine: 1}, Module: "./app.css"})
	s.Add(&ast.Import{Base: ast.Base{Name: "./missing.css", StartLine: 2}, Module: "./missing.css"})
	f := testFile(w, "src/app.test.js", "javascript")
	g, _ := write(w, f, s)

	requireLink(t, g, f.ContentURI, "isStyledBy", css)
	requireLink(t, g, css, "styles", f.ContentURI)
	requireLink(t, g, f.ContentURI, "testsContent", subject)
	requireLink(t, g, subject, "isTestedBy", f.ContentURI)
	assert.Len(t, g.Match(f.ContentURI, iri("isStyledBy"), export.Term{}), 1)

	_, ok := w.Registries().Contents.Lookup(identity.ContentKey("repo", "src/missing.css"))
	assert.False(t, ok, "styling never registers new content")
}

func TestWriteFileRecordAndContent(t *testing.T) {
	w := newWriter(t, Options{})
	rec := discovery.FileRecord{
		Repository: "repo",
		RelPath:    "pkg/shapes.go",
		Name:       "shapes.go",
		Ext:        ".go",
		Size:       120,
		Class:      "SourceCodeFile",
		Confidence: discovery.ConfidenceHigh,
		Language:   "go",
	}

	buf := graph.NewBuffer()
	e := w.NewEmitter(buf)
	repo := w.WriteRepository(e, "repo")
	file := w.WriteFileRecord(e, rec)
	content := w.WriteContent(e, rec, "abc123")
	g := graph.New()
	buf.FlushTo(g)

	assert.Equal(t, w.File(rec).URI, file)
	assert.Equal(t, w.File(rec).ContentURI, content)
	requireTriple(t, g, file, code.RDFType, export.IRI(iri("SourceCodeFile")))
	requireTriple(t, g, content, code.RDFType, export.IRI(iri("SoftwareCode")))
	requireTriple(t, g, file, iri("hasSizeInBytes"), export.Int(120))
	requireTriple(t, g, content, iri("hasContentHash"), export.Literal("abc123"))
	requireLink(t, g, repo, "hasFile", file)
	requireLink(t, g, file, "belongsToRepository", repo)
	requireLink(t, g, file, "hasContent", content)
	requireLink(t, g, content, "isContentOf", file)
	assert.Zero(t, e.Fallbacks())
}
