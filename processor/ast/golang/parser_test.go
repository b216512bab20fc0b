package golang

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/c360studio/semcode/processor/ast"
)

func extract(t *testing.T, code string) *ast.Summary {
	t.Helper()
	return extractAt(t, t.TempDir(), "x.go", code)
}

func extractAt(t *testing.T, dir, rel, code string) *ast.Summary {
	t.Helper()
	abs := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(abs, []byte(code), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	p := NewParser(nil)
	return p.Extract(context.Background(), ast.FileInput{
		AbsPath:  abs,
		RelPath:  rel,
		Language: "go",
		Source:   []byte(code),
	})
}

func find(t *testing.T, s *ast.Summary, k ast.Kind, qualified string) ast.Construct {
	t.Helper()
	c, ok := s.Find(k, qualified)
	if !ok {
		t.Fatalf("%s %q not found", k, qualified)
	}
	return c
}

func TestExtract_SimpleFunction(t *testing.T) {
	s := extract(t, `package example

// Add adds two integers and returns the sum.
func Add(a, b int) int {
	return a + b
}
`)
	if s.Failed() {
		t.Fatalf("unexpected errors: %v", s.Errors)
	}

	fn := find(t, s, ast.KindFunction, "Add").(*ast.Function)
	if fn.Access != "public" {
		t.Errorf("Access = %q, want public", fn.Access)
	}
	if fn.StartLine != 4 || fn.EndLine != 6 {
		t.Errorf("lines = %d-%d, want 4-6", fn.StartLine, fn.EndLine)
	}
	if fn.ReturnType != "int" {
		t.Errorf("ReturnType = %q, want int", fn.ReturnType)
	}
	if len(fn.Params) != 2 || fn.Params[0] != "a" || fn.Params[1] != "b" {
		t.Errorf("Params = %v, want [a b]", fn.Params)
	}
	if !strings.HasPrefix(fn.Raw, "func Add") {
		t.Errorf("Raw = %q", fn.Raw)
	}

	b := find(t, s, ast.KindParameter, "Add.b").(*ast.Parameter)
	if b.Position != 1 || b.DeclaredType != "int" {
		t.Errorf("param b = %+v", b)
	}

	comments := s.Of(ast.KindComment)
	if len(comments) != 1 {
		t.Fatalf("comments = %d, want 1", len(comments))
	}
	doc := comments[0].(*ast.Comment)
	if !doc.Doc || !strings.Contains(doc.Text, "adds two integers") {
		t.Errorf("comment = %+v", doc)
	}
}

func TestExtract_StructAndMethod(t *testing.T) {
	s := extract(t, `package example

type Server struct {
	Name string
	port int
}

func (s *Server) Start() error {
	s.port = 8080
	return nil
}

func (s Server) unexported() {}
`)
	srv := find(t, s, ast.KindStruct, "Server")
	if srv.Common().Access != "public" {
		t.Errorf("struct access = %q", srv.Common().Access)
	}

	port := find(t, s, ast.KindAttribute, "Server.port").(*ast.Attribute)
	if port.DeclaredType != "int" || port.Access != "private" {
		t.Errorf("port = %+v", port)
	}

	start := find(t, s, ast.KindFunction, "Server.Start")
	if start.Common().ParentKind != ast.KindStruct {
		t.Errorf("ParentKind = %q, want struct", start.Common().ParentKind)
	}
	find(t, s, ast.KindFunction, "Server.unexported")

	if len(s.Accesses) != 1 || s.Accesses[0].From != "Server.Start" || s.Accesses[0].To != "Server.port" {
		t.Errorf("Accesses = %+v", s.Accesses)
	}
}

func TestExtract_InterfaceAndImplicitImplementation(t *testing.T) {
	s := extract(t, `package example

import "io"

type Store interface {
	io.Closer
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
}

type memStore struct{}

func (m *memStore) Get(key string) ([]byte, error) { return nil, nil }
func (m *memStore) Put(key string, value []byte) error { return nil }
func (m *memStore) Close() error { return nil }

type partial struct{}

func (p partial) Get(key string) ([]byte, error) { return nil, nil }
`)
	iface := find(t, s, ast.KindInterface, "Store").(*ast.Interface)
	if len(iface.Bases) != 1 || iface.Bases[0] != "io.Closer" {
		t.Errorf("Bases = %v, want [io.Closer]", iface.Bases)
	}

	get := find(t, s, ast.KindFunction, "Store.Get").(*ast.Function)
	if get.ParentKind != ast.KindInterface {
		t.Errorf("interface method ParentKind = %q", get.ParentKind)
	}

	mem := find(t, s, ast.KindStruct, "memStore").(*ast.Struct)
	if len(mem.Implements) != 1 || mem.Implements[0] != "Store" {
		t.Errorf("memStore.Implements = %v, want [Store]", mem.Implements)
	}
	part := find(t, s, ast.KindStruct, "partial").(*ast.Struct)
	if len(part.Implements) != 0 {
		t.Errorf("partial.Implements = %v, want none", part.Implements)
	}
}

func TestExtract_Enum(t *testing.T) {
	s := extract(t, `package example

const (
	Red Color = iota
	Green
	Blue
)

type Color int

type Name string
`)
	e := find(t, s, ast.KindEnum, "Color").(*ast.Enum)
	if strings.Join(e.Members, ",") != "Red,Green,Blue" {
		t.Errorf("Members = %v", e.Members)
	}
	if e.StartLine != 9 {
		t.Errorf("enum StartLine = %d, want 9", e.StartLine)
	}
	find(t, s, ast.KindClass, "Name")

	green := find(t, s, ast.KindVariable, "Green").(*ast.Variable)
	if !green.Constant {
		t.Error("Green should be a constant")
	}
}

func TestExtract_Imports(t *testing.T) {
	s := extract(t, `package example

import (
	"fmt"
	str "strings"
	_ "embed"
)

func Hello() string {
	fmt.Println("hi")
	return str.ToUpper("x")
}
`)
	imports := s.Of(ast.KindImport)
	if len(imports) != 3 {
		t.Fatalf("imports = %d, want 3", len(imports))
	}
	aliased := imports[1].(*ast.Import)
	if aliased.Module != "strings" || aliased.Alias != "str" {
		t.Errorf("aliased import = %+v", aliased)
	}

	calls := s.Of(ast.KindCallSite)
	if len(calls) != 2 {
		t.Fatalf("calls = %d, want 2", len(calls))
	}
	upper := calls[1].(*ast.CallSite)
	if upper.Name != "ToUpper" || upper.Callee != "strings.ToUpper" || upper.Parent != "Hello" {
		t.Errorf("call = %+v", upper)
	}
}

func TestExtract_CallsSkipBuiltins(t *testing.T) {
	s := extract(t, `package example

func helper() {}

func run(xs []int) {
	xs = append(xs, len(xs))
	helper()
}
`)
	calls := s.Of(ast.KindCallSite)
	if len(calls) != 1 || calls[0].Common().Name != "helper" {
		t.Errorf("calls = %+v, want only helper", calls)
	}
}

func TestExtract_DeclarationUsage(t *testing.T) {
	s := extract(t, `package example

var limit = 10

const prefix = "x"

func check(n int) bool {
	limit := 3
	_ = prefix
	return n < limit
}

func other() int { return limit }
`)
	if len(s.Usages) != 2 {
		t.Fatalf("Usages = %+v, want 2", s.Usages)
	}
	if s.Usages[0].From != "check" || s.Usages[0].To != "prefix" {
		t.Errorf("first usage = %+v", s.Usages[0])
	}
	if s.Usages[1].From != "other" || s.Usages[1].To != "limit" {
		t.Errorf("second usage = %+v", s.Usages[1])
	}
	local := find(t, s, ast.KindVariable, "limit")
	if local.Common().Parent != "" {
		t.Errorf("package var should have no parent")
	}
}

func TestExtract_EmbedsAndTypeUsages(t *testing.T) {
	s := extract(t, `package example

import "sync"

type Base struct{}

type Cache struct {
	sync.Mutex
	*Base
	items map[string]Item
	owner *Owner
}

type Item struct{}
type Owner struct{}

func NewCache(o *Owner) *Cache { return nil }
`)
	if len(s.Embeds) != 2 {
		t.Fatalf("Embeds = %+v", s.Embeds)
	}
	if s.Embeds[0].To != "sync.Mutex" || s.Embeds[1].To != "Base" {
		t.Errorf("Embeds = %+v", s.Embeds)
	}

	var roles []string
	for _, u := range s.TypeUsages {
		roles = append(roles, u.From+":"+u.Type+":"+string(u.Role))
	}
	got := strings.Join(roles, " ")
	for _, want := range []string{
		"Cache.owner:Owner:declared",
		"NewCache.o:Owner:declared",
		"NewCache:Cache:return",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("TypeUsages missing %s in %s", want, got)
		}
	}
	if strings.Contains(got, "map") {
		t.Errorf("builtin type usage recorded: %s", got)
	}
}

func TestExtract_PackageImportPath(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module example.com/widgets\n\ngo 1.22\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := extractAt(t, dir, "internal/store/store.go", "package store\n")
	pkg := find(t, s, ast.KindPackage, "store").(*ast.Package)
	if pkg.ImportPath != "example.com/widgets/internal/store" {
		t.Errorf("ImportPath = %q", pkg.ImportPath)
	}

	root := extractAt(t, dir, "main.go", "package main\n")
	if got := root.Of(ast.KindPackage)[0].(*ast.Package).ImportPath; got != "example.com/widgets" {
		t.Errorf("root ImportPath = %q", got)
	}
}

func TestExtract_PackageWithoutModule(t *testing.T) {
	s := extract(t, "package loose\n")
	if got := s.Of(ast.KindPackage)[0].(*ast.Package).ImportPath; got != "loose" {
		t.Errorf("ImportPath = %q, want loose", got)
	}
}

func TestExtract_SyntaxErrorKeepsPartialTree(t *testing.T) {
	s := extract(t, `package example

func Good() {}

func Broken( {
`)
	if !s.Failed() {
		t.Fatal("expected a syntax error")
	}
	if s.Errors[0].Operation != ast.OpSyntax || !errors.Is(s.Errors[0], ast.ErrSyntax) {
		t.Errorf("error = %v", s.Errors[0])
	}
	find(t, s, ast.KindFunction, "Good")
}

func TestExtract_Unparseable(t *testing.T) {
	s := extract(t, "not go at all")
	if !s.Failed() {
		t.Fatal("expected an error")
	}
	if s.Count() != 0 {
		t.Errorf("constructs = %d, want 0", s.Count())
	}
}

func TestExtract_LocalVariables(t *testing.T) {
	s := extract(t, `package example

func run() {
	var count int
	const max = 3
}
`)
	count := find(t, s, ast.KindVariable, "run.count").(*ast.Variable)
	if count.ParentKind != ast.KindFunction || count.DeclaredType != "int" {
		t.Errorf("count = %+v", count)
	}
	if !find(t, s, ast.KindVariable, "run.max").(*ast.Variable).Constant {
		t.Error("max should be constant")
	}
}

func TestVisibility(t *testing.T) {
	tests := map[string]string{
		"Exported": "public",
		"local":    "private",
		"_x":       "private",
		"":         "",
	}
	for in, want := range tests {
		if got := visibility(in); got != want {
			t.Errorf("visibility(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseCommentNameIsValidUTF8(t *testing.T) {
	comment := "// a" + strings.Repeat("界", 40) + "\n"
	s := extract(t, "package main\n\n"+comment+"func main() {}\n")

	comments := s.Of(ast.KindComment)
	if len(comments) == 0 {
		t.Fatal("expected a comment")
	}
	name := comments[0].Common().Name
	if !utf8.ValidString(name) || len(name) > 60 {
		t.Errorf("comment name = %q, want valid UTF-8 within 60 bytes", name)
	}
}

func TestResultType(t *testing.T) {
	tests := map[string]string{
		"func f() error":              "error",
		"func f() (int, error)":       "(int, error)",
		"func f() (n int, err error)": "(int, error)",
		"func f() (a, b string)":      "(string, string)",
		"func f() (out []*pkg.T)":     "([]*pkg.T)",
	}
	for src, want := range tests {
		s := extract(t, "package p\n\n"+src+" { panic(0) }\n")
		fns := s.Of(ast.KindFunction)
		if len(fns) != 1 {
			t.Fatalf("%s: expected one function, got %d", src, len(fns))
		}
		if got := fns[0].(*ast.Function).ReturnType; got != want {
			t.Errorf("%s: ReturnType = %q, want %q", src, got, want)
		}
	}
}
