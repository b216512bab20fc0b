// Package golang extracts constructs from Go source files with go/parser.
package golang

import (
	"context"
	"fmt"
	goast "go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"log/slog"
	"strings"
	"unicode"

	"github.com/c360studio/semcode/processor/ast"
)

// Parser extracts constructs from Go files. Safe for concurrent use.
type Parser struct {
	modules *moduleResolver
	logger  *slog.Logger
}

// NewParser creates a Go parser.
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{
		modules: newModuleResolver(),
		logger:  logger,
	}
}

// Extract parses one Go file. A syntax error is recorded and whatever part of
// the file parsed is still walked.
func (p *Parser) Extract(ctx context.Context, in ast.FileInput) *ast.Summary {
	s := ast.NewSummary(in.RelPath, in.Language)

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, in.RelPath, in.Source, parser.ParseComments|parser.AllErrors)
	if err != nil {
		if file == nil || file.Name == nil || file.Name.Name == "" {
			s.Fail(ast.OpParse, err)
			return s
		}
		s.Fail(ast.OpSyntax, fmt.Errorf("%w: %v", ast.ErrSyntax, err))
	}
	if ctx.Err() != nil {
		s.Fail(ast.OpTimeout, ctx.Err())
		return s
	}

	w := &walker{
		fset:      fset,
		src:       in.Source,
		s:         s,
		importMap: make(map[string]string),
		typeKinds: make(map[string]ast.Kind),
		fields:    make(map[string]map[string]bool),
		methods:   make(map[string]map[string]bool),
		pkgDecls:  make(map[string]bool),
		docGroups: make(map[*goast.CommentGroup]bool),
		enums:     make(map[string]*ast.Enum),
	}
	w.extractPackage(file, p.modules.importPath(in.AbsPath, file.Name.Name))
	w.prepass(file)
	w.extractImports(file)
	for _, decl := range file.Decls {
		w.extractDeclaration(decl)
	}
	w.extractComments(file)
	w.inferImplements()

	p.logger.Debug("Extracted Go file", "file", in.RelPath, "constructs", s.Count())
	return s
}

type walker struct {
	fset *token.FileSet
	src  []byte
	s    *ast.Summary

	// importMap holds the file's imports, keyed by local name (alias or last path segment)
	importMap map[string]string

	typeKinds map[string]ast.Kind
	fields    map[string]map[string]bool // type → field names
	methods   map[string]map[string]bool // type → method names
	pkgDecls  map[string]bool            // package-level var and const names
	docGroups map[*goast.CommentGroup]bool
	enums     map[string]*ast.Enum

	// type constructs in declaration order, for implicit implementation
	structs    []ast.Construct
	interfaces []*ast.Interface
}

func (w *walker) line(pos token.Pos) int {
	if !pos.IsValid() {
		return 0
	}
	return w.fset.Position(pos).Line
}

func (w *walker) text(n goast.Node) string {
	start, end := n.Pos(), n.End()
	if !start.IsValid() || !end.IsValid() {
		return ""
	}
	so, eo := w.fset.Position(start).Offset, w.fset.Position(end).Offset
	if so < 0 || eo > len(w.src) || so >= eo {
		return ""
	}
	return string(w.src[so:eo])
}

func (w *walker) base(name string, n goast.Node) ast.Base {
	return ast.Base{
		Name:      name,
		Raw:       w.text(n),
		StartLine: w.line(n.Pos()),
		EndLine:   w.line(n.End()),
		Access:    visibility(name),
	}
}

func (w *walker) extractPackage(file *goast.File, importPath string) {
	pkg := &ast.Package{
		Base: ast.Base{
			Name:      file.Name.Name,
			Raw:       "package " + file.Name.Name,
			StartLine: w.line(file.Package),
			EndLine:   w.line(file.Name.End()),
		},
		ImportPath: importPath,
	}
	w.s.Add(pkg)
	if file.Doc != nil {
		w.docGroups[file.Doc] = true
	}
}

// prepass records type kinds, struct fields, interface method sets and
// package-level names so the main walk can resolve parents and usages.
func (w *walker) prepass(file *goast.File) {
	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *goast.GenDecl:
			for _, spec := range d.Specs {
				switch sp := spec.(type) {
				case *goast.TypeSpec:
					w.typeKinds[sp.Name.Name] = typeKind(sp)
					if st, ok := sp.Type.(*goast.StructType); ok && st.Fields != nil {
						names := make(map[string]bool)
						for _, f := range st.Fields.List {
							for _, n := range f.Names {
								names[n.Name] = true
							}
						}
						w.fields[sp.Name.Name] = names
					}
				case *goast.ValueSpec:
					for _, n := range sp.Names {
						if n.Name != "_" {
							w.pkgDecls[n.Name] = true
						}
					}
				}
			}
		case *goast.FuncDecl:
			if recv := receiverType(d); recv != "" {
				if w.methods[recv] == nil {
					w.methods[recv] = make(map[string]bool)
				}
				w.methods[recv][d.Name.Name] = true
			}
		}
	}

	// Named basic types with typed constants in this file are enums.
	for _, decl := range file.Decls {
		d, ok := decl.(*goast.GenDecl)
		if !ok || d.Tok != token.CONST {
			continue
		}
		var last string
		for _, spec := range d.Specs {
			vs := spec.(*goast.ValueSpec)
			typ := last
			if vs.Type != nil {
				typ = extractTypeName(vs.Type)
				last = typ
			} else if len(vs.Values) > 0 {
				typ, last = "", ""
			}
			if typ != "" && w.typeKinds[typ] == ast.KindClass && w.isBasicNamed(file, typ) {
				w.typeKinds[typ] = ast.KindEnum
				w.enums[typ] = &ast.Enum{}
			}
		}
	}
}

func (w *walker) isBasicNamed(file *goast.File, name string) bool {
	for _, decl := range file.Decls {
		d, ok := decl.(*goast.GenDecl)
		if !ok || d.Tok != token.TYPE {
			continue
		}
		for _, spec := range d.Specs {
			ts := spec.(*goast.TypeSpec)
			if ts.Name.Name != name {
				continue
			}
			id, ok := ts.Type.(*goast.Ident)
			return ok && isBasicType(id.Name)
		}
	}
	return false
}

func typeKind(ts *goast.TypeSpec) ast.Kind {
	switch ts.Type.(type) {
	case *goast.StructType:
		return ast.KindStruct
	case *goast.InterfaceType:
		return ast.KindInterface
	default:
		return ast.KindClass
	}
}

func (w *walker) extractImports(file *goast.File) {
	for _, imp := range file.Imports {
		importPath := strings.Trim(imp.Path.Value, "`\"")

		// Determine local name: use alias if provided, otherwise last path segment
		localName := importPath[strings.LastIndex(importPath, "/")+1:]
		alias := ""
		if imp.Name != nil {
			alias = imp.Name.Name
			if alias != "." && alias != "_" {
				localName = alias
			}
		}
		w.importMap[localName] = importPath

		w.s.Add(&ast.Import{
			Base: ast.Base{
				Name:      importPath,
				Raw:       w.text(imp),
				StartLine: w.line(imp.Pos()),
				EndLine:   w.line(imp.End()),
			},
			Module: importPath,
			Alias:  alias,
		})
	}
}

// extractDeclaration extracts constructs from a top-level declaration
func (w *walker) extractDeclaration(decl goast.Decl) {
	switch d := decl.(type) {
	case *goast.FuncDecl:
		if d.Doc != nil {
			w.docGroups[d.Doc] = true
		}
		w.extractFunction(d)

	case *goast.GenDecl:
		if d.Doc != nil {
			w.docGroups[d.Doc] = true
		}
		switch d.Tok {
		case token.TYPE:
			for _, spec := range d.Specs {
				if ts, ok := spec.(*goast.TypeSpec); ok {
					if ts.Doc != nil {
						w.docGroups[ts.Doc] = true
					}
					w.extractTypeSpec(d, ts)
				}
			}
		case token.CONST, token.VAR:
			var lastType string
			for _, spec := range d.Specs {
				vs, ok := spec.(*goast.ValueSpec)
				if !ok {
					continue
				}
				if vs.Doc != nil {
					w.docGroups[vs.Doc] = true
				}
				lastType = w.extractValueSpec(d, vs, "", lastType)
			}
		}
	}
}

// extractFunction extracts a function, or a method when it has a receiver
func (w *walker) extractFunction(fn *goast.FuncDecl) {
	b := w.base(fn.Name.Name, fn)
	recv := receiverType(fn)
	if recv != "" {
		b.Parent = recv
		b.ParentKind = w.typeKinds[recv]
		if b.ParentKind == "" {
			// receiver declared in another file of the package
			b.ParentKind = ast.KindStruct
		}
	}
	f := &ast.Function{Base: b}
	qualified := f.QualifiedName()

	locals := make(map[string]bool)
	if fn.Recv != nil {
		for _, field := range fn.Recv.List {
			for _, n := range field.Names {
				locals[n.Name] = true
			}
		}
	}

	// Go groups parameters with the same type, e.g. "a, b int" is one field with 2 names
	if fn.Type.Params != nil {
		pos := 0
		for _, field := range fn.Type.Params.List {
			typeText := types.ExprString(field.Type)
			for _, n := range field.Names {
				locals[n.Name] = true
				f.Params = append(f.Params, n.Name)
				w.s.Add(&ast.Parameter{
					Base: ast.Base{
						Name:       n.Name,
						Raw:        n.Name + " " + typeText,
						StartLine:  w.line(n.Pos()),
						EndLine:    w.line(field.End()),
						Parent:     qualified,
						ParentKind: ast.KindFunction,
					},
					DeclaredType: typeText,
					Position:     pos,
				})
				w.addTypeUsage(ast.Qualify(qualified, n.Name), ast.KindParameter, field.Type, ast.RoleDeclared)
				pos++
			}
			if len(field.Names) == 0 {
				pos++
			}
		}
	}

	if fn.Type.Results != nil && len(fn.Type.Results.List) > 0 {
		f.ReturnType = resultType(fn.Type.Results)
		for _, field := range fn.Type.Results.List {
			w.addTypeUsage(qualified, ast.KindFunction, field.Type, ast.RoleReturn)
		}
	}

	w.s.Add(f)

	if fn.Body != nil {
		recvName := ""
		if fn.Recv != nil && len(fn.Recv.List) > 0 && len(fn.Recv.List[0].Names) > 0 {
			recvName = fn.Recv.List[0].Names[0].Name
		}
		w.extractBody(fn.Body, qualified, recv, recvName, locals)
	}
}

// extractBody records call sites, local declarations, receiver field access
// and package-level declaration usage inside a function body.
func (w *walker) extractBody(body *goast.BlockStmt, caller, recvType, recvName string, locals map[string]bool) {
	accessed := make(map[string]bool)
	used := make(map[string]bool)
	selectors := make(map[*goast.Ident]bool)

	goast.Inspect(body, func(n goast.Node) bool {
		switch x := n.(type) {
		case *goast.FuncLit:
			// closures share the caller's call graph
			return true

		case *goast.AssignStmt:
			if x.Tok == token.DEFINE {
				for _, lhs := range x.Lhs {
					if id, ok := lhs.(*goast.Ident); ok {
						locals[id.Name] = true
					}
				}
			}

		case *goast.DeclStmt:
			if gd, ok := x.Decl.(*goast.GenDecl); ok && (gd.Tok == token.VAR || gd.Tok == token.CONST) {
				var last string
				for _, spec := range gd.Specs {
					if vs, ok := spec.(*goast.ValueSpec); ok {
						for _, id := range vs.Names {
							locals[id.Name] = true
						}
						last = w.extractValueSpec(gd, vs, caller, last)
					}
				}
			}

		case *goast.CallExpr:
			name, callee := calleeName(x.Fun)
			if name == "" || (callee == name && isBuiltinFunc(name)) {
				return true
			}
			w.s.Add(&ast.CallSite{
				Base: ast.Base{
					Name:       name,
					Raw:        w.text(x),
					StartLine:  w.line(x.Pos()),
					EndLine:    w.line(x.End()),
					Parent:     caller,
					ParentKind: ast.KindFunction,
				},
				Callee: w.resolveCallee(callee),
			})

		case *goast.SelectorExpr:
			selectors[x.Sel] = true
			if recvName == "" {
				return true
			}
			if id, ok := x.X.(*goast.Ident); ok && id.Name == recvName && w.fields[recvType][x.Sel.Name] {
				target := recvType + "." + x.Sel.Name
				if !accessed[target] {
					accessed[target] = true
					w.s.Accesses = append(w.s.Accesses, ast.Reference{
						From: caller, FromKind: ast.KindFunction,
						To: target, ToKind: ast.KindAttribute,
					})
				}
			}

		case *goast.Ident:
			if selectors[x] {
				return true
			}
			if w.pkgDecls[x.Name] && !locals[x.Name] && !used[x.Name] {
				used[x.Name] = true
				w.s.Usages = append(w.s.Usages, ast.Reference{
					From: caller, FromKind: ast.KindFunction,
					To: x.Name, ToKind: ast.KindVariable,
				})
			}
		}
		return true
	})
}

// resolveCallee expands a package alias to its import path.
func (w *walker) resolveCallee(callee string) string {
	if idx := strings.Index(callee, "."); idx > 0 {
		if importPath, ok := w.importMap[callee[:idx]]; ok {
			return importPath + "." + callee[idx+1:]
		}
	}
	return callee
}

// extractTypeSpec extracts a struct, interface, enum or other named type
func (w *walker) extractTypeSpec(gd *goast.GenDecl, ts *goast.TypeSpec) {
	name := ts.Name.Name
	var node goast.Node = ts
	if len(gd.Specs) == 1 {
		node = gd
	}
	b := w.base(name, node)

	switch t := ts.Type.(type) {
	case *goast.StructType:
		st := &ast.Struct{Base: b}
		w.s.Add(st)
		w.structs = append(w.structs, st)
		if t.Fields == nil {
			return
		}
		for _, field := range t.Fields.List {
			if len(field.Names) == 0 {
				// Embedded field
				if typeName := extractTypeName(field.Type); typeName != "" {
					w.s.Embeds = append(w.s.Embeds, ast.Reference{
						From: name, FromKind: ast.KindStruct, To: w.qualifyType(typeName),
					})
				}
				continue
			}
			typeText := types.ExprString(field.Type)
			for _, n := range field.Names {
				w.s.Add(&ast.Attribute{
					Base: ast.Base{
						Name:       n.Name,
						Raw:        w.text(field),
						StartLine:  w.line(field.Pos()),
						EndLine:    w.line(field.End()),
						Parent:     name,
						ParentKind: ast.KindStruct,
						Access:     visibility(n.Name),
					},
					DeclaredType: typeText,
				})
				w.addTypeUsage(name+"."+n.Name, ast.KindAttribute, field.Type, ast.RoleDeclared)
			}
		}

	case *goast.InterfaceType:
		iface := &ast.Interface{Base: b}
		if t.Methods != nil {
			for _, m := range t.Methods.List {
				if len(m.Names) == 0 {
					// Embedded interface
					if typeName := extractTypeName(m.Type); typeName != "" {
						iface.Bases = append(iface.Bases, w.qualifyType(typeName))
					}
					continue
				}
				ft, ok := m.Type.(*goast.FuncType)
				if !ok {
					continue
				}
				for _, n := range m.Names {
					fn := &ast.Function{
						Base: ast.Base{
							Name:       n.Name,
							Raw:        w.text(m),
							StartLine:  w.line(m.Pos()),
							EndLine:    w.line(m.End()),
							Parent:     name,
							ParentKind: ast.KindInterface,
							Access:     visibility(n.Name),
						},
					}
					if ft.Params != nil {
						for _, p := range ft.Params.List {
							for _, pn := range p.Names {
								fn.Params = append(fn.Params, pn.Name)
							}
						}
					}
					if ft.Results != nil && len(ft.Results.List) > 0 {
						fn.ReturnType = types.ExprString(ft.Results.List[0].Type)
						for _, r := range ft.Results.List {
							w.addTypeUsage(name+"."+n.Name, ast.KindFunction, r.Type, ast.RoleReturn)
						}
					}
					w.s.Add(fn)
				}
			}
		}
		w.s.Add(iface)
		w.interfaces = append(w.interfaces, iface)

	default:
		if e, ok := w.enums[name]; ok {
			// members may already have been collected from an earlier const block
			e.Base = b
			w.s.Add(e)
			return
		}
		c := &ast.Class{Base: b}
		w.s.Add(c)
		w.structs = append(w.structs, c)
	}
}

// extractValueSpec extracts const and var declarations. parent is the
// enclosing function for local declarations. It returns the type carried to
// the next spec of an iota block.
func (w *walker) extractValueSpec(gd *goast.GenDecl, vs *goast.ValueSpec, parent, lastType string) string {
	typeText := ""
	if vs.Type != nil {
		typeText = types.ExprString(vs.Type)
		lastType = extractTypeName(vs.Type)
	} else if len(vs.Values) > 0 {
		lastType = ""
	}
	isConst := gd.Tok == token.CONST

	var node goast.Node = vs
	if len(gd.Specs) == 1 {
		node = gd
	}
	for _, n := range vs.Names {
		if n.Name == "_" {
			continue
		}
		b := w.base(n.Name, node)
		if parent != "" {
			b.Parent = parent
			b.ParentKind = ast.KindFunction
			b.Access = ""
		}
		w.s.Add(&ast.Variable{Base: b, DeclaredType: typeText, Constant: isConst})
		if vs.Type != nil {
			w.addTypeUsage(ast.Qualify(parent, n.Name), ast.KindVariable, vs.Type, ast.RoleDeclared)
		}

		if isConst && parent == "" && lastType != "" {
			if e, ok := w.enums[lastType]; ok {
				e.Members = append(e.Members, n.Name)
			}
		}
	}
	return lastType
}

func (w *walker) addTypeUsage(from string, kind ast.Kind, expr goast.Expr, role ast.TypeRole) {
	name := extractTypeName(expr)
	if name == "" || isBuiltinType(name) {
		return
	}
	w.s.TypeUsages = append(w.s.TypeUsages, ast.TypeUsage{
		From: from, FromKind: kind, Type: w.qualifyType(name), Role: role,
	})
}

// qualifyType expands "pkg.Type" to "import/path.Type" when pkg is an import.
func (w *walker) qualifyType(name string) string {
	if idx := strings.Index(name, "."); idx > 0 {
		if importPath, ok := w.importMap[name[:idx]]; ok {
			return importPath + "." + name[idx+1:]
		}
	}
	return name
}

func (w *walker) extractComments(file *goast.File) {
	for _, cg := range file.Comments {
		text := strings.TrimSpace(cg.Text())
		if text == "" {
			continue
		}
		w.s.Add(&ast.Comment{
			Base: ast.Base{
				Name:      ast.CommentName(text),
				Raw:       w.text(cg),
				StartLine: w.line(cg.Pos()),
				EndLine:   w.line(cg.End()),
			},
			Text: text,
			Doc:  w.docGroups[cg],
		})
	}
}

// inferImplements marks a named type as implementing every interface in the
// same file whose method set its own method set covers.
func (w *walker) inferImplements() {
	for _, iface := range w.interfaces {
		required := w.interfaceMethods(iface.Name)
		if len(required) == 0 {
			continue
		}
		for _, c := range w.structs {
			have := w.methods[c.Common().Name]
			if !covers(have, required) {
				continue
			}
			switch t := c.(type) {
			case *ast.Struct:
				t.Implements = append(t.Implements, iface.Name)
			case *ast.Class:
				t.Implements = append(t.Implements, iface.Name)
			}
		}
	}
}

func (w *walker) interfaceMethods(name string) []string {
	var out []string
	for _, c := range w.s.Of(ast.KindFunction) {
		b := c.Common()
		if b.ParentKind == ast.KindInterface && b.Parent == name {
			out = append(out, b.Name)
		}
	}
	return out
}

func covers(have map[string]bool, required []string) bool {
	if len(have) == 0 {
		return false
	}
	for _, m := range required {
		if !have[m] {
			return false
		}
	}
	return true
}

// resultType renders a result list: "error" for a single unnamed result,
// "(int, error)" otherwise.
func resultType(results *goast.FieldList) string {
	list := results.List
	if len(list) == 1 && len(list[0].Names) == 0 {
		return types.ExprString(list[0].Type)
	}
	var parts []string
	for _, field := range list {
		t := types.ExprString(field.Type)
		n := len(field.Names)
		if n == 0 {
			n = 1
		}
		for range n {
			parts = append(parts, t)
		}
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func receiverType(fn *goast.FuncDecl) string {
	if fn.Recv == nil || len(fn.Recv.List) == 0 {
		return ""
	}
	return extractTypeName(fn.Recv.List[0].Type)
}

// calleeName returns the final identifier of a call target and the full
// selector text.
func calleeName(expr goast.Expr) (string, string) {
	switch fn := expr.(type) {
	case *goast.Ident:
		return fn.Name, fn.Name
	case *goast.SelectorExpr:
		return fn.Sel.Name, types.ExprString(fn)
	case *goast.IndexExpr:
		return calleeName(fn.X)
	case *goast.IndexListExpr:
		return calleeName(fn.X)
	case *goast.ParenExpr:
		return calleeName(fn.X)
	}
	return "", ""
}

// extractTypeName extracts the name from a type expression
func extractTypeName(expr goast.Expr) string {
	switch t := expr.(type) {
	case *goast.Ident:
		return t.Name
	case *goast.SelectorExpr:
		// Package-qualified type: pkg.Type
		if x, ok := t.X.(*goast.Ident); ok {
			return x.Name + "." + t.Sel.Name
		}
	case *goast.StarExpr:
		return extractTypeName(t.X)
	case *goast.ArrayType:
		return extractTypeName(t.Elt)
	case *goast.Ellipsis:
		return extractTypeName(t.Elt)
	case *goast.IndexExpr:
		// Generic instantiation: Type[T]
		return extractTypeName(t.X)
	case *goast.IndexListExpr:
		return extractTypeName(t.X)
	case *goast.MapType:
		return "map"
	case *goast.ChanType:
		return "chan"
	case *goast.FuncType:
		return "func"
	case *goast.InterfaceType:
		return "interface"
	case *goast.StructType:
		return "struct"
	}
	return ""
}

// visibility maps Go export rules to an access modifier
func visibility(name string) string {
	for _, r := range name {
		if unicode.IsUpper(r) {
			return "public"
		}
		return "private"
	}
	return ""
}

// isBuiltinFunc returns true if the function is a Go built-in function
func isBuiltinFunc(name string) bool {
	switch name {
	case "append", "cap", "clear", "close", "complex", "copy",
		"delete", "imag", "len", "make", "max", "min", "new",
		"panic", "print", "println", "real", "recover":
		return true
	}
	return false
}

func isBasicType(name string) bool {
	switch name {
	case "bool", "byte", "complex64", "complex128",
		"float32", "float64",
		"int", "int8", "int16", "int32", "int64",
		"rune", "string",
		"uint", "uint8", "uint16", "uint32", "uint64", "uintptr":
		return true
	}
	return false
}

// isBuiltinType returns true if the type is a Go built-in type
func isBuiltinType(name string) bool {
	if isBasicType(name) {
		return true
	}
	switch name {
	case "error", "any", "comparable",
		"map", "chan", "func", "interface", "struct":
		return true
	}
	return false
}
