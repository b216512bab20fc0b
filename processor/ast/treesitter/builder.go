package treesitter

import (
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/c360studio/semcode/processor/ast"
)

type nodeKey struct {
	start, end uint32
	typ        string
}

func keyOf(n *sitter.Node) nodeKey {
	return nodeKey{start: n.StartByte(), end: n.EndByte(), typ: n.Type()}
}

type groupKey struct {
	kind ast.Kind
	node nodeKey
}

// group collects every capture that shares one construct node, across the
// patterns of a query.
type group struct {
	kind   ast.Kind
	node   *sitter.Node
	fields map[Field][]*sitter.Node
}

func (g *group) add(f Field, n *sitter.Node) {
	for _, have := range g.fields[f] {
		if have.StartByte() == n.StartByte() && have.EndByte() == n.EndByte() {
			return
		}
	}
	g.fields[f] = append(g.fields[f], n)
}

func (g *group) first(f Field) *sitter.Node {
	if ns := g.fields[f]; len(ns) > 0 {
		return ns[0]
	}
	return nil
}

// entry is one construct and the node it came from.
type entry struct {
	c      ast.Construct
	node   *sitter.Node
	g      *group
	parent *entry
	scope  string // container-derived parent, e.g. the type of a Rust impl block
	done   bool
}

type builder struct {
	spec   languageSpec
	src    []byte
	groups map[groupKey]*group
	order  []*group
}

func newBuilder(spec languageSpec, src []byte) *builder {
	return &builder{
		spec:   spec,
		src:    src,
		groups: make(map[groupKey]*group),
	}
}

func (b *builder) addMatch(caps []capture, qcs []sitter.QueryCapture) {
	var g *group
	for _, qc := range qcs {
		c := caps[qc.Index]
		if c.ignore || c.field != FieldNone {
			continue
		}
		key := groupKey{kind: c.kind, node: keyOf(qc.Node)}
		g = b.groups[key]
		if g == nil {
			g = &group{kind: c.kind, node: qc.Node, fields: make(map[Field][]*sitter.Node)}
			b.groups[key] = g
			b.order = append(b.order, g)
		}
		break
	}
	if g == nil {
		return
	}
	for _, qc := range qcs {
		c := caps[qc.Index]
		if c.ignore || c.field == FieldNone || c.kind != g.kind {
			continue
		}
		g.add(c.field, qc.Node)
	}
}

func (b *builder) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(b.src)
}

func (b *builder) texts(ns []*sitter.Node) []string {
	if len(ns) == 0 {
		return nil
	}
	out := make([]string, 0, len(ns))
	for _, n := range ns {
		out = append(out, b.text(n))
	}
	return out
}

// finish turns the collected groups into constructs on s.
func (b *builder) finish(s *ast.Summary) {
	rank := make(map[ast.Kind]int, len(ast.Kinds))
	for i, k := range ast.Kinds {
		rank[k] = i
	}
	sort.SliceStable(b.order, func(i, j int) bool {
		gi, gj := b.order[i], b.order[j]
		if gi.kind != gj.kind {
			return rank[gi.kind] < rank[gj.kind]
		}
		return gi.node.StartByte() < gj.node.StartByte()
	})

	var entries []*entry
	for _, g := range b.order {
		entries = append(entries, b.build(g)...)
	}

	applyTypeHeuristics(entries)
	b.resolveParents(entries)
	b.applyContainers(entries)
	collectEnumMembers(entries)
	linkParameters(entries)

	seen := make(map[string]bool)
	for _, e := range entries {
		base := e.c.Common()
		if base.Name == "" {
			continue
		}
		if e.c.Kind() == ast.KindAttribute {
			// the same attribute may be assigned in several methods
			q := base.QualifiedName()
			if seen[q] {
				continue
			}
			seen[q] = true
		}
		s.Add(e.c)
		b.typeUsages(s, e)
	}
	b.references(s, entries)
}

// build creates the constructs of one group: one per captured name, or a
// single construct when the kind has no name capture.
func (b *builder) build(g *group) []*entry {
	names := g.fields[FieldName]
	if len(names) == 0 {
		names = []*sitter.Node{nil}
	}
	out := make([]*entry, 0, len(names))
	for _, nameNode := range names {
		c := ast.New(g.kind)
		base := c.Common()
		base.Name = b.text(nameNode)
		base.Raw = b.text(g.node)
		base.StartLine = int(g.node.StartPoint().Row) + 1
		base.EndLine = int(g.node.EndPoint().Row) + 1
		base.Decorators = b.texts(g.fields[FieldDecorator])
		switch g.kind {
		case ast.KindComment, ast.KindCallSite, ast.KindImport, ast.KindPackage:
		default:
			base.Access = accessOf(base.Header(), base.Name)
		}
		b.fill(c, g, nameNode)
		out = append(out, &entry{c: c, node: g.node, g: g})
	}
	return out
}

func (b *builder) fill(c ast.Construct, g *group, nameNode *sitter.Node) {
	header := c.Common().Header()
	switch t := c.(type) {
	case *ast.Class:
		t.Bases = typeNames(b.texts(g.fields[FieldBase]))
		t.Implements = typeNames(b.texts(g.fields[FieldImplements]))
		t.Abstract = hasWord(header, "abstract")
	case *ast.Interface:
		t.Bases = typeNames(b.texts(g.fields[FieldBase]))
	case *ast.Struct:
		t.Implements = typeNames(b.texts(g.fields[FieldImplements]))
	case *ast.Trait:
		t.Bases = typeNames(b.texts(g.fields[FieldBase]))
	case *ast.Enum:
		t.Bases = typeNames(b.texts(g.fields[FieldBase]))
		t.Members = b.texts(g.fields[FieldMember])
	case *ast.Function:
		t.ReturnType = cleanType(b.text(g.first(FieldReturn)))
		t.Async = hasWord(header, "async")
		t.Static = hasWord(header, "static") || hasDecorator(t.Decorators, "staticmethod")
	case *ast.Parameter:
		t.DeclaredType = cleanType(b.text(g.first(FieldType)))
		t.Default = b.text(g.first(FieldDefault))
	case *ast.Variable:
		t.DeclaredType = cleanType(b.text(g.first(FieldType)))
		t.Constant = hasWord(header, "const") || hasWord(header, "final")
	case *ast.Attribute:
		t.DeclaredType = cleanType(b.text(g.first(FieldType)))
		t.Static = hasWord(header, "static")
	case *ast.Import:
		t.Module = trimQuotes(b.text(g.first(FieldModule)))
		t.Alias = b.text(g.first(FieldAlias))
		t.Names = b.texts(g.fields[FieldSymbol])
		if t.Name == "" {
			t.Name = t.Module
		}
	case *ast.Package:
		t.ImportPath = t.Name
	case *ast.CallSite:
		callee := ""
		if n := g.first(FieldCallee); n != nil {
			callee = b.text(n)
		} else if nameNode != nil {
			callee = string(b.src[g.node.StartByte():nameNode.EndByte()])
			callee = strings.TrimPrefix(strings.TrimSpace(callee), "new ")
		}
		t.Callee = strings.Join(strings.Fields(callee), "")
		if nameNode != nil {
			t.Name = calleeName(b.text(nameNode))
		} else {
			t.Name = calleeName(t.Callee)
		}
	case *ast.Comment:
		t.Text = cleanComment(t.Raw)
		t.Doc = g.first(FieldDoc) != nil || isDocComment(t.Raw)
		t.Name = ast.CommentName(t.Text)
	}
}

// resolveParents links each construct to the nearest enclosing type or
// function construct, and sets Parent to that construct's qualified name.
func (b *builder) resolveParents(entries []*entry) {
	defs := make(map[nodeKey]*entry)
	for _, e := range entries {
		k := e.c.Kind()
		if k.IsType() || k == ast.KindFunction {
			defs[keyOf(e.node)] = e
		}
	}

	typeKinds := make(map[string]ast.Kind)
	for _, e := range entries {
		if e.c.Kind().IsType() {
			typeKinds[e.c.Common().Name] = e.c.Kind()
		}
	}

	for _, e := range entries {
		switch e.c.Kind() {
		case ast.KindComment, ast.KindImport, ast.KindPackage:
			continue
		}
		self := keyOf(e.node)
		for n := e.node.Parent(); n != nil; n = n.Parent() {
			if ct, ok := b.spec.containers[n.Type()]; ok {
				if e.c.Kind() == ast.KindParameter {
					break
				}
				name := cleanType(b.text(n.ChildByFieldName(ct.typeField)))
				if name != "" {
					e.scope = name
					e.c.Common().ParentKind = typeKinds[name]
					if e.c.Common().ParentKind == "" {
						e.c.Common().ParentKind = ast.KindStruct
					}
				}
				break
			}
			p, ok := defs[keyOf(n)]
			if !ok || keyOf(n) == self {
				continue
			}
			pk := p.c.Kind()
			if e.c.Kind() == ast.KindAttribute && pk == ast.KindFunction {
				continue
			}
			if e.c.Kind() == ast.KindParameter && pk != ast.KindFunction {
				break
			}
			e.parent = p
			break
		}
	}

	for _, e := range entries {
		qualify(e)
	}
}

func qualify(e *entry) string {
	base := e.c.Common()
	if e.done {
		return base.QualifiedName()
	}
	e.done = true
	switch {
	case e.parent != nil:
		base.Parent = qualify(e.parent)
		base.ParentKind = e.parent.c.Kind()
	case e.scope != "":
		base.Parent = e.scope
	}
	return base.QualifiedName()
}

// applyContainers records trait implementations declared by container nodes
// such as "impl Trait for Type".
func (b *builder) applyContainers(entries []*entry) {
	if len(b.spec.containers) == 0 {
		return
	}
	types := make(map[string]ast.Construct)
	for _, e := range entries {
		if e.c.Kind().IsType() && e.c.Common().Parent == "" {
			types[e.c.Common().Name] = e.c
		}
	}
	seen := make(map[nodeKey]bool)
	for _, e := range entries {
		if e.scope == "" {
			continue
		}
		for n := e.node.Parent(); n != nil; n = n.Parent() {
			ct, ok := b.spec.containers[n.Type()]
			if !ok {
				continue
			}
			if seen[keyOf(n)] || ct.traitField == "" {
				break
			}
			seen[keyOf(n)] = true
			trait := cleanType(b.text(n.ChildByFieldName(ct.traitField)))
			if trait == "" {
				break
			}
			switch t := types[e.scope].(type) {
			case *ast.Struct:
				t.Implements = appendUnique(t.Implements, trait)
			case *ast.Enum:
				t.Bases = appendUnique(t.Bases, trait)
			case *ast.Class:
				t.Implements = appendUnique(t.Implements, trait)
			}
			break
		}
	}
}

// collectEnumMembers adds the attributes of enums that were recognised by
// heuristic rather than by a dedicated grammar node.
func collectEnumMembers(entries []*entry) {
	for _, e := range entries {
		if e.c.Kind() != ast.KindAttribute || e.parent == nil {
			continue
		}
		if en, ok := e.parent.c.(*ast.Enum); ok {
			en.Members = appendUnique(en.Members, e.c.Common().Name)
		}
	}
}

// linkParameters numbers parameters per function and fills Function.Params.
func linkParameters(entries []*entry) {
	for _, e := range entries {
		p, ok := e.c.(*ast.Parameter)
		if !ok || e.parent == nil {
			continue
		}
		fn, ok := e.parent.c.(*ast.Function)
		if !ok {
			continue
		}
		p.Position = len(fn.Params)
		fn.Params = append(fn.Params, p.Name)
	}
}

func (b *builder) typeUsages(s *ast.Summary, e *entry) {
	base := e.c.Common()
	add := func(typ string, role ast.TypeRole) {
		name := typeName(typ)
		if name == "" || b.spec.builtins[name] {
			return
		}
		s.TypeUsages = append(s.TypeUsages, ast.TypeUsage{
			From: base.QualifiedName(), FromKind: e.c.Kind(), Type: name, Role: role,
		})
	}
	switch t := e.c.(type) {
	case *ast.Parameter:
		add(t.DeclaredType, ast.RoleDeclared)
	case *ast.Variable:
		add(t.DeclaredType, ast.RoleDeclared)
	case *ast.Attribute:
		add(t.DeclaredType, ast.RoleDeclared)
	case *ast.Function:
		add(t.ReturnType, ast.RoleReturn)
	}
}
