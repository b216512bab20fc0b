package treesitter

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/c360studio/semcode/processor/ast"
)

// refScope is what a function body may refer to: the fields of its enclosing
// type and the file's top-level variables.
type refScope struct {
	fn       *entry
	owner    string                    // qualified name of the enclosing type
	fields   map[string]*ast.Attribute // attributes of owner by name
	locals   map[string]bool           // parameters and local declarations
	seen     map[ast.Reference]bool
	accesses []ast.Reference
	usages   []ast.Reference
}

// references records, for every function, the attributes of its enclosing
// type it reads or writes and the top-level variables it uses. Accesses go
// through a receiver (self.x, this.x) or, where the language allows it, a
// bare field name.
func (b *builder) references(s *ast.Summary, entries []*entry) {
	if b.spec.member.typ == "" {
		return
	}

	fields := make(map[string]map[string]*ast.Attribute)
	globals := make(map[string]bool)
	functions := make(map[nodeKey]bool)
	for _, e := range entries {
		base := e.c.Common()
		if base.Name == "" {
			continue
		}
		switch c := e.c.(type) {
		case *ast.Attribute:
			if fields[base.Parent] == nil {
				fields[base.Parent] = make(map[string]*ast.Attribute)
			}
			if _, ok := fields[base.Parent][base.Name]; !ok {
				fields[base.Parent][base.Name] = c
			}
		case *ast.Variable:
			if base.Parent == "" {
				globals[base.Name] = true
			}
		case *ast.Function:
			functions[keyOf(e.node)] = true
		}
	}

	for _, e := range entries {
		if e.c.Kind() != ast.KindFunction || e.c.Common().Name == "" {
			continue
		}
		sc := &refScope{
			fn:     e,
			owner:  ownerType(e),
			locals: b.localNames(entries, e.c.Common().QualifiedName()),
			seen:   make(map[ast.Reference]bool),
		}
		sc.fields = fields[sc.owner]

		body := e.node.ChildByFieldName("body")
		if body == nil {
			body = e.node
		}
		b.walkRefs(body, sc, globals, functions)
		s.Accesses = append(s.Accesses, sc.accesses...)
		s.Usages = append(s.Usages, sc.usages...)
	}
}

// ownerType returns the qualified name of the type a function is a method
// of, or "" for free and nested functions.
func ownerType(e *entry) string {
	if e.parent != nil {
		if e.parent.c.Kind().IsType() {
			return e.parent.c.Common().QualifiedName()
		}
		return ""
	}
	return e.scope
}

func (b *builder) localNames(entries []*entry, fn string) map[string]bool {
	locals := make(map[string]bool)
	for _, e := range entries {
		switch e.c.Kind() {
		case ast.KindParameter, ast.KindVariable:
			if e.c.Common().Parent == fn {
				locals[e.c.Common().Name] = true
			}
		}
	}
	return locals
}

func (b *builder) walkRefs(n *sitter.Node, sc *refScope, globals map[string]bool, functions map[nodeKey]bool) {
	if n == nil {
		return
	}
	// nested functions are walked on their own
	if functions[keyOf(n)] && keyOf(n) != keyOf(sc.fn.node) {
		return
	}

	m := b.spec.member
	switch n.Type() {
	case m.typ:
		object := n.ChildByFieldName(m.object)
		property := n.ChildByFieldName(m.property)
		if object != nil && property != nil {
			recv := b.text(object)
			if b.spec.receivers[recv] || (sc.owner != "" && recv == lastSegment(sc.owner)) {
				sc.field(b.text(property))
				return
			}
		}
		b.walkRefs(object, sc, globals, functions)
		return

	case "identifier":
		name := b.text(n)
		if sc.locals[name] {
			return
		}
		if b.spec.implicitSelf && sc.field(name) {
			return
		}
		if globals[name] {
			sc.add(&sc.usages, ast.Reference{
				From: sc.fn.c.Common().QualifiedName(), FromKind: ast.KindFunction,
				To: name, ToKind: ast.KindVariable,
			})
		}
		return
	}

	var skip *sitter.Node
	if field, ok := b.spec.nonRefFields[n.Type()]; ok {
		skip = n.ChildByFieldName(field)
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if skip != nil && keyOf(child) == keyOf(skip) {
			continue
		}
		b.walkRefs(child, sc, globals, functions)
	}
}

// field records a reference to the enclosing type's field called name and
// reports whether there is one. Static fields are shared declarations and
// count as usages.
func (sc *refScope) field(name string) bool {
	attr, ok := sc.fields[name]
	if !ok {
		return false
	}
	ref := ast.Reference{
		From: sc.fn.c.Common().QualifiedName(), FromKind: ast.KindFunction,
		To: ast.Qualify(sc.owner, name), ToKind: ast.KindAttribute,
	}
	if attr.Static {
		sc.add(&sc.usages, ref)
	} else {
		sc.add(&sc.accesses, ref)
	}
	return true
}

func (sc *refScope) add(list *[]ast.Reference, ref ast.Reference) {
	if sc.seen[ref] {
		return
	}
	sc.seen[ref] = true
	*list = append(*list, ref)
}
