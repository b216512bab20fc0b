package writer

import (
	"strings"

	"github.com/c360studio/semcode/processor/ast"
)

// Entry is one written construct.
type Entry struct {
	URI       string
	Class     string // class IRI
	Kind      ast.Kind
	Construct ast.Construct
}

// NameMap maps a construct's qualified name to its entry.
type NameMap map[string]Entry

// Names indexes the entries written for one file, per kind. Relationship
// writers resolve names through it.
type Names struct {
	kinds  map[ast.Kind]NameMap
	simple map[ast.Kind]map[string][]string // simple name → qualified names
}

// NewNames returns an empty index.
func NewNames() *Names {
	return &Names{
		kinds:  make(map[ast.Kind]NameMap),
		simple: make(map[ast.Kind]map[string][]string),
	}
}

// Add indexes every entry of m under kind.
func (n *Names) Add(kind ast.Kind, m NameMap) {
	dst, ok := n.kinds[kind]
	if !ok {
		dst = make(NameMap, len(m))
		n.kinds[kind] = dst
		n.simple[kind] = make(map[string][]string)
	}
	for q, e := range m {
		if _, seen := dst[q]; !seen {
			s := simpleName(q)
			n.simple[kind][s] = append(n.simple[kind][s], q)
		}
		dst[q] = e
	}
}

// Of returns the entries of one kind.
func (n *Names) Of(kind ast.Kind) NameMap {
	return n.kinds[kind]
}

// Len returns the number of entries of all kinds.
func (n *Names) Len() int {
	total := 0
	for _, m := range n.kinds {
		total += len(m)
	}
	return total
}

// Lookup finds the entry of kind with the exact qualified name.
func (n *Names) Lookup(kind ast.Kind, qualified string) (Entry, bool) {
	e, ok := n.kinds[kind][qualified]
	return e, ok
}

// Resolve finds an entry among kinds, first by exact qualified name and then
// by simple name when exactly one entry carries it.
func (n *Names) Resolve(name string, kinds ...ast.Kind) (Entry, bool) {
	if name == "" {
		return Entry{}, false
	}
	for _, k := range kinds {
		if e, ok := n.kinds[k][name]; ok {
			return e, true
		}
	}

	var found []Entry
	for _, k := range kinds {
		for _, q := range n.simple[k][name] {
			found = append(found, n.kinds[k][q])
		}
	}
	if len(found) == 1 {
		return found[0], true
	}
	return Entry{}, false
}

// Parent resolves the enclosing construct of b.
func (n *Names) Parent(b *ast.Base) (Entry, bool) {
	if b.Parent == "" {
		return Entry{}, false
	}
	if b.ParentKind != "" {
		if e, ok := n.Lookup(b.ParentKind, b.Parent); ok {
			return e, true
		}
	}
	for _, k := range ast.Kinds {
		if k.IsType() || k == ast.KindFunction {
			if e, ok := n.Lookup(k, b.Parent); ok {
				return e, true
			}
		}
	}
	return Entry{}, false
}

// typeKinds are the kinds a type name can resolve to.
var typeKinds = []ast.Kind{ast.KindClass, ast.KindInterface, ast.KindStruct, ast.KindTrait, ast.KindEnum}

func simpleName(qualified string) string {
	if i := strings.LastIndexByte(qualified, '.'); i >= 0 {
		return qualified[i+1:]
	}
	return qualified
}
