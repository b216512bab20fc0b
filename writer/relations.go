package writer

import (
	"sort"

	"github.com/c360studio/semcode/export"
	"github.com/c360studio/semcode/identity"
	"github.com/c360studio/semcode/processor/ast"
	"github.com/c360studio/semcode/vocabulary/code"
)

// WriteMembership links constructs to their enclosing construct: methods,
// attributes and nested types to types; parameters, call sites and local
// declarations to functions.
func (w *Writer) WriteMembership(e *Emitter, names *Names) {
	for _, kind := range ast.Kinds {
		if kind == ast.KindComment || kind == ast.KindCallSite {
			continue
		}
		for _, child := range sorted(names.Of(kind)) {
			parent, ok := names.Parent(child.Construct.Common())
			if !ok {
				continue
			}
			if prop := memberProperty(kind, parent.Kind); prop != "" {
				e.Relate(parent.URI, prop, child.URI)
			}
		}
	}
}

func memberProperty(child, parent ast.Kind) string {
	switch {
	case parent.IsType():
		switch {
		case child == ast.KindFunction:
			return code.PropHasMethod
		case child == ast.KindAttribute, child == ast.KindVariable:
			return code.PropHasAttribute
		case child.IsType():
			return code.PropHasNestedType
		}
	case parent == ast.KindFunction:
		switch {
		case child == ast.KindParameter:
			return code.PropHasParameter
		case child.IsType():
			return code.PropHasNestedType
		default:
			return code.PropHasLocalElement
		}
	}
	return ""
}

// WriteInheritance links types to the types they extend. Bases not defined in
// the file become repository-scoped type references.
func (w *Writer) WriteInheritance(e *Emitter, f File, names *Names) {
	for _, kind := range typeKinds {
		for _, t := range sorted(names.Of(kind)) {
			for _, base := range basesOf(t.Construct) {
				e.Relate(t.URI, code.PropExtendsType, w.resolveType(e, f, names, base))
			}
		}
	}
}

// WriteImplementations links types to the interfaces they implement.
func (w *Writer) WriteImplementations(e *Emitter, f File, names *Names) {
	for _, kind := range typeKinds {
		for _, t := range sorted(names.Of(kind)) {
			for _, iface := range implementsOf(t.Construct) {
				e.Relate(t.URI, code.PropImplementsInterface, w.resolveType(e, f, names, iface))
			}
		}
	}
}

func basesOf(c ast.Construct) []string {
	switch c := c.(type) {
	case *ast.Class:
		return c.Bases
	case *ast.Interface:
		return c.Bases
	case *ast.Trait:
		return c.Bases
	case *ast.Enum:
		return c.Bases
	}
	return nil
}

func implementsOf(c ast.Construct) []string {
	switch c := c.(type) {
	case *ast.Class:
		return c.Implements
	case *ast.Struct:
		return c.Implements
	}
	return nil
}

// WriteTyping links declarations to their declared types and functions to
// their return types.
func (w *Writer) WriteTyping(e *Emitter, f File, s *ast.Summary, names *Names) {
	for _, u := range s.TypeUsages {
		from, ok := names.Lookup(u.FromKind, u.From)
		if !ok {
			continue
		}
		to := w.resolveType(e, f, names, u.Type)
		switch u.Role {
		case ast.RoleReturn:
			e.Relate(from.URI, code.PropReturnsType, to)
		default:
			e.Relate(from.URI, code.PropHasDeclaredType, to)
		}
	}
}

// WriteCalls links functions to their call sites and, when the callee is
// defined in the same file, call sites and callers to the callee.
func (w *Writer) WriteCalls(e *Emitter, names *Names) {
	for _, call := range sorted(names.Of(ast.KindCallSite)) {
		cs := call.Construct.(*ast.CallSite)
		caller, hasCaller := names.Parent(&cs.Base)
		if hasCaller && caller.Kind == ast.KindFunction {
			e.Relate(caller.URI, code.PropHasCallSite, call.URI)
		} else {
			hasCaller = false
		}

		callee, ok := names.Resolve(cs.Callee, ast.KindFunction)
		if !ok {
			callee, ok = names.Resolve(cs.Name, ast.KindFunction)
		}
		if !ok {
			continue
		}
		e.Relate(call.URI, code.PropInvokes, callee.URI)
		if hasCaller {
			e.Relate(caller.URI, code.PropCallsFunction, callee.URI)
		}
	}
}

// WriteUsages links functions to the package-level declarations they use.
func (w *Writer) WriteUsages(e *Emitter, s *ast.Summary, names *Names) {
	for _, r := range s.Usages {
		from, ok := names.Lookup(r.FromKind, r.From)
		if !ok {
			continue
		}
		to, ok := resolveRef(names, r)
		if !ok {
			continue
		}
		e.Relate(from.URI, code.PropUsesDeclaration, to.URI)
	}
}

// WriteAccesses links methods to the attributes they read or write.
func (w *Writer) WriteAccesses(e *Emitter, s *ast.Summary, names *Names) {
	for _, r := range s.Accesses {
		from, ok := names.Lookup(r.FromKind, r.From)
		if !ok {
			continue
		}
		if r.ToKind == "" {
			r.ToKind = ast.KindAttribute
		}
		to, ok := resolveRef(names, r)
		if !ok {
			continue
		}
		e.Relate(from.URI, code.PropAccessesAttribute, to.URI)
	}
}

// WriteEmbedding links types to the types they embed.
func (w *Writer) WriteEmbedding(e *Emitter, f File, s *ast.Summary, names *Names) {
	for _, r := range s.Embeds {
		from, ok := names.Lookup(r.FromKind, r.From)
		if !ok {
			from, ok = names.Resolve(r.From, typeKinds...)
		}
		if !ok {
			continue
		}
		e.Relate(from.URI, code.PropEmbedsType, w.resolveType(e, f, names, r.To))
	}
}

func resolveRef(names *Names, r ast.Reference) (Entry, bool) {
	if r.ToKind != "" {
		if to, ok := names.Lookup(r.ToKind, r.To); ok {
			return to, true
		}
		return names.Resolve(r.To, r.ToKind)
	}
	return names.Resolve(r.To, ast.KindVariable, ast.KindAttribute, ast.KindFunction)
}

// WriteDocumentation links comments to what they document: a docstring to
// its enclosing construct, any other comment to the construct starting on
// the line after the comment ends.
func (w *Writer) WriteDocumentation(e *Emitter, names *Names) {
	byLine := make(map[int]Entry)
	for _, kind := range ast.Kinds {
		if kind == ast.KindComment || kind == ast.KindCallSite || kind == ast.KindParameter {
			continue
		}
		for _, entry := range sorted(names.Of(kind)) {
			line := entry.Construct.Common().StartLine
			if _, taken := byLine[line]; !taken && line > 0 {
				byLine[line] = entry
			}
		}
	}

	for _, entry := range sorted(names.Of(ast.KindComment)) {
		cm := entry.Construct.(*ast.Comment)
		if cm.Doc && cm.Parent != "" {
			if parent, ok := names.Parent(&cm.Base); ok && cm.StartLine > parent.Construct.Common().StartLine {
				e.Relate(entry.URI, code.PropDocuments, parent.URI)
				continue
			}
		}
		if target, ok := byLine[cm.EndLine+1]; ok {
			e.Relate(entry.URI, code.PropDocuments, target.URI)
		}
	}
}

// resolveType returns the IRI of the type called name: the type defined in
// this file if there is exactly one, otherwise a type reference minted
// through the Types registry.
func (w *Writer) resolveType(e *Emitter, f File, names *Names, name string) string {
	if t, ok := names.Resolve(name, typeKinds...); ok {
		return t.URI
	}
	return w.TypeReference(e, f.Repository, name)
}

// TypeReference writes the repository-scoped entity for a type that is not
// defined in the current file and returns its IRI.
func (w *Writer) TypeReference(e *Emitter, repo, name string) string {
	if name == "" {
		return ""
	}
	id := w.ids.Types.GetOrCreate(identity.TypeKey(repo, name))
	uri := w.uris.Type(id)
	e.Entity(uri, w.classes.Construct(code.ClassTypeReference))
	e.Label(uri, boundedLabel("Type", name, w.opts.MaxLabelLength))
	e.Literal(uri, code.PropHasCanonicalName, export.Literal(name))
	return uri
}

// sorted returns the entries of m ordered by key so that emission order does
// not depend on map iteration.
func sorted(m NameMap) []Entry {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Entry, len(keys))
	for i, k := range keys {
		out[i] = m[k]
	}
	return out
}
