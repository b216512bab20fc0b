package writer

import (
	"strconv"

	"github.com/c360studio/semcode/export"
	"github.com/c360studio/semcode/identity"
	"github.com/c360studio/semcode/processor/ast"
	"github.com/c360studio/semcode/vocabulary/code"
)

// WritePackages writes package declarations.
func (w *Writer) WritePackages(e *Emitter, f File, s *ast.Summary) NameMap {
	return w.writeKind(e, f, s, ast.KindPackage)
}

// WriteImports writes import declarations.
func (w *Writer) WriteImports(e *Emitter, f File, s *ast.Summary) NameMap {
	return w.writeKind(e, f, s, ast.KindImport)
}

// WriteClasses writes class definitions.
func (w *Writer) WriteClasses(e *Emitter, f File, s *ast.Summary) NameMap {
	return w.writeKind(e, f, s, ast.KindClass)
}

// WriteInterfaces writes interface definitions.
func (w *Writer) WriteInterfaces(e *Emitter, f File, s *ast.Summary) NameMap {
	return w.writeKind(e, f, s, ast.KindInterface)
}

// WriteStructs writes struct definitions.
func (w *Writer) WriteStructs(e *Emitter, f File, s *ast.Summary) NameMap {
	return w.writeKind(e, f, s, ast.KindStruct)
}

// WriteTraits writes trait definitions.
func (w *Writer) WriteTraits(e *Emitter, f File, s *ast.Summary) NameMap {
	return w.writeKind(e, f, s, ast.KindTrait)
}

// WriteEnums writes enum definitions with their members as literals.
func (w *Writer) WriteEnums(e *Emitter, f File, s *ast.Summary) NameMap {
	return w.writeKind(e, f, s, ast.KindEnum)
}

// WriteAttributes writes fields and properties.
func (w *Writer) WriteAttributes(e *Emitter, f File, s *ast.Summary) NameMap {
	return w.writeKind(e, f, s, ast.KindAttribute)
}

// WriteFunctions writes functions and methods.
func (w *Writer) WriteFunctions(e *Emitter, f File, s *ast.Summary) NameMap {
	return w.writeKind(e, f, s, ast.KindFunction)
}

// WriteParameters writes formal parameters.
func (w *Writer) WriteParameters(e *Emitter, f File, s *ast.Summary) NameMap {
	return w.writeKind(e, f, s, ast.KindParameter)
}

// WriteVariables writes variable and constant declarations.
func (w *Writer) WriteVariables(e *Emitter, f File, s *ast.Summary) NameMap {
	return w.writeKind(e, f, s, ast.KindVariable)
}

// WriteCallSites writes call expressions. Each call site is keyed by its
// qualified name and line.
func (w *Writer) WriteCallSites(e *Emitter, f File, s *ast.Summary) NameMap {
	return w.writeKind(e, f, s, ast.KindCallSite)
}

// WriteComments writes comments. Each comment is keyed by its qualified
// name and line.
func (w *Writer) WriteComments(e *Emitter, f File, s *ast.Summary) NameMap {
	return w.writeKind(e, f, s, ast.KindComment)
}

// lineScoped reports whether constructs of kind share names and are told
// apart by their line.
func lineScoped(k ast.Kind) bool {
	return k == ast.KindCallSite || k == ast.KindComment
}

func (w *Writer) writeKind(e *Emitter, f File, s *ast.Summary, kind ast.Kind) NameMap {
	out := make(NameMap)
	class := w.classes.Construct(string(kind))
	for _, c := range s.Of(kind) {
		b := c.Common()
		if b.Name == "" {
			continue
		}
		qualified := b.QualifiedName()
		key, line := qualified, 0
		if _, dup := out[key]; lineScoped(kind) || dup {
			// overloads and redefinitions are told apart by their line
			line = b.StartLine
			key = qualified + "@L" + strconv.Itoa(line)
		}
		if _, dup := out[key]; dup {
			w.logger.Debug("Duplicate construct name", "file", f.Path, "kind", kind, "name", key)
			continue
		}

		uri := identity.Construct(f.URI, string(kind), qualified, line)
		e.Entity(uri, class)
		w.writeCommon(e, f, uri, c)
		w.writeDetails(e, uri, c)
		out[key] = Entry{URI: uri, Class: class, Kind: kind, Construct: c}
	}
	return out
}

// writeCommon emits what every construct carries: label, canonical name,
// containment in the content entity, source text and metrics.
func (w *Writer) writeCommon(e *Emitter, f File, uri string, c ast.Construct) {
	b := c.Common()
	kind := c.Kind()

	e.Label(uri, Label(kind, b.Name, w.opts.MaxLabelLength))
	e.Literal(uri, code.PropHasCanonicalName, export.Literal(canonicalName(c)))
	e.Relate(f.ContentURI, code.PropHasCodePart, uri)

	if b.Raw != "" {
		e.Literal(uri, code.PropHasSourceText, export.Literal(b.Raw))
		e.Literal(uri, code.PropHasTokenCount, export.Int(int64(TokenCount(b.Raw))))
	}
	if b.StartLine > 0 {
		e.Literal(uri, code.PropStartsAtLine, export.Int(int64(b.StartLine)))
	}
	if b.EndLine > 0 {
		e.Literal(uri, code.PropEndsAtLine, export.Int(int64(b.EndLine)))
	}
	if n := lineCount(b); n > 0 {
		e.Literal(uri, code.PropHasLineCount, export.Int(int64(n)))
	}
	for _, d := range b.Decorators {
		e.Literal(uri, code.PropHasDecorator, export.Literal(d))
	}

	switch kind {
	case ast.KindComment, ast.KindCallSite, ast.KindImport, ast.KindPackage:
		return
	}
	header := b.Header()
	if access := b.Access; access != "" {
		e.Literal(uri, code.PropHasAccessModifier, export.Literal(access))
	} else if access := AccessModifier(header); access != "" {
		e.Literal(uri, code.PropHasAccessModifier, export.Literal(access))
	}
	if hasKeyword(header, "final") || hasKeyword(header, "sealed") {
		e.Literal(uri, code.PropIsFinal, export.Bool(true))
	}
}

// writeDetails emits the kind-specific attributes of c.
func (w *Writer) writeDetails(e *Emitter, uri string, c ast.Construct) {
	switch c := c.(type) {
	case *ast.Class:
		if hasKeyword(c.Header(), "static") {
			e.Literal(uri, code.PropIsStatic, export.Bool(true))
		}
	case *ast.Interface, *ast.Struct, *ast.Trait:
		// relations only
	case *ast.Enum:
		for _, m := range c.Members {
			e.Literal(uri, code.PropHasEnumMember, export.Literal(m))
		}
	case *ast.Function:
		header := c.Header()
		if c.Async || hasKeyword(header, "async") {
			e.Literal(uri, code.PropIsAsync, export.Bool(true))
		}
		if c.Static || hasKeyword(header, "static") {
			e.Literal(uri, code.PropIsStatic, export.Bool(true))
		}
		if c.Raw != "" {
			e.Literal(uri, code.PropHasCyclomaticComplexity, export.Int(int64(Complexity(c.Raw))))
		}
	case *ast.Parameter:
		if c.Default != "" {
			e.Literal(uri, code.PropHasDefaultValue, export.Literal(c.Default))
		}
	case *ast.Variable:
		if c.Constant {
			e.Literal(uri, code.PropIsFinal, export.Bool(true))
		}
		if hasKeyword(c.Header(), "static") {
			e.Literal(uri, code.PropIsStatic, export.Bool(true))
		}
	case *ast.Attribute:
		if c.Static || hasKeyword(c.Header(), "static") {
			e.Literal(uri, code.PropIsStatic, export.Bool(true))
		}
	case *ast.Import:
		if c.Module != "" {
			e.Literal(uri, code.PropHasImportPath, export.Literal(c.Module))
		}
		if c.Alias != "" {
			e.Literal(uri, code.PropHasAlias, export.Literal(c.Alias))
		}
	case *ast.Package:
		if c.ImportPath != "" {
			e.Literal(uri, code.PropHasImportPath, export.Literal(c.ImportPath))
		}
	case *ast.CallSite:
		if c.Callee != "" {
			e.Literal(uri, code.PropHasCalleeName, export.Literal(c.Callee))
		}
	case *ast.Comment:
		if c.Doc {
			e.Literal(uri, code.PropIsDocComment, export.Bool(true))
		}
	}
}

func canonicalName(c ast.Construct) string {
	if p, ok := c.(*ast.Package); ok && p.ImportPath != "" {
		return p.ImportPath
	}
	return c.Common().QualifiedName()
}

func lineCount(b *ast.Base) int {
	if b.StartLine > 0 && b.EndLine >= b.StartLine {
		return b.EndLine - b.StartLine + 1
	}
	if b.Raw == "" {
		return 0
	}
	n := 1
	for i := 0; i < len(b.Raw); i++ {
		if b.Raw[i] == '\n' {
			n++
		}
	}
	return n
}
