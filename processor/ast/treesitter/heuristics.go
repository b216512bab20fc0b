package treesitter

import (
	"strings"
	"unicode"

	"github.com/c360studio/semcode/processor/ast"
)

var enumMarkers = map[string]bool{
	"Enum":    true,
	"IntEnum": true,
	"StrEnum": true,
	"Flag":    true,
	"IntFlag": true,
}

var protocolMarkers = map[string]bool{
	"Protocol":        true,
	"typing.Protocol": true,
}

// isEnumBase reports whether a base class name marks its subclass as an
// enumeration.
func isEnumBase(name string) bool {
	return enumMarkers[name] || strings.HasPrefix(name, "enum.")
}

// looksLikeInterface reports whether a base type name is conventionally an
// interface: IFoo, FooInterface, FooProtocol, FooABC or Comparable-style
// names.
func looksLikeInterface(name string) bool {
	name = lastSegment(name)
	if len(name) > 2 && name[0] == 'I' && unicode.IsUpper(rune(name[1])) && unicode.IsLower(rune(name[2])) {
		return true
	}
	for _, suffix := range []string{"Interface", "Protocol", "ABC"} {
		if strings.HasSuffix(name, suffix) && name != suffix {
			return true
		}
	}
	return len(name) > 6 && strings.HasSuffix(name, "able") && unicode.IsUpper(rune(name[0]))
}

// applyTypeHeuristics reclassifies class constructs that are enums or
// protocols in disguise, and moves interface-like bases to Implements.
func applyTypeHeuristics(entries []*entry) {
	interfaces := make(map[string]bool)
	for _, e := range entries {
		if e.c.Kind() == ast.KindInterface {
			interfaces[e.c.Common().Name] = true
		}
	}

	for _, e := range entries {
		cls, ok := e.c.(*ast.Class)
		if !ok {
			continue
		}

		enum := false
		protocol := false
		var bases []string
		for _, b := range cls.Bases {
			switch {
			case isEnumBase(b):
				enum = true
				bases = append(bases, b)
			case protocolMarkers[b]:
				protocol = true
			case b == "ABC" || b == "abc.ABC":
				cls.Abstract = true
				bases = append(bases, b)
			case interfaces[b] || looksLikeInterface(b):
				cls.Implements = appendUnique(cls.Implements, b)
			default:
				bases = append(bases, b)
			}
		}
		cls.Bases = bases

		switch {
		case enum:
			e.c = &ast.Enum{Base: cls.Base, Bases: cls.Bases}
		case protocol:
			e.c = &ast.Interface{Base: cls.Base, Bases: append(cls.Bases, cls.Implements...)}
		}
	}
}

// cleanType strips annotation punctuation from a type's source text.
func cleanType(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, ":")
	s = strings.TrimPrefix(s, "->")
	return strings.TrimSpace(s)
}

// typeName reduces a type expression to the referenced type's name:
// "&mut Vec<Foo>" → "Vec", "pkg.Foo[]" → "pkg.Foo", "'App'" → "App".
func typeName(s string) string {
	s = unquote(cleanType(s))
	for {
		trimmed := strings.TrimLeft(s, "&*?")
		trimmed = strings.TrimPrefix(trimmed, "mut ")
		trimmed = strings.TrimPrefix(trimmed, "dyn ")
		trimmed = strings.TrimPrefix(trimmed, "impl ")
		trimmed = strings.TrimSpace(trimmed)
		if trimmed == s {
			break
		}
		s = trimmed
	}
	if i := strings.IndexAny(s, "<[( |,{"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSuffix(s, "?")
}

// unquote strips the matching quotes of a forward reference.
func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		return strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}

func typeNames(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if n := typeName(s); n != "" {
			out = appendUnique(out, n)
		}
	}
	return out
}

// lastSegment returns the final identifier of a dotted or path-qualified
// name, without generic arguments.
func lastSegment(s string) string {
	s = typeName(s)
	if i := strings.LastIndex(s, "::"); i >= 0 {
		s = s[i+2:]
	}
	if i := strings.LastIndexAny(s, ".#"); i >= 0 {
		s = s[i+1:]
	}
	return s
}

// calleeName returns the final identifier of a call target such as
// "a.b().c", "mod::f::<T>" or "Foo<Bar>".
func calleeName(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, "<(["); i >= 0 && !strings.ContainsAny(s[i:], ".#:") {
		s = s[:i]
	}
	s = strings.TrimSuffix(s, "::")
	if i := strings.LastIndex(s, "::"); i >= 0 {
		s = s[i+2:]
	}
	if i := strings.LastIndexAny(s, ".#"); i >= 0 {
		s = s[i+1:]
	}
	if i := strings.IndexAny(s, "<(["); i >= 0 {
		s = s[:i]
	}
	return s
}

func hasWord(s, word string) bool {
	for _, f := range strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	}) {
		if f == word {
			return true
		}
	}
	return false
}

func hasDecorator(decorators []string, name string) bool {
	for _, d := range decorators {
		if strings.TrimPrefix(d, "@") == name {
			return true
		}
	}
	return false
}

// accessOf reads an explicit access modifier from a declaration header.
func accessOf(header, name string) string {
	switch {
	case hasWord(header, "public"), hasWord(header, "pub"):
		return "public"
	case hasWord(header, "protected"):
		return "protected"
	case hasWord(header, "private"), strings.HasPrefix(name, "#"):
		return "private"
	}
	return ""
}

func trimQuotes(s string) string {
	return strings.Trim(s, "\"'`")
}

func isDocComment(raw string) bool {
	for _, p := range []string{"/**", "///", "//!", `"""`, "'''"} {
		if strings.HasPrefix(raw, p) {
			return true
		}
	}
	return false
}

// cleanComment strips comment delimiters and leading decoration from each
// line.
func cleanComment(raw string) string {
	s := strings.TrimSpace(raw)
	for _, p := range []string{`"""`, "'''", "/**", "/*", "///", "//!", "//", "#"} {
		if strings.HasPrefix(s, p) {
			s = s[len(p):]
			break
		}
	}
	for _, p := range []string{`"""`, "'''", "*/"} {
		if strings.HasSuffix(s, p) {
			s = s[:len(s)-len(p)]
			break
		}
	}
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		l = strings.TrimSpace(l)
		l = strings.TrimPrefix(l, "*")
		l = strings.TrimPrefix(l, "///")
		l = strings.TrimPrefix(l, "//")
		l = strings.TrimPrefix(l, "#")
		lines[i] = strings.TrimSpace(l)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func appendUnique(list []string, s string) []string {
	for _, have := range list {
		if have == s {
			return list
		}
	}
	return append(list, s)
}
