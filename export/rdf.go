// Package export provides the RDF term model and serializers for the
// knowledge graph: N-Triples (the persisted form), Turtle and JSON-LD.
package export

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/c360studio/semcode/vocabulary/code"
)

// Format specifies the output serialization format.
type Format string

const (
	// FormatTurtle produces Turtle (.ttl) output.
	FormatTurtle Format = "turtle"

	// FormatNTriples produces N-Triples (.nt) output.
	FormatNTriples Format = "ntriples"

	// FormatJSONLD produces JSON-LD (.jsonld) output.
	FormatJSONLD Format = "jsonld"
)

// TermKind tells IRIs and literals apart.
type TermKind uint8

const (
	KindIRI TermKind = iota
	KindLiteral
)

// Term is an RDF node in object position. Subjects and predicates are always
// IRIs and are carried as plain strings.
type Term struct {
	Kind     TermKind
	Value    string
	Datatype string // literal datatype IRI, empty for xsd:string
	Lang     string // language tag, literals only
}

// IRI returns an IRI term.
func IRI(v string) Term { return Term{Kind: KindIRI, Value: v} }

// Literal returns a plain string literal.
func Literal(v string) Term { return Term{Kind: KindLiteral, Value: v} }

// Typed returns a literal with an explicit datatype.
func Typed(v, datatype string) Term {
	if datatype == code.XSDString {
		datatype = ""
	}
	return Term{Kind: KindLiteral, Value: v, Datatype: datatype}
}

// Int returns an xsd:integer literal.
func Int(v int64) Term { return Typed(strconv.FormatInt(v, 10), code.XSDInteger) }

// Bool returns an xsd:boolean literal.
func Bool(v bool) Term { return Typed(strconv.FormatBool(v), code.XSDBoolean) }

// DateTime returns an xsd:dateTime literal in UTC.
func DateTime(v time.Time) Term {
	return Typed(v.UTC().Format(time.RFC3339), code.XSDDateTime)
}

// IsIRI reports whether the term is an IRI.
func (t Term) IsIRI() bool { return t.Kind == KindIRI }

// NTriples renders the term in N-Triples syntax.
func (t Term) NTriples() string {
	if t.Kind == KindIRI {
		return "<" + t.Value + ">"
	}
	s := `"` + escapeString(t.Value) + `"`
	switch {
	case t.Lang != "":
		s += "@" + t.Lang
	case t.Datatype != "":
		s += "^^<" + t.Datatype + ">"
	}
	return s
}

// Triple is a single statement.
type Triple struct {
	Subject   string
	Predicate string
	Object    Term
}

// T builds a triple.
func T(subject, predicate string, object Term) Triple {
	return Triple{Subject: subject, Predicate: predicate, Object: object}
}

// NTriples renders the triple as one N-Triples line without the newline.
func (t Triple) NTriples() string {
	return "<" + t.Subject + "> <" + t.Predicate + "> " + t.Object.NTriples() + " ."
}

// Key returns a value that is equal for equal triples.
func (t Triple) Key() string {
	return t.NTriples()
}

// Less orders triples by subject, predicate, then rendered object.
func Less(a, b Triple) bool {
	if a.Subject != b.Subject {
		return a.Subject < b.Subject
	}
	if a.Predicate != b.Predicate {
		return a.Predicate < b.Predicate
	}
	return a.Object.NTriples() < b.Object.NTriples()
}

// Sort orders triples in place with Less.
func Sort(triples []Triple) {
	sort.Slice(triples, func(i, j int) bool { return Less(triples[i], triples[j]) })
}

// Exporter serializes triples in any supported format.
type Exporter struct {
	prefixes map[string]string
	profile  Profile
}

// NewExporter creates an exporter with the default prefixes and the full
// profile.
func NewExporter() *Exporter {
	return &Exporter{prefixes: defaultPrefixes(), profile: ProfileFull}
}

// SetPrefix adds or replaces a namespace prefix used by Turtle and JSON-LD.
func (e *Exporter) SetPrefix(prefix, iri string) {
	e.prefixes[prefix] = iri
}

// SetProfile selects which triples are exported.
func (e *Exporter) SetProfile(p Profile) {
	e.profile = p
}

// defaultPrefixes returns the standard namespace prefixes for RDF export.
func defaultPrefixes() map[string]string {
	return map[string]string{
		"rdf":    "http://www.w3.org/1999/02/22-rdf-syntax-ns#",
		"rdfs":   "http://www.w3.org/2000/01/rdf-schema#",
		"xsd":    "http://www.w3.org/2001/XMLSchema#",
		"code":   code.Namespace,
		"entity": code.EntityNamespace,
	}
}

// Export writes triples to w in the given format.
func (e *Exporter) Export(w io.Writer, triples []Triple, format Format) error {
	filtered := e.profile.Filter(triples)
	switch format {
	case FormatNTriples:
		return WriteNTriples(w, filtered)
	case FormatTurtle:
		tw := NewTurtleWriter(w)
		for p, iri := range e.prefixes {
			tw.SetPrefix(p, iri)
		}
		return tw.Write(filtered)
	case FormatJSONLD:
		jw := NewJSONLDWriter()
		jw.SetContext(e.prefixes)
		jw.AddTriples(filtered)
		_, err := io.WriteString(w, jw.String())
		return err
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// escapeString escapes special characters in strings for RDF serialization.
func escapeString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	s = strings.ReplaceAll(s, "\t", "\\t")
	return s
}

// unescapeString reverses escapeString and also accepts \uXXXX and
// \UXXXXXXXX escapes.
func unescapeString(s string) (string, error) {
	if !strings.Contains(s, "\\") {
		return s, nil
	}
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			sb.WriteByte(c)
			continue
		}
		i++
		if i >= len(s) {
			return "", fmt.Errorf("dangling escape")
		}
		switch s[i] {
		case '\\':
			sb.WriteByte('\\')
		case '"':
			sb.WriteByte('"')
		case '\'':
			sb.WriteByte('\'')
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case 'b':
			sb.WriteByte('\b')
		case 'f':
			sb.WriteByte('\f')
		case 'u', 'U':
			n := 4
			if s[i] == 'U' {
				n = 8
			}
			if i+n >= len(s) {
				return "", fmt.Errorf("short unicode escape")
			}
			r, err := strconv.ParseUint(s[i+1:i+1+n], 16, 32)
			if err != nil {
				return "", fmt.Errorf("bad unicode escape: %w", err)
			}
			sb.WriteRune(rune(r))
			i += n
		default:
			return "", fmt.Errorf("unknown escape \\%c", s[i])
		}
	}
	return sb.String(), nil
}
