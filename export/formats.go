package export

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/c360studio/semcode/vocabulary/code"
)

// FormatInfo provides metadata about an export format.
type FormatInfo struct {
	// Name is the format identifier.
	Name Format

	// MIMEType is the standard MIME type.
	MIMEType string

	// Extension is the file extension (with dot).
	Extension string

	// Description describes the format.
	Description string
}

// FormatRegistry contains metadata for all supported formats.
var FormatRegistry = map[Format]FormatInfo{
	FormatTurtle: {
		Name:        FormatTurtle,
		MIMEType:    "text/turtle",
		Extension:   ".ttl",
		Description: "Turtle - Terse RDF Triple Language",
	},
	FormatNTriples: {
		Name:        FormatNTriples,
		MIMEType:    "application/n-triples",
		Extension:   ".nt",
		Description: "N-Triples - Line-based RDF format",
	},
	FormatJSONLD: {
		Name:        FormatJSONLD,
		MIMEType:    "application/ld+json",
		Extension:   ".jsonld",
		Description: "JSON-LD - JSON for Linked Data",
	},
}

// GetFormatInfo returns metadata for a format.
func GetFormatInfo(format Format) (FormatInfo, bool) {
	info, ok := FormatRegistry[format]
	return info, ok
}

// ParseFormat maps a user-supplied name or extension to a Format.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for f, info := range FormatRegistry {
		if s == string(f) || s == info.Extension || "."+s == info.Extension {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported format: %s", s)
}

// TurtleWriter writes RDF in Turtle format, grouping statements by subject
// and compacting IRIs with the registered prefixes.
type TurtleWriter struct {
	w        io.Writer
	prefixes map[string]string
}

// NewTurtleWriter creates a new Turtle writer with default prefixes.
func NewTurtleWriter(w io.Writer) *TurtleWriter {
	return &TurtleWriter{
		w:        w,
		prefixes: defaultPrefixes(),
	}
}

// SetPrefix sets a namespace prefix.
func (tw *TurtleWriter) SetPrefix(prefix, iri string) {
	tw.prefixes[prefix] = iri
}

// Write serializes triples. Input order does not matter; output is sorted.
func (tw *TurtleWriter) Write(triples []Triple) error {
	sorted := append([]Triple(nil), triples...)
	Sort(sorted)

	bw := bufio.NewWriter(tw.w)

	// Sort prefixes for consistent output
	keys := make([]string, 0, len(tw.prefixes))
	for k := range tw.prefixes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, prefix := range keys {
		fmt.Fprintf(bw, "@prefix %s: <%s> .\n", prefix, tw.prefixes[prefix])
	}

	for i, t := range sorted {
		newSubject := i == 0 || sorted[i-1].Subject != t.Subject
		if newSubject {
			if i > 0 {
				bw.WriteString(" .\n")
			}
			fmt.Fprintf(bw, "\n%s\n", tw.compact(t.Subject))
		} else {
			bw.WriteString(" ;\n")
		}
		pred := tw.compact(t.Predicate)
		if t.Predicate == code.RDFType {
			pred = "a"
		}
		fmt.Fprintf(bw, "    %s %s", pred, tw.object(t.Object))
	}
	if len(sorted) > 0 {
		bw.WriteString(" .\n")
	}
	return bw.Flush()
}

func (tw *TurtleWriter) object(t Term) string {
	if t.IsIRI() {
		return tw.compact(t.Value)
	}
	if t.Datatype != "" && t.Lang == "" {
		return `"` + escapeString(t.Value) + `"^^` + tw.compact(t.Datatype)
	}
	return t.NTriples()
}

// compact returns prefix:local when a registered namespace matches and the
// local part is a safe prefixed name, otherwise <iri>.
func (tw *TurtleWriter) compact(iri string) string {
	best := ""
	for prefix, ns := range tw.prefixes {
		if strings.HasPrefix(iri, ns) && len(ns) > len(tw.prefixes[best]) {
			best = prefix
		}
	}
	if best != "" {
		local := iri[len(tw.prefixes[best]):]
		if isSafeLocal(local) {
			return best + ":" + local
		}
	}
	return "<" + iri + ">"
}

func isSafeLocal(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case r >= '0' && r <= '9', r == '-':
			if i == 0 && r == '-' {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// JSONLDDocument represents a JSON-LD document structure.
type JSONLDDocument struct {
	Context map[string]any `json:"@context"`
	Graph   []JSONLDNode   `json:"@graph"`
}

// JSONLDNode represents a node in a JSON-LD graph.
type JSONLDNode struct {
	ID         string         `json:"@id"`
	Type       []string       `json:"@type,omitempty"`
	Properties map[string]any `json:"-"`
}

// MarshalJSON implements custom JSON marshaling for JSONLDNode.
func (n JSONLDNode) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(n.Properties)+2)
	m["@id"] = n.ID
	if len(n.Type) > 0 {
		m["@type"] = n.Type
	}
	for k, v := range n.Properties {
		m[k] = v
	}
	return json.Marshal(m)
}

// JSONLDWriter writes RDF in JSON-LD format.
type JSONLDWriter struct {
	doc JSONLDDocument
}

// NewJSONLDWriter creates a new JSON-LD writer.
func NewJSONLDWriter() *JSONLDWriter {
	return &JSONLDWriter{
		doc: JSONLDDocument{
			Context: make(map[string]any),
			Graph:   make([]JSONLDNode, 0),
		},
	}
}

// SetContext sets the @context with prefixes.
func (w *JSONLDWriter) SetContext(prefixes map[string]string) {
	for k, v := range prefixes {
		w.doc.Context[k] = v
	}
}

// AddNode adds a node to the graph.
func (w *JSONLDWriter) AddNode(id string, types []string, properties map[string]any) {
	w.doc.Graph = append(w.doc.Graph, JSONLDNode{
		ID:         id,
		Type:       types,
		Properties: properties,
	})
}

// AddTriples groups triples by subject into nodes. Repeated predicates
// become arrays.
func (w *JSONLDWriter) AddTriples(triples []Triple) {
	sorted := append([]Triple(nil), triples...)
	Sort(sorted)

	var node *JSONLDNode
	flush := func() {
		if node != nil {
			w.doc.Graph = append(w.doc.Graph, *node)
		}
	}
	for _, t := range sorted {
		if node == nil || node.ID != t.Subject {
			flush()
			node = &JSONLDNode{ID: t.Subject, Properties: make(map[string]any)}
		}
		if t.Predicate == code.RDFType && t.Object.IsIRI() {
			node.Type = append(node.Type, t.Object.Value)
			continue
		}
		v := jsonldValue(t.Object)
		switch prev := node.Properties[t.Predicate].(type) {
		case nil:
			node.Properties[t.Predicate] = v
		case []any:
			node.Properties[t.Predicate] = append(prev, v)
		default:
			node.Properties[t.Predicate] = []any{prev, v}
		}
	}
	flush()
}

func jsonldValue(t Term) any {
	switch {
	case t.IsIRI():
		return map[string]string{"@id": t.Value}
	case t.Lang != "":
		return map[string]string{"@value": t.Value, "@language": t.Lang}
	case t.Datatype != "":
		return map[string]string{"@value": t.Value, "@type": t.Datatype}
	default:
		return t.Value
	}
}

// String returns the JSON-LD output.
func (w *JSONLDWriter) String() string {
	data, err := json.MarshalIndent(w.doc, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data) + "\n"
}
