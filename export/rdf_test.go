package export_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/c360studio/semcode/export"
	"github.com/c360studio/semcode/vocabulary/code"
)

func TestTermNTriples(t *testing.T) {
	tests := []struct {
		name string
		term export.Term
		want string
	}{
		{"iri", export.IRI("https://x/a"), "<https://x/a>"},
		{"plain", export.Literal("hello"), `"hello"`},
		{"escaped", export.Literal("a \"b\"\n\tc\\"), `"a \"b\"\n\tc\\"`},
		{"integer", export.Int(42), `"42"^^<http://www.w3.org/2001/XMLSchema#integer>`},
		{"boolean", export.Bool(true), `"true"^^<http://www.w3.org/2001/XMLSchema#boolean>`},
		{"string datatype collapses", export.Typed("x", code.XSDString), `"x"`},
		{"datetime", export.DateTime(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)),
			`"2024-05-01T10:00:00Z"^^<http://www.w3.org/2001/XMLSchema#dateTime>`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.term.NTriples(); got != tc.want {
				t.Errorf("NTriples() = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestNTriplesRoundTrip(t *testing.T) {
	in := sampleTriples()
	in = append(in,
		export.T("https://x/s", "https://x/p", export.Literal("line1\nline2 \"quoted\" \\ end")),
		export.T("https://x/s", "https://x/p", export.Term{Kind: export.KindLiteral, Value: "bonjour", Lang: "fr"}),
	)

	var buf bytes.Buffer
	if err := export.WriteNTriples(&buf, in); err != nil {
		t.Fatalf("WriteNTriples failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != len(in) {
		t.Fatalf("expected %d lines, got %d", len(in), len(lines))
	}

	out, err := export.ReadNTriples(&buf)
	if err != nil {
		t.Fatalf("ReadNTriples failed: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("expected %d triples, got %d", len(in), len(out))
	}
	for i := range in {
		if in[i].Key() != out[i].Key() {
			t.Errorf("triple %d: got %s, want %s", i, out[i].NTriples(), in[i].NTriples())
		}
	}
}

func TestReadNTriples_SkipsCommentsAndUnicodeEscapes(t *testing.T) {
	doc := "# header\n\n<https://x/s> <https://x/p> \"caf\\u00E9\" .\n"
	out, err := export.ReadNTriples(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ReadNTriples failed: %v", err)
	}
	if len(out) != 1 || out[0].Object.Value != "café" {
		t.Fatalf("unexpected result: %+v", out)
	}
}

func TestReadNTriples_ReportsLine(t *testing.T) {
	doc := "<https://x/s> <https://x/p> <https://x/o> .\n<https://x/s> <https://x/p> \"open .\n"
	_, err := export.ReadNTriples(strings.NewReader(doc))
	if err == nil {
		t.Fatal("expected parse error")
	}
	var pe *export.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %T", err)
	}
	if pe.Line != 2 {
		t.Errorf("error line = %d, want 2", pe.Line)
	}
}

func TestExportTurtle(t *testing.T) {
	exporter := export.NewExporter()

	var buf bytes.Buffer
	if err := exporter.Export(&buf, sampleTriples(), export.FormatTurtle); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	output := buf.String()

	if !strings.Contains(output, "@prefix code: <"+code.Namespace+">") {
		t.Error("Turtle output should contain prefix declarations")
	}
	if !strings.Contains(output, "a code:FunctionDefinition") {
		t.Error("Turtle output should compact the type assertion")
	}
	if !strings.Contains(output, `"3"^^xsd:integer`) {
		t.Error("Turtle output should compact datatypes")
	}
	if strings.Count(output, "<"+code.EntityNamespace+"file/1/FunctionDefinition/run>") != 1 {
		t.Error("Turtle output should group statements under one subject block")
	}
	if !strings.HasSuffix(strings.TrimSpace(output), ".") {
		t.Error("Turtle output should terminate the last block")
	}
}

func TestExportJSONLD(t *testing.T) {
	exporter := export.NewExporter()

	var buf bytes.Buffer
	if err := exporter.Export(&buf, sampleTriples(), export.FormatJSONLD); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("JSON-LD output is not valid JSON: %v", err)
	}
	graph, ok := doc["@graph"].([]any)
	if !ok || len(graph) != 1 {
		t.Fatalf("expected one node, got %v", doc["@graph"])
	}
	node := graph[0].(map[string]any)
	if node["@type"] == nil {
		t.Error("JSON-LD node should carry @type")
	}
}

func TestExportProfileApplied(t *testing.T) {
	exporter := export.NewExporter()
	exporter.SetProfile(export.ProfileMinimal)

	var buf bytes.Buffer
	if err := exporter.Export(&buf, sampleTriples(), export.FormatNTriples); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if strings.Contains(buf.String(), "def run") {
		t.Error("minimal profile should drop source text")
	}
}

func TestExportUnsupported(t *testing.T) {
	var buf bytes.Buffer
	if err := export.NewExporter().Export(&buf, nil, "xml"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestParseFormat(t *testing.T) {
	tests := map[string]export.Format{
		"turtle":   export.FormatTurtle,
		"ttl":      export.FormatTurtle,
		".nt":      export.FormatNTriples,
		"NTriples": export.FormatNTriples,
		"jsonld":   export.FormatJSONLD,
	}
	for in, want := range tests {
		got, err := export.ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %s, %v; want %s", in, got, err, want)
		}
	}
	if _, err := export.ParseFormat("rdfxml"); err == nil {
		t.Error("expected error for unknown format")
	}
}
