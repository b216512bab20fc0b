package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ParseError reports a malformed N-Triples line.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("ntriples line %d: %s", e.Line, e.Msg)
}

// WriteNTriples writes one line per triple in the given order.
func WriteNTriples(w io.Writer, triples []Triple) error {
	bw := bufio.NewWriter(w)
	for _, t := range triples {
		if _, err := bw.WriteString(t.NTriples()); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadNTriples parses an N-Triples document. Blank lines and comment lines
// are skipped. Blank nodes are not produced by this system and are rejected.
func ReadNTriples(r io.Reader) ([]Triple, error) {
	var out []Triple
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		t, err := parseLine(text)
		if err != nil {
			return nil, &ParseError{Line: line, Msg: err.Error()}
		}
		out = append(out, t)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read ntriples: %w", err)
	}
	return out, nil
}

func parseLine(s string) (Triple, error) {
	subj, rest, err := readIRI(s)
	if err != nil {
		return Triple{}, fmt.Errorf("subject: %w", err)
	}
	pred, rest, err := readIRI(strings.TrimLeft(rest, " \t"))
	if err != nil {
		return Triple{}, fmt.Errorf("predicate: %w", err)
	}
	rest = strings.TrimLeft(rest, " \t")

	var obj Term
	switch {
	case strings.HasPrefix(rest, "<"):
		var iri string
		iri, rest, err = readIRI(rest)
		if err != nil {
			return Triple{}, fmt.Errorf("object: %w", err)
		}
		obj = IRI(iri)
	case strings.HasPrefix(rest, `"`):
		obj, rest, err = readLiteral(rest)
		if err != nil {
			return Triple{}, fmt.Errorf("object: %w", err)
		}
	default:
		return Triple{}, fmt.Errorf("object: expected IRI or literal")
	}

	rest = strings.TrimSpace(rest)
	if rest != "." {
		return Triple{}, fmt.Errorf("expected terminating '.'")
	}
	return Triple{Subject: subj, Predicate: pred, Object: obj}, nil
}

func readIRI(s string) (string, string, error) {
	if !strings.HasPrefix(s, "<") {
		return "", s, fmt.Errorf("expected '<'")
	}
	end := strings.IndexByte(s, '>')
	if end < 0 {
		return "", s, fmt.Errorf("unterminated IRI")
	}
	return s[1:end], s[end+1:], nil
}

func readLiteral(s string) (Term, string, error) {
	// s starts with the opening quote.
	i := 1
	for i < len(s) {
		if s[i] == '\\' {
			i += 2
			continue
		}
		if s[i] == '"' {
			break
		}
		i++
	}
	if i >= len(s) {
		return Term{}, s, fmt.Errorf("unterminated literal")
	}
	value, err := unescapeString(s[1:i])
	if err != nil {
		return Term{}, s, err
	}
	rest := s[i+1:]
	t := Literal(value)

	switch {
	case strings.HasPrefix(rest, "^^"):
		dt, r, err := readIRI(rest[2:])
		if err != nil {
			return Term{}, s, fmt.Errorf("datatype: %w", err)
		}
		t = Typed(value, dt)
		rest = r
	case strings.HasPrefix(rest, "@"):
		end := 1
		for end < len(rest) && rest[end] != ' ' && rest[end] != '\t' && rest[end] != '.' {
			end++
		}
		t.Lang = rest[1:end]
		rest = rest[end:]
	}
	return t, rest, nil
}
