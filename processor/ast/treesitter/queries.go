package treesitter

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/c360studio/semcode/processor/ast"
)

//go:embed queries/*.yaml
var embeddedQueries embed.FS

// QueryTable holds one language's named capture queries, keyed by the kind
// they extract.
type QueryTable struct {
	Name    string
	Queries map[ast.Kind]string
}

type queryFile struct {
	Language string            `yaml:"language"`
	Queries  map[string]string `yaml:"queries"`
}

var captureRe = regexp.MustCompile(`@([A-Za-z_][A-Za-z0-9_.\-]*)`)

// LoadQueries loads the query tables for every grammar. A file named
// <table>.yaml in dir replaces the built-in table of that name. Every capture
// name is validated; a name that maps to no kind fails the load.
func LoadQueries(dir string, logger *slog.Logger) (map[string]*QueryTable, error) {
	if logger == nil {
		logger = slog.Default()
	}

	names := make(map[string]bool)
	for _, spec := range languageSpecs {
		names[spec.table] = true
	}
	sorted := make([]string, 0, len(names))
	for n := range names {
		sorted = append(sorted, n)
	}
	sort.Strings(sorted)

	tables := make(map[string]*QueryTable, len(sorted))
	for _, name := range sorted {
		data, source, err := readTable(dir, name)
		if err != nil {
			return nil, err
		}
		if source != "" {
			logger.Info("Using query table override", "table", name, "path", source)
		}
		table, err := ParseQueryTable(name, data)
		if err != nil {
			return nil, err
		}
		tables[name] = table
	}
	return tables, nil
}

func readTable(dir, name string) ([]byte, string, error) {
	file := name + ".yaml"
	if dir != "" {
		path := filepath.Join(dir, file)
		data, err := os.ReadFile(path)
		if err == nil {
			return data, path, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, "", fmt.Errorf("read query table %s: %w", path, err)
		}
	}
	data, err := embeddedQueries.ReadFile("queries/" + file)
	if err != nil {
		return nil, "", fmt.Errorf("read built-in query table %s: %w", name, err)
	}
	return data, "", nil
}

// ParseQueryTable decodes and validates a YAML query table.
func ParseQueryTable(name string, data []byte) (*QueryTable, error) {
	var qf queryFile
	if err := yaml.Unmarshal(data, &qf); err != nil {
		return nil, fmt.Errorf("parse query table %s: %w", name, err)
	}

	table := &QueryTable{Name: name, Queries: make(map[ast.Kind]string, len(qf.Queries))}
	for key, src := range qf.Queries {
		kind, ok := ast.ParseKind(key)
		if !ok {
			return nil, fmt.Errorf("query table %s: unknown construct kind %q", name, key)
		}
		if err := validateCaptures(kind, src); err != nil {
			return nil, fmt.Errorf("query table %s, %s query: %w", name, kind, err)
		}
		table.Queries[kind] = src
	}
	return table, nil
}

func validateCaptures(kind ast.Kind, src string) error {
	hasConstruct := false
	for _, m := range captureRe.FindAllStringSubmatch(src, -1) {
		c, err := parseCapture(m[1])
		if err != nil {
			return err
		}
		if c.ignore {
			continue
		}
		if c.kind != kind {
			return fmt.Errorf("%w: @%s belongs to %s", ErrUnknownCapture, m[1], c.kind)
		}
		if c.field == FieldNone {
			hasConstruct = true
		}
	}
	if !hasConstruct {
		return fmt.Errorf("no @%s capture", captureTags[kind])
	}
	return nil
}
