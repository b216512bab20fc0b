// Package treesitter extracts constructs from languages other than Go by
// running per-language named capture queries over tree-sitter syntax trees.
package treesitter

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/c360studio/semcode/processor/ast"
)

// Parser extracts constructs for one language. Safe for concurrent use:
// tree-sitter parsers are pooled and compiled queries are shared.
type Parser struct {
	spec   languageSpec
	lang   *sitter.Language
	table  *QueryTable
	pool   sync.Pool
	logger *slog.Logger

	mu      sync.Mutex
	queries map[ast.Kind]*compiledQuery
}

type compiledQuery struct {
	query    *sitter.Query
	captures []capture // indexed by capture id
	err      error
}

// NewParser creates a parser for language using its query table.
func NewParser(language string, table *QueryTable, logger *slog.Logger) (*Parser, error) {
	spec, ok := languageSpecs[language]
	if !ok {
		return nil, fmt.Errorf("no grammar for language %q", language)
	}
	if table == nil {
		return nil, fmt.Errorf("no query table for language %q", language)
	}
	if logger == nil {
		logger = slog.Default()
	}
	lang := spec.grammar()
	p := &Parser{
		spec:    spec,
		lang:    lang,
		table:   table,
		logger:  logger,
		queries: make(map[ast.Kind]*compiledQuery),
	}
	p.pool.New = func() any {
		sp := sitter.NewParser()
		sp.SetLanguage(lang)
		return sp
	}
	return p, nil
}

// Register loads the query tables (with overrides from queryDir) and
// registers a parser for every grammar language on the dispatcher. A query
// table with an unknown capture name fails registration.
func Register(d *ast.Dispatcher, queryDir string, logger *slog.Logger) error {
	tables, err := LoadQueries(queryDir, logger)
	if err != nil {
		return err
	}
	for _, name := range Languages() {
		spec := languageSpecs[name]
		p, err := NewParser(name, tables[spec.table], logger)
		if err != nil {
			return err
		}
		d.Register(name, p)
	}
	return nil
}

// Extract parses one file and runs every query of its table. A syntax error
// is recorded and the partial tree is still queried; a failing query is
// recorded against its kind and the other kinds still run.
func (p *Parser) Extract(ctx context.Context, in ast.FileInput) *ast.Summary {
	s := ast.NewSummary(in.RelPath, in.Language)

	sp := p.pool.Get().(*sitter.Parser)
	tree, err := sp.ParseCtx(ctx, nil, in.Source)
	if err == nil && ctx.Err() == nil {
		// a cancelled parser keeps its cancellation flag, so it is not reused
		sp.Reset()
		p.pool.Put(sp)
	}
	if err != nil {
		if ctx.Err() != nil {
			s.Fail(ast.OpTimeout, ctx.Err())
		} else {
			s.Fail(ast.OpParse, err)
		}
		return s
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		s.Fail(ast.OpSyntax, fmt.Errorf("%w near line %d", ast.ErrSyntax, firstErrorLine(root)))
	}

	b := newBuilder(p.spec, in.Source)
	for _, kind := range ast.Kinds {
		if _, ok := p.table.Queries[kind]; !ok {
			continue
		}
		if ctx.Err() != nil {
			s.Fail(ast.OpTimeout, ctx.Err())
			return s
		}
		cq := p.compiled(kind)
		if cq.err != nil {
			s.Fail(ast.QueryOp(kind), cq.err)
			continue
		}
		p.run(cq, root, in.Source, b)
	}
	b.finish(s)

	p.logger.Debug("Extracted file", "file", in.RelPath, "language", in.Language, "constructs", s.Count())
	return s
}

// compiled returns the query for kind, compiling it on first use.
func (p *Parser) compiled(kind ast.Kind) *compiledQuery {
	p.mu.Lock()
	defer p.mu.Unlock()
	if cq, ok := p.queries[kind]; ok {
		return cq
	}

	cq := &compiledQuery{}
	q, err := sitter.NewQuery([]byte(p.table.Queries[kind]), p.lang)
	if err != nil {
		cq.err = fmt.Errorf("compile %s query for %s: %w", kind, p.spec.name, err)
		p.logger.Warn("Query failed to compile", "language", p.spec.name, "kind", kind, "error", err)
	} else {
		cq.query = q
		n := q.CaptureCount()
		cq.captures = make([]capture, n)
		for i := uint32(0); i < n; i++ {
			c, err := parseCapture(q.CaptureNameForId(i))
			if err != nil {
				cq.err = err
				break
			}
			cq.captures[i] = c
		}
	}
	p.queries[kind] = cq
	return cq
}

func (p *Parser) run(cq *compiledQuery, root *sitter.Node, src []byte, b *builder) {
	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(cq.query, root)

	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		m = qc.FilterPredicates(m, src)
		if len(m.Captures) == 0 {
			continue
		}
		b.addMatch(cq.captures, m.Captures)
	}
}

func firstErrorLine(n *sitter.Node) int {
	if n.Type() == "ERROR" || n.IsMissing() {
		return int(n.StartPoint().Row) + 1
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c != nil && c.HasError() {
			return firstErrorLine(c)
		}
	}
	return int(n.StartPoint().Row) + 1
}
