package graph

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/c360studio/semcode/export"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func triple(s, p, o string) export.Triple {
	return export.T("https://x/"+s, "https://x/"+p, export.IRI("https://x/"+o))
}

func TestGraph_SetSemantics(t *testing.T) {
	g := New()
	assert.True(t, g.Add(triple("a", "p", "b")))
	assert.False(t, g.Add(triple("a", "p", "b")))
	assert.Equal(t, 2, g.AddAll([]export.Triple{triple("a", "p", "b"), triple("a", "p", "c"), triple("b", "q", "c")}))
	assert.Equal(t, 3, g.Len())
	assert.True(t, g.Has(triple("b", "q", "c")))

	// literal and IRI with the same text are distinct
	assert.True(t, g.Add(export.T("https://x/a", "https://x/p", export.Literal("https://x/b"))))
}

func TestGraph_MergeIsUnion(t *testing.T) {
	base := New()
	base.AddAll([]export.Triple{triple("a", "p", "b"), triple("a", "p", "c")})

	other := New()
	other.AddAll([]export.Triple{triple("a", "p", "c"), triple("d", "p", "e")})

	assert.Equal(t, 1, base.Merge(other))
	assert.Equal(t, 3, base.Len())
	assert.Equal(t, 0, base.Merge(other), "merging twice adds nothing")
	assert.Equal(t, 0, base.Merge(base))
	assert.Equal(t, 0, base.Merge(nil))
}

func TestGraph_TriplesSorted(t *testing.T) {
	g := New()
	g.AddAll([]export.Triple{triple("c", "p", "x"), triple("a", "q", "x"), triple("a", "p", "x")})

	got := g.Triples()
	require.Len(t, got, 3)
	assert.Equal(t, "https://x/a", got[0].Subject)
	assert.Equal(t, "https://x/p", got[0].Predicate)
	assert.Equal(t, "https://x/q", got[1].Predicate)
	assert.Equal(t, "https://x/c", got[2].Subject)
}

func TestGraph_Match(t *testing.T) {
	g := New()
	g.AddAll([]export.Triple{triple("a", "p", "b"), triple("a", "q", "b"), triple("c", "p", "b")})

	assert.Len(t, g.Match("https://x/a", "", export.Term{}), 2)
	assert.Len(t, g.Match("", "https://x/p", export.Term{}), 2)
	assert.Len(t, g.Match("", "", export.IRI("https://x/b")), 3)
	assert.Empty(t, g.Match("", "", export.Literal("https://x/b")))
}

func TestBuffer_FlushTo(t *testing.T) {
	g := New()
	b := NewBuffer()
	b.Add(triple("a", "p", "b"))
	b.Emit("https://x/a", "https://x/p", export.IRI("https://x/b"))
	assert.Equal(t, 2, b.Len())

	assert.Equal(t, 1, b.FlushTo(g))
	assert.Equal(t, 0, b.Len())
	assert.Equal(t, 1, g.Len())
}

func TestLoad_Missing(t *testing.T) {
	g, err := Load(filepath.Join(t.TempDir(), "none.nt"))
	require.NoError(t, err)
	assert.Equal(t, 0, g.Len())
}

func TestSaveLoad_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "graph.nt")

	g := New()
	g.AddAll([]export.Triple{
		triple("a", "p", "b"),
		export.T("https://x/a", "https://x/label", export.Literal("multi\nline")),
		export.T("https://x/a", "https://x/n", export.Int(7)),
	})
	require.NoError(t, Save(g, path))

	first, err := os.ReadFile(path)
	require.NoError(t, err)

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, g.Len(), loaded.Len())

	// merging the same content again does not grow the graph
	assert.Equal(t, 0, loaded.Merge(g))
	require.NoError(t, Save(loaded, path))

	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files are left behind")
}

func TestLoad_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.nt")
	require.NoError(t, os.WriteFile(path, []byte("<a> <b> .\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	var pe *export.ParseError
	assert.ErrorAs(t, err, &pe)
	assert.Equal(t, 1, pe.Line)
}
