package graph

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/c360studio/semcode/export"
)

// Load reads a graph from an N-Triples file. A missing file yields an empty
// graph.
func Load(path string) (*Graph, error) {
	g := New()
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return g, nil
		}
		return nil, fmt.Errorf("open graph: %w", err)
	}
	defer f.Close()

	triples, err := export.ReadNTriples(f)
	if err != nil {
		return nil, fmt.Errorf("load graph %s: %w", path, err)
	}
	g.AddAll(triples)
	return g, nil
}

// Save writes the graph as sorted N-Triples. The file is written to a
// temporary name in the destination directory and renamed into place, so a
// failed save leaves any previous file intact.
func Save(g *Graph, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if err := export.WriteNTriples(tmp, g.Triples()); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("write graph: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("sync graph: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close graph: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("replace graph: %w", err)
	}
	return nil
}
