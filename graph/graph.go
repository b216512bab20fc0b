// Package graph holds the accumulated knowledge graph of a run and persists
// it as N-Triples.
//
// A Graph is a set: adding a triple that is already present is a no-op, and
// merging two graphs is set union. Nothing is ever retracted.
package graph

import (
	"sync"

	"github.com/c360studio/semcode/export"
)

// Graph is a concurrency-safe set of triples.
type Graph struct {
	mu      sync.RWMutex
	triples map[string]export.Triple
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{triples: make(map[string]export.Triple)}
}

// Add inserts a triple. It reports whether the triple was new.
func (g *Graph) Add(t export.Triple) bool {
	key := t.Key()
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.triples[key]; ok {
		return false
	}
	g.triples[key] = t
	return true
}

// AddAll inserts triples and returns how many were new.
func (g *Graph) AddAll(ts []export.Triple) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	added := 0
	for _, t := range ts {
		key := t.Key()
		if _, ok := g.triples[key]; ok {
			continue
		}
		g.triples[key] = t
		added++
	}
	return added
}

// Merge adds every triple of other and returns how many were new.
func (g *Graph) Merge(other *Graph) int {
	if other == nil || other == g {
		return 0
	}
	return g.AddAll(other.Triples())
}

// Has reports whether the triple is present.
func (g *Graph) Has(t export.Triple) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.triples[t.Key()]
	return ok
}

// Len returns the number of triples.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.triples)
}

// Triples returns a sorted snapshot of the graph.
func (g *Graph) Triples() []export.Triple {
	g.mu.RLock()
	out := make([]export.Triple, 0, len(g.triples))
	for _, t := range g.triples {
		out = append(out, t)
	}
	g.mu.RUnlock()
	export.Sort(out)
	return out
}

// Match returns the sorted triples matching the non-empty components of the
// pattern. An empty subject or predicate is a wildcard; a zero object value
// is a wildcard.
func (g *Graph) Match(subject, predicate string, object export.Term) []export.Triple {
	var out []export.Triple
	g.mu.RLock()
	for _, t := range g.triples {
		if subject != "" && t.Subject != subject {
			continue
		}
		if predicate != "" && t.Predicate != predicate {
			continue
		}
		if object.Value != "" && t.Object != object {
			continue
		}
		out = append(out, t)
	}
	g.mu.RUnlock()
	export.Sort(out)
	return out
}
