package graph

import "github.com/c360studio/semcode/export"

// Buffer collects the triples produced for one file. It is not safe for
// concurrent use; each worker owns its buffer and the pipeline merges
// buffers into the Graph in file order.
type Buffer struct {
	triples []export.Triple
}

// NewBuffer returns an empty buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Add appends a triple.
func (b *Buffer) Add(t export.Triple) {
	b.triples = append(b.triples, t)
}

// Emit appends (subject, predicate, object).
func (b *Buffer) Emit(subject, predicate string, object export.Term) {
	b.triples = append(b.triples, export.Triple{Subject: subject, Predicate: predicate, Object: object})
}

// Len returns the number of buffered triples, duplicates included.
func (b *Buffer) Len() int {
	return len(b.triples)
}

// Triples returns the buffered triples in insertion order.
func (b *Buffer) Triples() []export.Triple {
	return b.triples
}

// Reset empties the buffer.
func (b *Buffer) Reset() {
	b.triples = b.triples[:0]
}

// FlushTo adds the buffered triples to g, empties the buffer and returns how
// many triples were new to g.
func (b *Buffer) FlushTo(g *Graph) int {
	n := g.AddAll(b.triples)
	b.Reset()
	return n
}
