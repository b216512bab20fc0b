// Package writer turns construct summaries into ontology-constrained triples.
//
// Entity writers mint one IRI per construct under its file's IRI and emit the
// construct's type, label and attributes. Relationship writers then link those
// entities through the name maps the entity writers return. Every relation is
// checked against the ontology's domain and range before it is written; a
// relation the ontology does not admit is downgraded to the generic relatedTo
// relation instead of being dropped.
package writer

import (
	"log/slog"

	"github.com/c360studio/semcode/export"
	"github.com/c360studio/semcode/ontology"
	"github.com/c360studio/semcode/vocabulary/code"
)

// Sink receives emitted triples. graph.Buffer satisfies it; the pipeline uses
// one buffer per file.
type Sink interface {
	Emit(subject, predicate string, object export.Term)
}

// Emitter writes triples for one file into a sink, checking relations
// against the ontology. It remembers the class of every entity it typed or was
// told about so that relations can be checked. Not safe for concurrent use.
type Emitter struct {
	sink    Sink
	onto    *ontology.Ontology
	classes *ontology.ClassCache
	props   *ontology.PropertyCache
	logger  *slog.Logger

	known     map[string]string // entity IRI → class IRI
	emitted   int
	fallbacks int
	dropped   int
}

// NewEmitter creates an emitter writing into sink.
func NewEmitter(sink Sink, classes *ontology.ClassCache, props *ontology.PropertyCache, logger *slog.Logger) *Emitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Emitter{
		sink:    sink,
		onto:    classes.Ontology(),
		classes: classes,
		props:   props,
		logger:  logger,
		known:   make(map[string]string),
	}
}

// Classes returns the class cache.
func (e *Emitter) Classes() *ontology.ClassCache { return e.classes }

// Properties returns the property cache.
func (e *Emitter) Properties() *ontology.PropertyCache { return e.props }

// Entity emits the rdf:type triple for uri and records its class.
func (e *Emitter) Entity(uri, classIRI string) {
	e.known[uri] = classIRI
	e.emit(uri, code.RDFType, export.IRI(classIRI))
}

// Declare records the class of an entity typed elsewhere (another file or
// stage) without emitting anything.
func (e *Emitter) Declare(uri, classIRI string) {
	if _, ok := e.known[uri]; !ok {
		e.known[uri] = classIRI
	}
}

// ClassOf returns the recorded class of uri, or rdfs:Resource.
func (e *Emitter) ClassOf(uri string) string {
	if c, ok := e.known[uri]; ok {
		return c
	}
	return code.RDFSResource
}

// Label emits rdfs:label.
func (e *Emitter) Label(uri, text string) {
	if text == "" {
		return
	}
	e.emit(uri, code.RDFSLabel, export.Literal(text))
}

// Literal emits a datatype property value. A property the ontology declares
// is only written for subjects in its domain; a property the ontology lacks
// resolves to the generic fallback and is always written.
func (e *Emitter) Literal(uri, propName string, value export.Term) {
	prop := e.props.Datatype(propName)
	if _, declared := e.onto.PropertyByIRI(prop); declared && !e.onto.Accepts(prop, e.ClassOf(uri), "") {
		e.dropped++
		e.logger.Debug("Literal outside property domain", "subject", uri, "property", propName)
		return
	}
	e.emit(uri, prop, value)
}

// Relate emits (subject, rel, object) and, when the property declares one,
// the inverse triple (object, inverse, subject). A relation the ontology does
// not admit for the two entities' classes is written as relatedTo.
func (e *Emitter) Relate(subject, propName, object string) {
	if subject == "" || object == "" {
		return
	}
	prop := e.props.Object(propName)
	if _, declared := e.onto.PropertyByIRI(prop); declared && !e.onto.Accepts(prop, e.ClassOf(subject), e.ClassOf(object)) {
		e.fallbacks++
		e.logger.Debug("Relation not admitted, using generic relation",
			"subject", subject, "property", propName, "object", object)
		prop = e.props.RelatedTo()
	}

	e.emit(subject, prop, export.IRI(object))
	if inv, ok := e.onto.Inverse(prop); ok {
		e.emit(object, inv, export.IRI(subject))
	}
}

// Emitted returns the number of triples written, duplicates included.
func (e *Emitter) Emitted() int { return e.emitted }

// Fallbacks returns how many relations were downgraded to relatedTo.
func (e *Emitter) Fallbacks() int { return e.fallbacks }

// Dropped returns how many literals fell outside their property's domain.
func (e *Emitter) Dropped() int { return e.dropped }

func (e *Emitter) emit(subject, predicate string, object export.Term) {
	e.emitted++
	e.sink.Emit(subject, predicate, object)
}
