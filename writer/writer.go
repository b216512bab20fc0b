package writer

import (
	"fmt"
	"log/slog"

	"github.com/c360studio/semcode/identity"
	"github.com/c360studio/semcode/ontology"
	"github.com/c360studio/semcode/processor/ast"
	"github.com/c360studio/semcode/vocabulary/code"
)

// DefaultMaxLabelLength bounds rdfs:label values when no limit is configured.
const DefaultMaxLabelLength = 80

// Options configures a Writer.
type Options struct {
	// MaxLabelLength bounds labels; longer labels are cut at a word boundary.
	MaxLabelLength int

	// Frameworks maps a framework name to the import module prefixes that
	// identify it, e.g. "django" → ["django"].
	Frameworks map[string][]string
}

// File identifies the file a summary was extracted from and the entities
// already minted for it by the file and content stages.
type File struct {
	Repository string
	Path       string // repository-relative, slash separated
	Language   string
	URI        string // file entity
	ContentURI string // content entity
}

// Writer holds the run-scoped state entity and relationship writers share:
// the ontology caches, the registries and the IRI minter. Safe for concurrent
// use; each call writes through its own Emitter.
type Writer struct {
	classes *ontology.ClassCache
	props   *ontology.PropertyCache
	ids     *identity.Bundle
	uris    identity.URIs
	opts    Options
	logger  *slog.Logger
}

// New creates a writer. A nil ontology is fatal.
func New(o *ontology.Ontology, ids *identity.Bundle, uris identity.URIs, opts Options, logger *slog.Logger) (*Writer, error) {
	classes, err := ontology.NewClassCache(o)
	if err != nil {
		return nil, err
	}
	props, err := ontology.NewPropertyCache(o)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		return nil, fmt.Errorf("writer: nil registry bundle")
	}
	if opts.MaxLabelLength <= 0 {
		opts.MaxLabelLength = DefaultMaxLabelLength
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{
		classes: classes,
		props:   props,
		ids:     ids,
		uris:    uris,
		opts:    opts,
		logger:  logger,
	}, nil
}

// NewEmitter returns an emitter over the writer's ontology caches.
func (w *Writer) NewEmitter(sink Sink) *Emitter {
	return NewEmitter(sink, w.classes, w.props, w.logger)
}

// URIs returns the IRI minter.
func (w *Writer) URIs() identity.URIs { return w.uris }

// Registries returns the run-scoped registry bundle.
func (w *Writer) Registries() *identity.Bundle { return w.ids }

// Result summarizes one WriteFile call.
type Result struct {
	Names     *Names
	Triples   int
	Fallbacks int
}

// WriteFile writes every construct of s and then every relationship between
// them into sink.
func (w *Writer) WriteFile(sink Sink, f File, s *ast.Summary) Result {
	e := w.NewEmitter(sink)
	e.Declare(f.URI, w.classes.File(code.ClassDigitalFile))
	e.Declare(f.ContentURI, w.classes.Content(code.ClassSoftwareCode))

	names := w.WriteEntities(e, f, s)
	w.WriteRelationships(e, f, s, names)

	w.logger.Debug("Wrote file",
		"file", f.Path,
		"entities", names.Len(),
		"triples", e.Emitted(),
		"fallbacks", e.Fallbacks())
	return Result{Names: names, Triples: e.Emitted(), Fallbacks: e.Fallbacks()}
}

// WriteEntities runs every entity writer and indexes the results.
func (w *Writer) WriteEntities(e *Emitter, f File, s *ast.Summary) *Names {
	names := NewNames()
	names.Add(ast.KindPackage, w.WritePackages(e, f, s))
	names.Add(ast.KindImport, w.WriteImports(e, f, s))
	names.Add(ast.KindClass, w.WriteClasses(e, f, s))
	names.Add(ast.KindInterface, w.WriteInterfaces(e, f, s))
	names.Add(ast.KindStruct, w.WriteStructs(e, f, s))
	names.Add(ast.KindTrait, w.WriteTraits(e, f, s))
	names.Add(ast.KindEnum, w.WriteEnums(e, f, s))
	names.Add(ast.KindAttribute, w.WriteAttributes(e, f, s))
	names.Add(ast.KindFunction, w.WriteFunctions(e, f, s))
	names.Add(ast.KindParameter, w.WriteParameters(e, f, s))
	names.Add(ast.KindVariable, w.WriteVariables(e, f, s))
	names.Add(ast.KindCallSite, w.WriteCallSites(e, f, s))
	names.Add(ast.KindComment, w.WriteComments(e, f, s))
	return names
}

// WriteRelationships runs every relationship writer. It must follow
// WriteEntities for the same file.
func (w *Writer) WriteRelationships(e *Emitter, f File, s *ast.Summary, names *Names) {
	w.WriteMembership(e, names)
	w.WriteInheritance(e, f, names)
	w.WriteImplementations(e, f, names)
	w.WriteTyping(e, f, s, names)
	w.WriteCalls(e, names)
	w.WriteUsages(e, s, names)
	w.WriteAccesses(e, s, names)
	w.WriteEmbedding(e, f, s, names)
	w.WriteDocumentation(e, names)
	w.WriteFrameworks(e, f, names)
	w.WritePackageRefs(e, f, names)
	w.WriteStyling(e, f, names)
	w.WriteTesting(e, f)
}
