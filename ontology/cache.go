package ontology

import (
	"fmt"
	"sync"

	"github.com/c360studio/semcode/vocabulary/code"
)

// ClassCache memoizes class-name lookups with the generic fallbacks applied.
// Lookups never fail: a missing term resolves to the nearest generic class
// and finally to rdfs:Resource.
type ClassCache struct {
	onto *Ontology

	mu       sync.RWMutex
	resolved map[string]string
}

// NewClassCache creates a cache over o. A nil ontology is an error since
// nothing could be resolved.
func NewClassCache(o *Ontology) (*ClassCache, error) {
	if o == nil {
		return nil, fmt.Errorf("class cache: %w", ErrOntologyMissing)
	}
	return &ClassCache{onto: o, resolved: make(map[string]string)}, nil
}

// Construct resolves a construct kind; falls back to CodeConstruct.
func (c *ClassCache) Construct(name string) string {
	return c.Resolve(name, code.ClassCodeConstruct)
}

// File resolves a file class; falls back to DigitalFile.
func (c *ClassCache) File(name string) string {
	return c.Resolve(name, code.ClassDigitalFile)
}

// Content resolves a content class; falls back to InformationContentEntity.
func (c *ClassCache) Content(name string) string {
	return c.Resolve(name, code.ClassInformationContentEntity)
}

// Resolve returns the IRI of the first of name, fallbacks... that the
// ontology declares, or rdfs:Resource.
func (c *ClassCache) Resolve(name string, fallbacks ...string) string {
	key := name
	for _, f := range fallbacks {
		key += "\x00" + f
	}

	c.mu.RLock()
	iri, ok := c.resolved[key]
	c.mu.RUnlock()
	if ok {
		return iri
	}

	iri = code.RDFSResource
	for _, n := range append([]string{name}, fallbacks...) {
		if n == "" {
			continue
		}
		if found, ok := c.onto.ResolveClass(n); ok {
			iri = found
			break
		}
	}

	c.mu.Lock()
	c.resolved[key] = iri
	c.mu.Unlock()
	return iri
}

// Ontology returns the underlying ontology.
func (c *ClassCache) Ontology() *Ontology {
	return c.onto
}

// PropertyCache memoizes property-name lookups with fallbacks applied.
type PropertyCache struct {
	onto *Ontology

	mu       sync.RWMutex
	resolved map[string]string
}

// NewPropertyCache creates a cache over o.
func NewPropertyCache(o *Ontology) (*PropertyCache, error) {
	if o == nil {
		return nil, fmt.Errorf("property cache: %w", ErrOntologyMissing)
	}
	return &PropertyCache{onto: o, resolved: make(map[string]string)}, nil
}

// Object resolves an object property; falls back to relatedTo and then
// rdfs:seeAlso.
func (p *PropertyCache) Object(name string) string {
	return p.resolve("o\x00"+name, code.RDFSSeeAlso, name, code.PropRelatedTo)
}

// Datatype resolves a datatype property; falls back to rdfs:comment.
func (p *PropertyCache) Datatype(name string) string {
	return p.resolve("d\x00"+name, code.RDFSComment, name)
}

// RelatedTo resolves the generic relation.
func (p *PropertyCache) RelatedTo() string {
	return p.Object(code.PropRelatedTo)
}

func (p *PropertyCache) resolve(key, last string, names ...string) string {
	p.mu.RLock()
	iri, ok := p.resolved[key]
	p.mu.RUnlock()
	if ok {
		return iri
	}

	iri = last
	for _, n := range names {
		if prop, ok := p.onto.ResolveProperty(n); ok {
			iri = prop.IRI
			break
		}
	}

	p.mu.Lock()
	p.resolved[key] = iri
	p.mu.Unlock()
	return iri
}

// Ontology returns the underlying ontology.
func (p *PropertyCache) Ontology() *Ontology {
	return p.onto
}
