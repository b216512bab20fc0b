// Package ontology loads the class and property vocabulary the graph writers
// are constrained by.
//
// An ontology file is YAML with a namespace, a list of classes (each with
// optional parent classes) and a list of properties (object or datatype, with
// optional domain, range and inverse). Terms are addressed by local name; the
// writers never hard-code IRIs.
package ontology

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/c360studio/semcode/vocabulary/code"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultOntology []byte

var (
	// ErrOntologyMissing is returned when the configured ontology file does
	// not exist. Callers treat it as fatal.
	ErrOntologyMissing = errors.New("ontology file not found")

	// ErrInvalidOntology is returned when the ontology document references
	// undeclared terms or declares a term twice.
	ErrInvalidOntology = errors.New("invalid ontology")
)

// PropertyKind distinguishes relations between entities from literal-valued
// attributes.
type PropertyKind string

const (
	ObjectProperty   PropertyKind = "object"
	DatatypeProperty PropertyKind = "datatype"
)

// Class is a resolved ontology class.
type Class struct {
	Name    string
	IRI     string
	Parents []string // parent class IRIs
}

// Property is a resolved ontology property.
type Property struct {
	Name    string
	IRI     string
	Kind    PropertyKind
	Domain  []string // class IRIs; empty means unconstrained
	Range   []string // class IRIs; empty means unconstrained
	Inverse string   // inverse property IRI, empty if none
}

type document struct {
	Namespace  string        `yaml:"namespace"`
	Classes    []classDoc    `yaml:"classes"`
	Properties []propertyDoc `yaml:"properties"`
}

type classDoc struct {
	Name    string   `yaml:"name"`
	IRI     string   `yaml:"iri"`
	Parents []string `yaml:"parents"`
}

type propertyDoc struct {
	Name      string   `yaml:"name"`
	IRI       string   `yaml:"iri"`
	Kind      string   `yaml:"kind"`
	Domain    []string `yaml:"domain"`
	Range     []string `yaml:"range"`
	Inverse   string   `yaml:"inverse"`
	Symmetric bool     `yaml:"symmetric"`
}

// Ontology is an immutable, name-indexed view of an ontology document. It is
// safe for concurrent use.
type Ontology struct {
	Namespace string

	classes    map[string]*Class
	classByIRI map[string]*Class
	props      map[string]*Property
	propByIRI  map[string]*Property
}

// Load reads an ontology from a YAML file.
func Load(path string) (*Ontology, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrOntologyMissing, path)
		}
		return nil, fmt.Errorf("read ontology: %w", err)
	}
	o, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return o, nil
}

// Default returns the embedded default ontology.
func Default() (*Ontology, error) {
	return Parse(defaultOntology)
}

// Parse builds an Ontology from YAML bytes.
func Parse(data []byte) (*Ontology, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse ontology: %w", err)
	}
	if doc.Namespace == "" {
		return nil, fmt.Errorf("%w: namespace is required", ErrInvalidOntology)
	}

	o := &Ontology{
		Namespace:  doc.Namespace,
		classes:    make(map[string]*Class, len(doc.Classes)),
		classByIRI: make(map[string]*Class, len(doc.Classes)),
		props:      make(map[string]*Property, len(doc.Properties)),
		propByIRI:  make(map[string]*Property, len(doc.Properties)),
	}

	for _, cd := range doc.Classes {
		if cd.Name == "" {
			return nil, fmt.Errorf("%w: class without name", ErrInvalidOntology)
		}
		if _, dup := o.classes[cd.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate class %q", ErrInvalidOntology, cd.Name)
		}
		iri := cd.IRI
		if iri == "" {
			iri = doc.Namespace + cd.Name
		}
		c := &Class{Name: cd.Name, IRI: iri}
		o.classes[cd.Name] = c
		o.classByIRI[iri] = c
	}
	for _, cd := range doc.Classes {
		c := o.classes[cd.Name]
		for _, p := range cd.Parents {
			parent, ok := o.classes[p]
			if !ok {
				return nil, fmt.Errorf("%w: class %q has unknown parent %q", ErrInvalidOntology, cd.Name, p)
			}
			c.Parents = append(c.Parents, parent.IRI)
		}
	}

	for _, pd := range doc.Properties {
		if pd.Name == "" {
			return nil, fmt.Errorf("%w: property without name", ErrInvalidOntology)
		}
		if _, dup := o.props[pd.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate property %q", ErrInvalidOntology, pd.Name)
		}
		kind := PropertyKind(pd.Kind)
		switch kind {
		case "":
			kind = ObjectProperty
		case ObjectProperty, DatatypeProperty:
		default:
			return nil, fmt.Errorf("%w: property %q has unknown kind %q", ErrInvalidOntology, pd.Name, pd.Kind)
		}
		iri := pd.IRI
		if iri == "" {
			iri = doc.Namespace + pd.Name
		}
		domain, err := o.classIRIs(pd.Name, "domain", pd.Domain)
		if err != nil {
			return nil, err
		}
		rng, err := o.classIRIs(pd.Name, "range", pd.Range)
		if err != nil {
			return nil, err
		}
		p := &Property{Name: pd.Name, IRI: iri, Kind: kind, Domain: domain, Range: rng}
		if pd.Symmetric {
			p.Inverse = iri
		}
		o.props[pd.Name] = p
		o.propByIRI[iri] = p
	}

	// Inverses are declared on one side; close them so both directions
	// resolve.
	for _, pd := range doc.Properties {
		if pd.Inverse == "" {
			continue
		}
		p := o.props[pd.Name]
		inv, ok := o.props[pd.Inverse]
		if !ok {
			return nil, fmt.Errorf("%w: property %q has unknown inverse %q", ErrInvalidOntology, pd.Name, pd.Inverse)
		}
		p.Inverse = inv.IRI
		if inv.Inverse == "" {
			inv.Inverse = p.IRI
		}
	}

	return o, nil
}

func (o *Ontology) classIRIs(prop, field string, names []string) ([]string, error) {
	if len(names) == 0 {
		return nil, nil
	}
	out := make([]string, 0, len(names))
	for _, n := range names {
		c, ok := o.classes[n]
		if !ok {
			return nil, fmt.Errorf("%w: property %q %s references unknown class %q", ErrInvalidOntology, prop, field, n)
		}
		out = append(out, c.IRI)
	}
	return out, nil
}

// ResolveClass returns the IRI of the class with the given local name.
func (o *Ontology) ResolveClass(name string) (string, bool) {
	c, ok := o.classes[name]
	if !ok {
		return "", false
	}
	return c.IRI, true
}

// ResolveProperty returns the property with the given local name.
func (o *Ontology) ResolveProperty(name string) (*Property, bool) {
	p, ok := o.props[name]
	return p, ok
}

// PropertyByIRI returns the property with the given IRI.
func (o *Ontology) PropertyByIRI(iri string) (*Property, bool) {
	p, ok := o.propByIRI[iri]
	return p, ok
}

// Inverse returns the IRI of the inverse of the given property, if any.
// Symmetric properties are their own inverse.
func (o *Ontology) Inverse(propIRI string) (string, bool) {
	p, ok := o.propByIRI[propIRI]
	if !ok || p.Inverse == "" {
		return "", false
	}
	return p.Inverse, true
}

// SuperclassChain returns all ancestors of a class in breadth-first order,
// nearest first, without the class itself. Unknown classes have no
// ancestors.
func (o *Ontology) SuperclassChain(classIRI string) []string {
	start, ok := o.classByIRI[classIRI]
	if !ok {
		return nil
	}
	var chain []string
	seen := map[string]bool{classIRI: true}
	queue := append([]string(nil), start.Parents...)
	for len(queue) > 0 {
		iri := queue[0]
		queue = queue[1:]
		if seen[iri] {
			continue
		}
		seen[iri] = true
		chain = append(chain, iri)
		if c, ok := o.classByIRI[iri]; ok {
			queue = append(queue, c.Parents...)
		}
	}
	return chain
}

// IsSubclassOf reports whether sub equals super or has it as an ancestor.
// Every class is a subclass of rdfs:Resource.
func (o *Ontology) IsSubclassOf(sub, super string) bool {
	if sub == super || super == code.RDFSResource {
		return true
	}
	for _, a := range o.SuperclassChain(sub) {
		if a == super {
			return true
		}
	}
	return false
}

// Accepts reports whether a triple (subject, prop, object) is admissible for
// subjects of subjectClass and objects of objectClass. The object class is
// ignored for datatype properties. Unknown properties are never accepted.
func (o *Ontology) Accepts(propIRI, subjectClass, objectClass string) bool {
	p, ok := o.propByIRI[propIRI]
	if !ok {
		return false
	}
	if !o.admits(p.Domain, subjectClass) {
		return false
	}
	if p.Kind == DatatypeProperty {
		return true
	}
	return o.admits(p.Range, objectClass)
}

func (o *Ontology) admits(allowed []string, class string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if o.IsSubclassOf(class, a) {
			return true
		}
	}
	return false
}

// Classes returns the local names of all classes, sorted.
func (o *Ontology) Classes() []string {
	names := make([]string, 0, len(o.classes))
	for n := range o.classes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Properties returns the local names of all properties, sorted.
func (o *Ontology) Properties() []string {
	names := make([]string, 0, len(o.props))
	for n := range o.props {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
