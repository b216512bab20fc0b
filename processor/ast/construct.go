// Package ast defines the language-neutral construct model produced by the
// parse adapters, and the dispatcher that routes a file to the adapter for
// its language.
//
// A file yields one Summary: constructs grouped by Kind in discovery order,
// relation lists that do not belong to a single construct, and the
// structured errors met while reading and parsing. Adapters never return
// errors; they record them on the Summary and keep whatever they extracted.
package ast

import "strings"

// Kind is a construct-kind tag. The values double as ontology class names.
type Kind string

const (
	KindClass     Kind = "ClassDefinition"
	KindFunction  Kind = "FunctionDefinition"
	KindParameter Kind = "Parameter"
	KindVariable  Kind = "VariableDeclaration"
	KindImport    Kind = "ImportDeclaration"
	KindAttribute Kind = "AttributeDeclaration"
	KindEnum      Kind = "EnumDefinition"
	KindInterface Kind = "InterfaceDefinition"
	KindStruct    Kind = "StructDefinition"
	KindTrait     Kind = "TraitDefinition"
	KindPackage   Kind = "PackageDeclaration"
	KindCallSite  Kind = "FunctionCallSite"
	KindComment   Kind = "CodeComment"
)

// Kinds lists every kind in canonical order. Summaries iterate in this order.
var Kinds = []Kind{
	KindPackage,
	KindImport,
	KindClass,
	KindInterface,
	KindStruct,
	KindTrait,
	KindEnum,
	KindAttribute,
	KindFunction,
	KindParameter,
	KindVariable,
	KindCallSite,
	KindComment,
}

var kindLabels = map[Kind]string{
	KindClass:     "Class",
	KindFunction:  "Function",
	KindParameter: "Parameter",
	KindVariable:  "Variable",
	KindImport:    "Import",
	KindAttribute: "Attribute",
	KindEnum:      "Enum",
	KindInterface: "Interface",
	KindStruct:    "Struct",
	KindTrait:     "Trait",
	KindPackage:   "Package",
	KindCallSite:  "Call",
	KindComment:   "Comment",
}

// ParseKind returns the Kind named s.
func ParseKind(s string) (Kind, bool) {
	k := Kind(s)
	_, ok := kindLabels[k]
	return k, ok
}

// Label is the short human label used in rdfs:label values.
func (k Kind) Label() string {
	if l, ok := kindLabels[k]; ok {
		return l
	}
	return string(k)
}

// IsType reports whether constructs of this kind define a type.
func (k Kind) IsType() bool {
	switch k {
	case KindClass, KindEnum, KindInterface, KindStruct, KindTrait:
		return true
	}
	return false
}

// Base holds the fields common to every construct.
type Base struct {
	Name       string
	Raw        string // source text of the construct
	StartLine  int    // 1-based
	EndLine    int    // 1-based, inclusive
	Decorators []string
	Parent     string // qualified name of the enclosing construct
	ParentKind Kind
	Access     string // explicit access modifier when the language has one
}

// QualifiedName is Parent.Name, or Name at top level.
func (b *Base) QualifiedName() string {
	return Qualify(b.Parent, b.Name)
}

// Qualify joins a parent qualified name and a child name.
func Qualify(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

// Header returns the first line of the raw source.
func (b *Base) Header() string {
	if i := strings.IndexByte(b.Raw, '\n'); i >= 0 {
		return b.Raw[:i]
	}
	return b.Raw
}

// Construct is implemented by every concrete construct type.
type Construct interface {
	Kind() Kind
	Common() *Base
}

// Class is a class definition.
type Class struct {
	Base
	Bases      []string // extended types
	Implements []string
	Abstract   bool
}

// Interface is an interface or protocol definition.
type Interface struct {
	Base
	Bases []string // extended interfaces
}

// Struct is a record type without inheritance.
type Struct struct {
	Base
	Implements []string
}

// Trait is a trait definition.
type Trait struct {
	Base
	Bases []string // supertraits
}

// Enum is an enumeration.
type Enum struct {
	Base
	Bases   []string
	Members []string
}

// Function is a free function, method, constructor or lambda bound to a
// name.
type Function struct {
	Base
	Params     []string // parameter names in order
	ReturnType string
	Async      bool
	Static     bool
}

// Parameter is a formal parameter of a function.
type Parameter struct {
	Base
	DeclaredType string
	Default      string
	Position     int
}

// Variable is a variable or constant declaration.
type Variable struct {
	Base
	DeclaredType string
	Constant     bool
}

// Attribute is a field or property of a type.
type Attribute struct {
	Base
	DeclaredType string
	Static       bool
}

// Import is an import declaration. Name is the imported module.
type Import struct {
	Base
	Module string
	Alias  string
	Names  []string // imported symbols, if any
}

// Package is a package or module declaration.
type Package struct {
	Base
	ImportPath string
}

// CallSite is one call expression. Name is the callee's final identifier and
// Callee the full callee text.
type CallSite struct {
	Base
	Callee string
}

// Comment is a source comment.
type Comment struct {
	Base
	Text string
	Doc  bool
}

func (*Class) Kind() Kind     { return KindClass }
func (*Interface) Kind() Kind { return KindInterface }
func (*Struct) Kind() Kind    { return KindStruct }
func (*Trait) Kind() Kind     { return KindTrait }
func (*Enum) Kind() Kind      { return KindEnum }
func (*Function) Kind() Kind  { return KindFunction }
func (*Parameter) Kind() Kind { return KindParameter }
func (*Variable) Kind() Kind  { return KindVariable }
func (*Attribute) Kind() Kind { return KindAttribute }
func (*Import) Kind() Kind    { return KindImport }
func (*Package) Kind() Kind   { return KindPackage }
func (*CallSite) Kind() Kind  { return KindCallSite }
func (*Comment) Kind() Kind   { return KindComment }

func (c *Class) Common() *Base     { return &c.Base }
func (c *Interface) Common() *Base { return &c.Base }
func (c *Struct) Common() *Base    { return &c.Base }
func (c *Trait) Common() *Base     { return &c.Base }
func (c *Enum) Common() *Base      { return &c.Base }
func (c *Function) Common() *Base  { return &c.Base }
func (c *Parameter) Common() *Base { return &c.Base }
func (c *Variable) Common() *Base  { return &c.Base }
func (c *Attribute) Common() *Base { return &c.Base }
func (c *Import) Common() *Base    { return &c.Base }
func (c *Package) Common() *Base   { return &c.Base }
func (c *CallSite) Common() *Base  { return &c.Base }
func (c *Comment) Common() *Base   { return &c.Base }

// New returns an empty construct of the given kind, or nil for an unknown
// kind.
func New(k Kind) Construct {
	switch k {
	case KindClass:
		return &Class{}
	case KindInterface:
		return &Interface{}
	case KindStruct:
		return &Struct{}
	case KindTrait:
		return &Trait{}
	case KindEnum:
		return &Enum{}
	case KindFunction:
		return &Function{}
	case KindParameter:
		return &Parameter{}
	case KindVariable:
		return &Variable{}
	case KindAttribute:
		return &Attribute{}
	case KindImport:
		return &Import{}
	case KindPackage:
		return &Package{}
	case KindCallSite:
		return &CallSite{}
	case KindComment:
		return &Comment{}
	}
	return nil
}
