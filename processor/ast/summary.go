package ast

// TypeRole says how a construct uses a type.
type TypeRole string

const (
	RoleDeclared TypeRole = "declared" // variable, attribute or parameter type
	RoleReturn   TypeRole = "return"   // function return type
)

// TypeUsage records that From (a qualified name of kind FromKind) uses the
// named type.
type TypeUsage struct {
	From     string
	FromKind Kind
	Type     string
	Role     TypeRole
}

// Reference links a construct to another construct by qualified name.
type Reference struct {
	From     string
	FromKind Kind
	To       string
	ToKind   Kind
}

// Summary is everything extracted from one file.
type Summary struct {
	File     string // repository-relative path
	Language string

	constructs map[Kind][]Construct

	TypeUsages []TypeUsage
	Accesses   []Reference // function → attribute it reads or writes
	Usages     []Reference // function → package-level declaration it uses
	Embeds     []Reference // type → embedded type name (ToKind empty)

	Errors []FileError
}

// NewSummary returns an empty summary for file.
func NewSummary(file, language string) *Summary {
	return &Summary{
		File:       file,
		Language:   language,
		constructs: make(map[Kind][]Construct),
	}
}

// Add appends a construct under its kind.
func (s *Summary) Add(c Construct) {
	s.constructs[c.Kind()] = append(s.constructs[c.Kind()], c)
}

// Of returns the constructs of kind k in the order they were added.
func (s *Summary) Of(k Kind) []Construct {
	return s.constructs[k]
}

// Each calls fn for every construct in canonical kind order.
func (s *Summary) Each(fn func(Construct)) {
	for _, k := range Kinds {
		for _, c := range s.constructs[k] {
			fn(c)
		}
	}
}

// Count returns the number of constructs of all kinds.
func (s *Summary) Count() int {
	n := 0
	for _, cs := range s.constructs {
		n += len(cs)
	}
	return n
}

// Counts returns the number of constructs per kind.
func (s *Summary) Counts() map[Kind]int {
	out := make(map[Kind]int, len(s.constructs))
	for k, cs := range s.constructs {
		if len(cs) > 0 {
			out[k] = len(cs)
		}
	}
	return out
}

// Find returns the first construct of kind k with the given qualified name.
func (s *Summary) Find(k Kind, qualified string) (Construct, bool) {
	for _, c := range s.constructs[k] {
		if c.Common().QualifiedName() == qualified {
			return c, true
		}
	}
	return nil, false
}

// FindType returns the first type-defining construct with the given
// qualified name.
func (s *Summary) FindType(qualified string) (Construct, bool) {
	for _, k := range Kinds {
		if !k.IsType() {
			continue
		}
		if c, ok := s.Find(k, qualified); ok {
			return c, true
		}
	}
	return nil, false
}

// Fail records an error against the file.
func (s *Summary) Fail(op Operation, err error) {
	s.Errors = append(s.Errors, FileError{File: s.File, Operation: op, Cause: err})
}

// Failed reports whether any error was recorded.
func (s *Summary) Failed() bool {
	return len(s.Errors) > 0
}
