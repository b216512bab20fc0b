package treesitter

import (
	"sort"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// container describes a syntax node that scopes its children to a named type
// without being a construct itself, e.g. a Rust impl block.
type container struct {
	typeField  string // field holding the scoped type name
	traitField string // field holding an implemented trait, if any
}

// memberNode names the member access expression of a grammar and its
// object and property fields.
type memberNode struct {
	typ      string
	object   string
	property string
}

// languageSpec binds a language name to its grammar and query table.
type languageSpec struct {
	name       string
	grammar    func() *sitter.Language
	table      string // query table name; languages may share a table
	containers map[string]container
	builtins   map[string]bool // type names that never become type references

	member       memberNode
	receivers    map[string]bool   // self, this
	implicitSelf bool              // a bare identifier may name a field of the enclosing type
	nonRefFields map[string]string // node type → field holding a name that is not a reference
}

var languageSpecs = map[string]languageSpec{
	"python": {
		name:    "python",
		grammar: python.GetLanguage,
		table:   "python",
		builtins: set("int", "float", "str", "bytes", "bool", "None", "list", "dict",
			"set", "tuple", "object", "Any", "Optional", "List", "Dict", "Set", "Tuple",
			"Union", "Callable", "Iterable", "Iterator", "Sequence", "Mapping", "type"),
		member:       memberNode{typ: "attribute", object: "object", property: "attribute"},
		receivers:    set("self", "cls"),
		nonRefFields: map[string]string{"keyword_argument": "name"},
	},
	"java": {
		name:    "java",
		grammar: java.GetLanguage,
		table:   "java",
		builtins: set("void", "int", "long", "short", "byte", "char", "boolean",
			"float", "double", "String", "Object", "Integer", "Long", "Boolean",
			"Double", "Float", "List", "Map", "Set", "Optional"),
		member:       memberNode{typ: "field_access", object: "object", property: "field"},
		receivers:    set("this"),
		implicitSelf: true,
		nonRefFields: map[string]string{"method_invocation": "name", "variable_declarator": "name"},
	},
	"javascript": {
		name:      "javascript",
		grammar:   javascript.GetLanguage,
		table:     "javascript",
		builtins:  set(),
		member:    jsMember,
		receivers: set("this"),
	},
	"typescript": {
		name:      "typescript",
		grammar:   typescript.GetLanguage,
		table:     "typescript",
		builtins:  tsBuiltins,
		member:    jsMember,
		receivers: set("this"),
	},
	"tsx": {
		name:      "tsx",
		grammar:   tsx.GetLanguage,
		table:     "typescript",
		builtins:  tsBuiltins,
		member:    jsMember,
		receivers: set("this"),
	},
	"rust": {
		name:    "rust",
		grammar: rust.GetLanguage,
		table:   "rust",
		containers: map[string]container{
			"impl_item": {typeField: "type", traitField: "trait"},
		},
		builtins: set("i8", "i16", "i32", "i64", "i128", "isize",
			"u8", "u16", "u32", "u64", "u128", "usize",
			"f32", "f64", "bool", "char", "str", "String", "Self",
			"Vec", "Option", "Result", "Box"),
		member:    memberNode{typ: "field_expression", object: "value", property: "field"},
		receivers: set("self"),
	},
}

var jsMember = memberNode{typ: "member_expression", object: "object", property: "property"}

var tsBuiltins = set("string", "number", "boolean", "void", "any", "unknown",
	"never", "object", "null", "undefined", "bigint", "symbol",
	"Array", "Promise", "Record", "Partial", "Readonly", "Map", "Set")

// Languages returns the names of the languages with a grammar.
func Languages() []string {
	out := make([]string, 0, len(languageSpecs))
	for name := range languageSpecs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func set(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}
