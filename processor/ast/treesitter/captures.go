package treesitter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/c360studio/semcode/processor/ast"
)

// ErrUnknownCapture is returned when a query uses a capture name that does
// not map to a construct kind and field.
var ErrUnknownCapture = errors.New("unknown capture name")

// captureTags maps each construct kind to the capture tag queries use for it.
// "@class" captures the whole construct node and "@class.name" its name.
var captureTags = map[ast.Kind]string{
	ast.KindClass:     "class",
	ast.KindInterface: "interface",
	ast.KindStruct:    "struct",
	ast.KindTrait:     "trait",
	ast.KindEnum:      "enum",
	ast.KindFunction:  "function",
	ast.KindParameter: "parameter",
	ast.KindVariable:  "variable",
	ast.KindAttribute: "attribute",
	ast.KindImport:    "import",
	ast.KindPackage:   "package",
	ast.KindCallSite:  "call",
	ast.KindComment:   "comment",
}

var tagKinds = func() map[string]ast.Kind {
	m := make(map[string]ast.Kind, len(captureTags))
	for k, tag := range captureTags {
		m[tag] = k
	}
	return m
}()

// Field is the role of a sub-capture within a construct match.
type Field int

const (
	FieldNone Field = iota // the construct node itself
	FieldName
	FieldBase
	FieldImplements
	FieldDecorator
	FieldMember
	FieldType
	FieldReturn
	FieldDefault
	FieldModule
	FieldAlias
	FieldSymbol
	FieldCallee
	FieldDoc
)

var fieldNames = map[string]Field{
	"name":       FieldName,
	"base":       FieldBase,
	"implements": FieldImplements,
	"decorator":  FieldDecorator,
	"member":     FieldMember,
	"type":       FieldType,
	"return":     FieldReturn,
	"default":    FieldDefault,
	"module":     FieldModule,
	"alias":      FieldAlias,
	"symbol":     FieldSymbol,
	"callee":     FieldCallee,
	"doc":        FieldDoc,
}

// capture is a parsed capture name.
type capture struct {
	kind   ast.Kind
	field  Field
	ignore bool // helper captures used only by predicates
}

// parseCapture maps a capture name to its kind and field. Names starting with
// an underscore are predicate helpers and are ignored.
func parseCapture(name string) (capture, error) {
	if strings.HasPrefix(name, "_") {
		return capture{ignore: true}, nil
	}
	tag, field, hasField := strings.Cut(name, ".")
	kind, ok := tagKinds[tag]
	if !ok {
		return capture{}, fmt.Errorf("%w: @%s", ErrUnknownCapture, name)
	}
	if !hasField {
		return capture{kind: kind, field: FieldNone}, nil
	}
	f, ok := fieldNames[field]
	if !ok {
		return capture{}, fmt.Errorf("%w: @%s", ErrUnknownCapture, name)
	}
	return capture{kind: kind, field: f}, nil
}
