package treesitter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semcode/processor/ast"
)

func TestLoadQueries_BuiltIn(t *testing.T) {
	tables, err := LoadQueries("", nil)
	require.NoError(t, err)

	for _, name := range []string{"java", "javascript", "python", "rust", "typescript"} {
		table, ok := tables[name]
		require.True(t, ok, name)
		assert.NotEmpty(t, table.Queries, name)
		assert.Contains(t, table.Queries, ast.KindFunction, name)
	}
	_, ok := tables["tsx"]
	assert.False(t, ok, "tsx shares the typescript table")
}

func TestParseQueryTable_Validation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		unknown bool
	}{
		{
			name:    "unknown tag",
			yaml:    "queries:\n  ClassDefinition: \"(class_definition) @klass\"\n",
			unknown: true,
		},
		{
			name:    "unknown field",
			yaml:    "queries:\n  ClassDefinition: \"(class_definition name: (identifier) @class.title) @class\"\n",
			unknown: true,
		},
		{
			name:    "capture for another kind",
			yaml:    "queries:\n  ClassDefinition: \"(class_definition name: (identifier) @function.name) @class\"\n",
			unknown: true,
		},
		{
			name: "unknown kind key",
			yaml: "queries:\n  Widget: \"(x) @class\"\n",
		},
		{
			name: "no construct capture",
			yaml: "queries:\n  ClassDefinition: \"(class_definition name: (identifier) @class.name)\"\n",
		},
		{
			name: "bad yaml",
			yaml: "queries: [",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseQueryTable("test", []byte(tc.yaml))
			require.Error(t, err)
			assert.Equal(t, tc.unknown, errors.Is(err, ErrUnknownCapture), err.Error())
		})
	}
}

func TestParseQueryTable_HelperCapturesIgnored(t *testing.T) {
	table, err := ParseQueryTable("test", []byte(`
queries:
  AttributeDeclaration: |
    (assignment
      left: (attribute object: (identifier) @_self attribute: (identifier) @attribute.name)
      (#eq? @_self "self")) @attribute
`))
	require.NoError(t, err)
	assert.Contains(t, table.Queries, ast.KindAttribute)
}

func TestParseCapture(t *testing.T) {
	c, err := parseCapture("function.return")
	require.NoError(t, err)
	assert.Equal(t, ast.KindFunction, c.kind)
	assert.Equal(t, FieldReturn, c.field)

	c, err = parseCapture("call")
	require.NoError(t, err)
	assert.Equal(t, ast.KindCallSite, c.kind)
	assert.Equal(t, FieldNone, c.field)

	c, err = parseCapture("_tmp")
	require.NoError(t, err)
	assert.True(t, c.ignore)

	_, err = parseCapture("method")
	assert.ErrorIs(t, err, ErrUnknownCapture)
}
