package treesitter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeName(t *testing.T) {
	tests := map[string]string{
		": Foo":           "Foo",
		"-> Vec<Item>":    "Vec",
		"&mut Buffer":     "Buffer",
		"pkg.Foo[]":       "pkg.Foo",
		"Map<K, V>":       "Map",
		"Option<Box<T>>":  "Option",
		"Foo?":            "Foo",
		"dyn Display":     "Display",
		"":                "",
		"  Bar  ":         "Bar",
		"List[Item]":      "List",
		"impl Iterator":   "Iterator",
		"Result<(), Err>": "Result",
		"'App'":           "App",
		`-> "Node"`:       "Node",
		`"List[Item]"`:    "List",
		`'Half"`:          `'Half"`,
	}
	for in, want := range tests {
		assert.Equal(t, want, typeName(in), in)
	}
}

func TestCalleeName(t *testing.T) {
	tests := map[string]string{
		"helper":              "helper",
		"self.save":           "save",
		"a.b().c":             "c",
		"std::mem::swap":      "swap",
		"Vec::<u8>::new":      "new",
		"parse::<i32>":        "parse",
		"Foo<Bar>":            "Foo",
		"console.log":         "log",
		"this.#emit":          "emit",
		"obj.method":          "method",
		"pkg.sub.Constructor": "Constructor",
	}
	for in, want := range tests {
		assert.Equal(t, want, calleeName(in), in)
	}
}

func TestLooksLikeInterface(t *testing.T) {
	for _, name := range []string{"IRepository", "StoreInterface", "ShapeProtocol", "BaseABC", "Comparable", "pkg.Serializable"} {
		assert.True(t, looksLikeInterface(name), name)
	}
	for _, name := range []string{"Base", "ID", "Interface", "Protocol", "ABC", "Table", "Image", "able"} {
		assert.False(t, looksLikeInterface(name), name)
	}
}

func TestIsEnumBase(t *testing.T) {
	assert.True(t, isEnumBase("Enum"))
	assert.True(t, isEnumBase("IntFlag"))
	assert.True(t, isEnumBase("enum.Enum"))
	assert.False(t, isEnumBase("Enumerable"))
}

func TestCleanComment(t *testing.T) {
	tests := map[string]string{
		"# note":                      "note",
		"// line":                     "line",
		"/// doc line":                "doc line",
		"/**\n * Doc.\n * More.\n */": "Doc.\nMore.",
		`"""Docstring."""`:            "Docstring.",
		"/* block */":                 "block",
	}
	for in, want := range tests {
		assert.Equal(t, want, cleanComment(in), in)
	}
}

func TestAccessOf(t *testing.T) {
	assert.Equal(t, "public", accessOf("public class A {", "A"))
	assert.Equal(t, "public", accessOf("pub(crate) fn f()", "f"))
	assert.Equal(t, "protected", accessOf("protected void f()", "f"))
	assert.Equal(t, "private", accessOf("private int x;", "x"))
	assert.Equal(t, "private", accessOf("#count = 0", "#count"))
	assert.Equal(t, "", accessOf("def publish(self):", "publish"))
}

func TestHasWord(t *testing.T) {
	assert.True(t, hasWord("async def f():", "async"))
	assert.False(t, hasWord("def asyncio_run():", "async"))
	assert.True(t, hasWord("public static final int X", "final"))
}
