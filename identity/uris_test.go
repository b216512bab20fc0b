package identity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestURIs(t *testing.T) {
	u := NewURIs("https://semcode.dev/entity")

	assert.Equal(t, "https://semcode.dev/entity/repository/my%20repo", u.Repository("my repo"))
	assert.Equal(t, "https://semcode.dev/entity/file/abc", u.File("abc"))
	assert.Equal(t, "https://semcode.dev/entity/content/abc", u.Content("abc"))
	assert.Equal(t, "https://semcode.dev/entity/framework/abc", u.Framework("abc"))
	assert.Equal(t, "https://semcode.dev/entity/package/abc", u.Package("abc"))
	assert.Equal(t, "https://semcode.dev/entity/type/abc", u.Type("abc"))
}

func TestConstruct(t *testing.T) {
	file := "https://semcode.dev/entity/file/abc"

	uri := Construct(file, "FunctionDefinition", QualifiedName("Foo", "bar"), 0)
	assert.Equal(t, file+"/FunctionDefinition/Foo.bar", uri)
	assert.True(t, strings.HasPrefix(uri, file+"/"))

	call := Construct(file, "FunctionCallSite", "print", 12)
	assert.Equal(t, file+"/FunctionCallSite/print@L12", call)

	odd := Construct(file, "VariableDeclaration", "a b/c", 0)
	assert.Equal(t, file+"/VariableDeclaration/a%20b%2Fc", odd)
}

func TestSanitize_LongNames(t *testing.T) {
	long := strings.Repeat("x", 300)
	other := strings.Repeat("x", 299) + "y"

	a := Sanitize(long)
	b := Sanitize(other)

	assert.LessOrEqual(t, len(a), MaxNameSegment)
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, Sanitize(long))

	escaped := Sanitize(strings.Repeat("é", 100))
	assert.LessOrEqual(t, len(escaped), MaxNameSegment)
	tilde := strings.IndexByte(escaped, '~')
	assert.Greater(t, tilde, 0)
	prefix := escaped[:tilde]
	assert.Equal(t, 0, len(prefix)%3, "percent escapes are kept whole")
}
