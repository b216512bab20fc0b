package discovery

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveRepositories_SingleRoot(t *testing.T) {
	root := t.TempDir()

	repos, err := ResolveRepositories(root, nil, "")
	require.NoError(t, err)
	require.Len(t, repos, 1)
	assert.Equal(t, filepath.Base(root), repos[0].Name)

	repos, err = ResolveRepositories(root, nil, "named")
	require.NoError(t, err)
	assert.Equal(t, "named", repos[0].Name)
}

func TestResolveRepositories_Patterns(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"services/auth/main.go":  "",
		"services/users/main.go": "",
		"services/README.md":     "",
		"tools/gen/main.go":      "",
	})

	repos, err := ResolveRepositories(root, []string{"services/*", "./tools/gen", "services/auth"}, "")
	require.NoError(t, err)

	var names []string
	for _, r := range repos {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"services/auth", "services/users", "tools/gen"}, names)
	assert.Equal(t, filepath.Join(root, "services", "auth"), repos[0].Root)
}

func TestResolveRepositories_NoMatch(t *testing.T) {
	_, err := ResolveRepositories(t.TempDir(), []string{"nothing/*"}, "")
	assert.Error(t, err)
}
