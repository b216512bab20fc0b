package identity

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_SameKeySameID(t *testing.T) {
	r := NewRegistry("file")

	a := r.GetOrCreate("repo|src/a.py")
	b := r.GetOrCreate("repo|src/a.py")
	c := r.GetOrCreate("repo|src/b.py")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, 2, r.Len())

	id, ok := r.Lookup("repo|src/a.py")
	require.True(t, ok)
	assert.Equal(t, a, id)

	_, ok = r.Lookup("repo|missing")
	assert.False(t, ok)
	assert.Equal(t, 2, r.Len(), "lookup must not register")
}

func TestRegistry_StableAcrossInstances(t *testing.T) {
	first := NewRegistry("content").GetOrCreate("repo|x.go#content")
	second := NewRegistry("content").GetOrCreate("repo|x.go#content")
	other := NewRegistry("file").GetOrCreate("repo|x.go#content")

	assert.Equal(t, first, second)
	assert.NotEqual(t, first, other, "registries are scoped")
}

func TestRegistry_ConcurrentUniqueness(t *testing.T) {
	r := NewRegistry("file")
	const workers = 32
	const keys = 200

	results := make([]map[string]string, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			seen := make(map[string]string, keys)
			for k := 0; k < keys; k++ {
				key := fmt.Sprintf("repo|f%d", (k+w)%keys)
				seen[key] = r.GetOrCreate(key)
			}
			results[w] = seen
		}(w)
	}
	wg.Wait()

	assert.Equal(t, keys, r.Len())
	ids := make(map[string]string)
	for _, seen := range results {
		for key, id := range seen {
			if prev, ok := ids[key]; ok {
				assert.Equal(t, prev, id, "key %s got two ids", key)
			}
			ids[key] = id
		}
	}
	distinct := make(map[string]bool)
	for _, id := range ids {
		distinct[id] = true
	}
	assert.Len(t, distinct, keys)
}

func TestNewBundle(t *testing.T) {
	b := NewBundle()
	require.NotNil(t, b.Files)
	require.NotNil(t, b.Contents)
	require.NotNil(t, b.Frameworks)
	require.NotNil(t, b.Packages)
	require.NotNil(t, b.Types)
	assert.Equal(t, "content", b.Contents.Name())
}
