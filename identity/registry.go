// Package identity issues stable identifiers for files, content entities and
// other shared resources, and mints the IRIs they appear under in the graph.
//
// A Registry maps a natural key to an id. Ids are UUIDv5 values derived from
// the key under a per-registry namespace, so the same key yields the same id
// in every run and different registries never share ids.
package identity

import (
	"sync"

	"github.com/google/uuid"
)

// registryNamespace roots the per-registry UUID namespaces.
var registryNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://semcode.dev/registry"))

// Registry is an append-only natural key → id map. It is safe for concurrent
// use; an id once assigned is never reassigned or evicted.
type Registry struct {
	name string
	ns   uuid.UUID

	mu  sync.RWMutex
	ids map[string]string
}

// NewRegistry creates an empty registry. The name scopes the generated ids.
func NewRegistry(name string) *Registry {
	return &Registry{
		name: name,
		ns:   uuid.NewSHA1(registryNamespace, []byte(name)),
		ids:  make(map[string]string),
	}
}

// Name returns the registry's scope name.
func (r *Registry) Name() string {
	return r.name
}

// GetOrCreate returns the id for key, assigning one on first use.
func (r *Registry) GetOrCreate(key string) string {
	r.mu.RLock()
	id, ok := r.ids[key]
	r.mu.RUnlock()
	if ok {
		return id
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.ids[key]; ok {
		return id
	}
	id = uuid.NewSHA1(r.ns, []byte(key)).String()
	r.ids[key] = id
	return id
}

// Lookup returns the id for key without assigning one.
func (r *Registry) Lookup(key string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.ids[key]
	return id, ok
}

// Len returns the number of registered keys.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ids)
}

// Bundle groups the run-scoped registries shared by the pipeline stages.
type Bundle struct {
	Files      *Registry
	Contents   *Registry
	Frameworks *Registry
	Packages   *Registry
	Types      *Registry
}

// NewBundle creates a fresh set of registries for one run.
func NewBundle() *Bundle {
	return &Bundle{
		Files:      NewRegistry("file"),
		Contents:   NewRegistry("content"),
		Frameworks: NewRegistry("framework"),
		Packages:   NewRegistry("package"),
		Types:      NewRegistry("type"),
	}
}
