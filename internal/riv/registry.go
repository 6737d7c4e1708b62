package riv

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Factory creates a fresh Loader. A new loader is used for every inspection
// so concurrent inspections of different files cannot interfere.
type Factory func() Loader

// Registry holds the available runtime bindings by name.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// Global registry instance
var globalRegistry = NewRegistry()

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// GetGlobalRegistry returns the singleton registry.
func GetGlobalRegistry() *Registry {
	return globalRegistry
}

// Register adds a binding to the global registry. Bindings call this from
// their package init.
func Register(name string, f Factory) {
	globalRegistry.Add(name, f)
}

// Add registers a binding factory under a name.
func (r *Registry) Add(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[strings.ToLower(name)] = f
}

// Open creates a fresh loader for the named binding.
func (r *Registry) Open(name string) (Loader, error) {
	r.mu.RLock()
	f, ok := r.factories[strings.ToLower(name)]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("runtime binding not registered: %s", name)
	}
	return f(), nil
}

// Names returns the registered binding names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for n := range r.factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
