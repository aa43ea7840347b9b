// Package registry binds the opaque string handles that travel through
// experiment configurations to the Go values that implement them.
//
// Configurations are restricted to serializable values, so heavyweight
// objects (model constructors, datasets, objectives) cannot ride along in a
// parameter. Instead the parameter carries a name, and the experiment
// function resolves the name through a Registry at run time. Keeping the
// binding explicit means two runs with the same configuration always resolve
// to the same behavior, which is what makes cached results trustworthy.
package registry

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// Registry is a thread-safe map from names to values of type T.
type Registry[T any] struct {
	mu      sync.RWMutex
	entries map[string]T
}

// New creates an empty registry.
func New[T any]() *Registry[T] {
	return &Registry[T]{entries: make(map[string]T)}
}

// Register binds name to v. Registering an empty name or a name that is
// already bound returns an error.
func (r *Registry[T]) Register(name string, v T) error {
	if name == "" {
		return fmt.Errorf("registry entry name must be non-empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[name]; exists {
		return fmt.Errorf("registry entry with name '%s' already registered", name)
	}
	slog.Debug("Registering entry.", "name", name)
	r.entries[name] = v
	return nil
}

// MustRegister is Register, panicking on error. Intended for package init
// blocks where a duplicate registration is a programming mistake.
func (r *Registry[T]) MustRegister(name string, v T) {
	if err := r.Register(name, v); err != nil {
		panic(err)
	}
}

// Lookup returns the value bound to name.
func (r *Registry[T]) Lookup(name string) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.entries[name]
	return v, ok
}

// MustLookup is Lookup, panicking when name is not bound.
func (r *Registry[T]) MustLookup(name string) T {
	v, ok := r.Lookup(name)
	if !ok {
		panic(fmt.Sprintf("registry entry with name '%s' is not registered", name))
	}
	return v
}

// Names returns every registered name in sorted order.
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len reports how many entries are registered.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
