// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package driver

import (
	"fmt"
	"sort"
	"sync"
)

// Options configures opening a device.
type Options struct {
	// Label names the device for logs and backend debug layers.
	Label string

	// Source is the backend-specific surface source: something the chosen
	// backend knows how to create its OS surface from (for example a
	// window handle adapter). Backends type-assert it and reject sources
	// they do not understand.
	Source any

	// Debug enables backend validation layers where supported.
	Debug bool
}

// Factory opens a Device for the given options.
type Factory func(opts Options) (Device, error)

// RegistryEntry describes a registered presentation backend.
type RegistryEntry struct {
	// Name is the unique identifier for this backend.
	Name string

	// Priority determines selection order (higher = preferred).
	// Standard priorities:
	//   - 100: native GPU backends (Vulkan)
	//   - 50: portability layers (WebGPU)
	//   - 10: simulation / software backends
	Priority int

	// Factory opens device instances.
	Factory Factory

	// Available reports if the backend can run on this system.
	Available func() bool
}

// globalRegistry is the default registry.
var globalRegistry = &Registry{}

// Registry manages registered presentation backends.
//
// Backends register themselves from init functions so that importing a
// driver package is all an application needs to do to make it selectable.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*RegistryEntry
}

// NewRegistry creates a new empty registry. Most code should use the global
// registry via Register and Open.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*RegistryEntry)}
}

// Register adds a backend to the global registry. A nil available function
// means always available. Registering an existing name replaces it.
func Register(name string, priority int, factory Factory, available func() bool) {
	globalRegistry.Register(name, priority, factory, available)
}

// Unregister removes a backend from the global registry.
func Unregister(name string) {
	globalRegistry.Unregister(name)
}

// List returns all registered backend names sorted by priority (highest
// first).
func List() []string {
	return globalRegistry.List()
}

// Available returns names of all available backends sorted by priority.
func Available() []string {
	return globalRegistry.Available()
}

// Open opens a device using the best available backend.
func Open(opts Options) (Device, error) {
	return globalRegistry.Open(opts)
}

// OpenByName opens a device using a specific named backend.
func OpenByName(name string, opts Options) (Device, error) {
	return globalRegistry.OpenByName(name, opts)
}

// Register adds a backend to this registry.
func (r *Registry) Register(name string, priority int, factory Factory, available func() bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.entries == nil {
		r.entries = make(map[string]*RegistryEntry)
	}
	if available == nil {
		available = func() bool { return true }
	}
	r.entries[name] = &RegistryEntry{
		Name:      name,
		Priority:  priority,
		Factory:   factory,
		Available: available,
	}
}

// Unregister removes a backend from this registry.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, name)
}

// List returns all registered backend names sorted by priority.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedNames(false)
}

// Available returns names of available backends sorted by priority.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedNames(true)
}

// Get returns a copy of the entry for a specific backend.
func (r *Registry) Get(name string) (*RegistryEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[name]
	if !ok {
		return nil, false
	}
	entryCopy := *entry
	return &entryCopy, true
}

// Open opens a device using the best available backend, falling through to
// lower-priority backends when a factory fails.
func (r *Registry) Open(opts Options) (Device, error) {
	available := r.Available()
	if len(available) == 0 {
		return nil, ErrNoBackendAvailable
	}

	var lastErr error
	for _, name := range available {
		dev, err := r.OpenByName(name, opts)
		if err == nil {
			return dev, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("driver: all backends failed, last error: %w", lastErr)
}

// OpenByName opens a device using a specific backend.
func (r *Registry) OpenByName(name string, opts Options) (Device, error) {
	entry, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrBackendNotFound, name)
	}
	if !entry.Available() {
		return nil, fmt.Errorf("driver: backend %q not available on this system", name)
	}
	dev, err := entry.Factory(opts)
	if err != nil {
		return nil, fmt.Errorf("driver: backend %q: %w", name, err)
	}
	return dev, nil
}

// sortedNames returns entry names sorted by priority (highest first), then
// by name for a stable order. Caller must hold at least a read lock.
func (r *Registry) sortedNames(onlyAvailable bool) []string {
	names := make([]string, 0, len(r.entries))
	for name, entry := range r.entries {
		if onlyAvailable && !entry.Available() {
			continue
		}
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := r.entries[names[i]], r.entries[names[j]]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		return a.Name < b.Name
	})
	return names
}
