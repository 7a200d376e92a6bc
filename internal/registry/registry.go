// Package registry holds the set of registered plugins in insertion order,
// enforces name uniqueness, and validates hard dependency declarations.
package registry

import (
	"sync"

	"github.com/ensemble-dev/ensemble/internal/domain"
	"github.com/ensemble-dev/ensemble/internal/ports"
)

// Registration pairs a plugin with its metadata and a mutable lifecycle
// state tag. Registrations are created by Register, mutated only by the
// lifecycle manager as hooks complete, and held until process exit.
type Registration struct {
	Plugin ports.Plugin
	Meta   domain.Metadata
	State  domain.PluginState
}

// Name returns the plugin name from the registration's metadata.
func (r *Registration) Name() string {
	return r.Meta.Name
}

// Registry is an insertion-ordered collection of plugin registrations.
// Registration order is significant: it is the tie-break for the topological
// order and therefore part of the engine's deterministic behavior.
type Registry struct {
	mu      sync.RWMutex
	byName  map[string]*Registration
	ordered []*Registration
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{byName: make(map[string]*Registration)}
}

// Register validates the plugin's metadata and stores a registration.
// Register is all-or-nothing: on a duplicate name it returns
// *domain.DuplicatePluginError and leaves the registry unchanged.
func (r *Registry) Register(p ports.Plugin) error {
	meta := p.Metadata()
	if err := meta.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[meta.Name]; ok {
		return &domain.DuplicatePluginError{Name: meta.Name}
	}

	reg := &Registration{
		Plugin: p,
		Meta:   meta,
		State:  domain.StateRegistered,
	}
	r.byName[meta.Name] = reg
	r.ordered = append(r.ordered, reg)
	return nil
}

// Validate checks that every hard dependency of every registered plugin
// resolves to another registered plugin. Optional dependencies are never
// validated. Called once before graph construction.
func (r *Registry) Validate() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, reg := range r.ordered {
		for _, dep := range reg.Meta.Dependencies {
			if _, ok := r.byName[dep]; !ok {
				return &domain.MissingDependencyError{
					Plugin:     reg.Meta.Name,
					Dependency: dep,
				}
			}
		}
	}
	return nil
}

// Get returns the registration for the named plugin.
func (r *Registry) Get(name string) (*Registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.byName[name]
	return reg, ok
}

// All returns the registrations in registration order. The slice is a copy;
// the registrations themselves are shared.
func (r *Registry) All() []*Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Registration, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Len returns the number of registered plugins.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.ordered)
}
