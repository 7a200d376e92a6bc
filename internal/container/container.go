// Package container provides the in-memory service container used by
// default when no external dependency-injection container is supplied.
package container

import (
	"fmt"
	"sync"

	"github.com/ensemble-dev/ensemble/internal/domain"
)

// Memory is a mutex-guarded key/value service registry. Lifecycle hooks run
// single-threaded, but health checks and user code may resolve concurrently,
// so reads and writes are guarded anyway.
type Memory struct {
	mu       sync.RWMutex
	services map[string]any
}

// New creates an empty container.
func New() *Memory {
	return &Memory{services: make(map[string]any)}
}

// Register stores a service under the given key.
// Returns domain.ErrServiceExists if the key is already taken; the container
// is left unchanged.
func (m *Memory) Register(key string, service any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.services[key]; ok {
		return fmt.Errorf("%w: %q", domain.ErrServiceExists, key)
	}
	m.services[key] = service
	return nil
}

// Resolve returns the service stored under the key.
// Returns domain.ErrServiceNotFound if nothing is registered under it.
func (m *Memory) Resolve(key string) (any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	svc, ok := m.services[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrServiceNotFound, key)
	}
	return svc, nil
}

// Has reports whether a service is registered under the key.
func (m *Memory) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.services[key]
	return ok
}
