// Package app drives the lifecycle phase state machine, invoking plugin
// hooks in the order the dependency graph supplies.
package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/ensemble-dev/ensemble/internal/domain"
	"github.com/ensemble-dev/ensemble/internal/ports"
	"github.com/ensemble-dev/ensemble/internal/registry"
	"github.com/ensemble-dev/ensemble/pkg/log"
)

// Phase represents the lifecycle phase of the whole plugin set.
type Phase int

const (
	PhaseCreated Phase = iota
	PhaseInitializing
	PhaseInitialized
	PhaseStarting
	PhaseStarted
	PhaseStopping
	PhaseStopped
	PhaseFailed
)

// String returns a human-readable representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseCreated:
		return "Created"
	case PhaseInitializing:
		return "Initializing"
	case PhaseInitialized:
		return "Initialized"
	case PhaseStarting:
		return "Starting"
	case PhaseStarted:
		return "Started"
	case PhaseStopping:
		return "Stopping"
	case PhaseStopped:
		return "Stopped"
	case PhaseFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// EventEmitter is called on phase transitions and per-plugin state changes.
type EventEmitter interface {
	OnPhaseChange(previous, current Phase, reason string)
	OnPluginStateChange(plugin string, previous, current domain.PluginState)
}

// ContextFactory builds the context handed to a plugin's Initialize hook.
type ContextFactory func(plugin string) *ports.Context

// Config holds the collaborators of a lifecycle manager.
type Config struct {
	// Registry holds the plugin registrations whose states the manager
	// mutates as hooks complete.
	Registry *registry.Registry

	// Order is the topological order supplied by the dependency graph.
	// Initialize and start walk it forward, stop walks it backward.
	Order []string

	// Contexts builds per-plugin initialize contexts.
	Contexts ContextFactory

	// Logger receives phase transitions and hook outcomes. Optional.
	Logger log.Logger

	// Emitter receives lifecycle events. Optional.
	Emitter EventEmitter
}

// Manager drives the phase state machine over one plugin set.
//
// Hooks run single-threaded, strictly in graph order: each hook completes
// before the next plugin's hook begins. This is deliberate — plugins write
// into one shared container during initialize, and serial execution keeps
// registration deterministic. The manager therefore is not meant to be
// driven from multiple goroutines; only Phase() is safe to call
// concurrently.
//
// No timeout is enforced on an individual hook. A hanging hook hangs the
// sequence; callers wanting bounded startup wrap hook bodies themselves.
type Manager struct {
	mu    sync.RWMutex
	phase Phase

	registry *registry.Registry
	order    []string
	contexts ContextFactory
	logger   log.Logger
	emitter  EventEmitter
}

// NewManager creates a manager in PhaseCreated.
func NewManager(cfg Config) *Manager {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	if cfg.Contexts == nil {
		cfg.Contexts = func(string) *ports.Context {
			return ports.NewContext(nil, nil, logger)
		}
	}
	return &Manager{
		phase:    PhaseCreated,
		registry: cfg.Registry,
		order:    cfg.Order,
		contexts: cfg.Contexts,
		logger:   logger,
		emitter:  cfg.Emitter,
	}
}

// Phase returns the current lifecycle phase.
// Safe to call concurrently from any goroutine.
func (m *Manager) Phase() Phase {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.phase
}

// Order returns the plugin order the manager was built with.
func (m *Manager) Order() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// InitializeAll runs every plugin's Initialize hook in topological order.
//
// On the first failure the remaining plugins are never touched, the phase
// becomes Failed, and a *domain.PluginLifecycleError naming the plugin is
// returned. Cleanup of already-initialized plugins is the caller's decision
// via StopAll; it is not triggered automatically.
func (m *Manager) InitializeAll(ctx context.Context) error {
	if ph := m.Phase(); ph != PhaseCreated {
		return fmt.Errorf("%w: initialize requires Created, current phase is %s",
			domain.ErrInvalidPhase, ph)
	}
	if err := m.transitionTo(PhaseInitializing, "InitializeAll() called"); err != nil {
		return err
	}

	for _, name := range m.order {
		reg, ok := m.registry.Get(name)
		if !ok {
			// Order and registry are built from the same plugin set.
			continue
		}
		if init, ok := reg.Plugin.(ports.Initializer); ok {
			m.logger.Debug("initializing plugin", log.String("plugin", name))
			if err := init.Initialize(ctx, m.contexts(name)); err != nil {
				m.logger.Error("plugin initialization failed",
					log.String("plugin", name), log.Err(err))
				m.setPluginState(reg, domain.StateFailed)
				_ = m.transitionTo(PhaseFailed, "initialize failed: "+name)
				return domain.NewLifecycleError(domain.HookInitialize, name, err)
			}
		}
		m.setPluginState(reg, domain.StateInitialized)
	}

	return m.transitionTo(PhaseInitialized, "all plugins initialized")
}

// StartAll runs every plugin's Start hook in topological order, running
// InitializeAll first if it has not run yet.
//
// On the first failure the remaining plugins are never touched, the phase
// becomes Failed, and a *domain.PluginLifecycleError naming the plugin is
// returned.
func (m *Manager) StartAll(ctx context.Context) error {
	switch ph := m.Phase(); ph {
	case PhaseCreated:
		if err := m.InitializeAll(ctx); err != nil {
			return err
		}
	case PhaseInitialized:
		// Already initialized, proceed to start.
	default:
		return fmt.Errorf("%w: start requires Created or Initialized, current phase is %s",
			domain.ErrInvalidPhase, ph)
	}
	if err := m.transitionTo(PhaseStarting, "StartAll() called"); err != nil {
		return err
	}

	for _, name := range m.order {
		reg, ok := m.registry.Get(name)
		if !ok {
			continue
		}
		if starter, ok := reg.Plugin.(ports.Starter); ok {
			m.logger.Debug("starting plugin", log.String("plugin", name))
			if err := starter.Start(ctx); err != nil {
				m.logger.Error("plugin start failed",
					log.String("plugin", name), log.Err(err))
				m.setPluginState(reg, domain.StateFailed)
				_ = m.transitionTo(PhaseFailed, "start failed: "+name)
				return domain.NewLifecycleError(domain.HookStart, name, err)
			}
		}
		m.setPluginState(reg, domain.StateStarted)
	}

	return m.transitionTo(PhaseStarted, "all plugins started")
}

// StopAll runs every plugin's Stop hook in reverse topological order, so
// dependents stop before their dependencies. Only plugins that reached
// Initialized (including those later marked Failed) are stopped.
//
// Stop is best-effort: a failing hook never prevents the remaining plugins
// from getting their stop attempt. After teardown completes, all failures
// are reported in one aggregated *domain.PluginLifecycleError. Callable from
// any phase; calling it on an already-stopped manager is a no-op.
func (m *Manager) StopAll(ctx context.Context) error {
	switch m.Phase() {
	case PhaseStopping, PhaseStopped:
		return nil
	}
	if err := m.transitionTo(PhaseStopping, "StopAll() called"); err != nil {
		return err
	}

	var failures []domain.HookFailure
	for i := len(m.order) - 1; i >= 0; i-- {
		name := m.order[i]
		reg, ok := m.registry.Get(name)
		if !ok {
			continue
		}
		switch reg.State {
		case domain.StateInitialized, domain.StateStarted, domain.StateFailed:
			// Reached initialize; may hold resources worth releasing.
		default:
			continue
		}
		if stopper, ok := reg.Plugin.(ports.Stopper); ok {
			m.logger.Debug("stopping plugin", log.String("plugin", name))
			if err := stopper.Stop(ctx); err != nil {
				m.logger.Error("plugin stop failed",
					log.String("plugin", name), log.Err(err))
				failures = append(failures, domain.HookFailure{Plugin: name, Err: err})
				m.setPluginState(reg, domain.StateFailed)
				continue
			}
		}
		m.setPluginState(reg, domain.StateStopped)
	}

	if len(failures) > 0 {
		_ = m.transitionTo(PhaseFailed, "stop completed with failures")
		return &domain.PluginLifecycleError{Phase: domain.HookStop, Failures: failures}
	}
	return m.transitionTo(PhaseStopped, "all plugins stopped")
}

// transitionTo validates and applies a phase transition, then notifies the
// emitter and logs outside the lock.
func (m *Manager) transitionTo(next Phase, reason string) error {
	m.mu.Lock()
	prev := m.phase

	valid := false
	switch prev {
	case PhaseCreated:
		valid = next == PhaseInitializing || next == PhaseStopping
	case PhaseInitializing:
		valid = next == PhaseInitialized || next == PhaseFailed
	case PhaseInitialized:
		valid = next == PhaseStarting || next == PhaseStopping
	case PhaseStarting:
		valid = next == PhaseStarted || next == PhaseFailed
	case PhaseStarted:
		valid = next == PhaseStopping
	case PhaseStopping:
		valid = next == PhaseStopped || next == PhaseFailed
	case PhaseFailed:
		valid = next == PhaseStopping
	}
	if !valid {
		m.mu.Unlock()
		return fmt.Errorf("%w: cannot transition from %s to %s",
			domain.ErrInvalidPhase, prev, next)
	}

	m.phase = next
	m.mu.Unlock()

	if m.emitter != nil {
		m.emitter.OnPhaseChange(prev, next, reason)
	}
	m.logger.Info("phase transition",
		log.Stringer("from", prev),
		log.Stringer("to", next),
		log.String("reason", reason),
	)
	return nil
}

// setPluginState mutates a registration's state tag and notifies the emitter.
func (m *Manager) setPluginState(reg *registry.Registration, next domain.PluginState) {
	prev := reg.State
	if prev == next {
		return
	}
	reg.State = next
	if m.emitter != nil {
		m.emitter.OnPluginStateChange(reg.Name(), prev, next)
	}
	m.logger.Debug("plugin state change",
		log.String("plugin", reg.Name()),
		log.Stringer("from", prev),
		log.Stringer("to", next),
	)
}
