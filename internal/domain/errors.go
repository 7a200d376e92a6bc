package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors returned by the public API. Check with errors.Is.
var (
	// ErrInvalidMetadata is returned when plugin metadata fails validation.
	ErrInvalidMetadata = errors.New("ensemble: invalid plugin metadata")

	// ErrAlreadyStarted is returned when Start() is called after startup began.
	ErrAlreadyStarted = errors.New("ensemble: already started")

	// ErrNotStarted is returned when an operation requires a started application.
	ErrNotStarted = errors.New("ensemble: not started")

	// ErrInvalidPhase is returned on a lifecycle call made in the wrong phase.
	ErrInvalidPhase = errors.New("ensemble: invalid lifecycle phase")

	// ErrServiceNotFound is returned when a container lookup misses.
	ErrServiceNotFound = errors.New("ensemble: service not found")

	// ErrServiceExists is returned when a container key is registered twice.
	ErrServiceExists = errors.New("ensemble: service already registered")
)

// Hook names a lifecycle hook for error reporting.
type Hook string

const (
	HookInitialize Hook = "initialize"
	HookStart      Hook = "start"
	HookStop       Hook = "stop"
)

// DuplicatePluginError reports an attempt to register a second plugin under
// an already-taken name. The registry is left unchanged.
type DuplicatePluginError struct {
	Name string
}

func (e *DuplicatePluginError) Error() string {
	return fmt.Sprintf("ensemble: plugin %q is already registered", e.Name)
}

// MissingDependencyError reports a hard dependency that does not resolve to
// any registered plugin.
type MissingDependencyError struct {
	// Plugin is the dependent that declared the dependency.
	Plugin string

	// Dependency is the name that failed to resolve.
	Dependency string
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("ensemble: plugin %q depends on %q, which is not registered",
		e.Plugin, e.Dependency)
}

// CircularDependencyError reports a dependency cycle. Cycle holds the ordered
// path with the entry node repeated at the end, e.g. [A B A].
type CircularDependencyError struct {
	Cycle []string
}

func (e *CircularDependencyError) Error() string {
	return fmt.Sprintf("ensemble: circular dependency detected: %s",
		strings.Join(e.Cycle, " -> "))
}

// HookFailure records one plugin's failed hook invocation.
type HookFailure struct {
	Plugin string
	Err    error
}

// PluginLifecycleError reports hook failures during initialize, start, or
// stop. Initialize and start fail fast, so Failures holds exactly one entry.
// Stop is best-effort and aggregates every failed plugin after all stops have
// been attempted.
type PluginLifecycleError struct {
	// Phase is the hook that failed: initialize, start, or stop.
	Phase Hook

	// Failures lists the failed plugins in the order they were attempted.
	Failures []HookFailure
}

// NewLifecycleError builds a single-plugin lifecycle error for the fail-fast
// initialize and start paths.
func NewLifecycleError(phase Hook, plugin string, cause error) *PluginLifecycleError {
	return &PluginLifecycleError{
		Phase:    phase,
		Failures: []HookFailure{{Plugin: plugin, Err: cause}},
	}
}

// Plugin returns the first offending plugin name. For initialize and start
// errors this is the only one.
func (e *PluginLifecycleError) Plugin() string {
	if len(e.Failures) == 0 {
		return ""
	}
	return e.Failures[0].Plugin
}

func (e *PluginLifecycleError) Error() string {
	switch len(e.Failures) {
	case 0:
		return fmt.Sprintf("ensemble: %s failed", e.Phase)
	case 1:
		f := e.Failures[0]
		return fmt.Sprintf("ensemble: %s failed for plugin %q: %v", e.Phase, f.Plugin, f.Err)
	default:
		names := make([]string, len(e.Failures))
		for i, f := range e.Failures {
			names[i] = f.Plugin
		}
		return fmt.Sprintf("ensemble: %s failed for %d plugins: %s",
			e.Phase, len(e.Failures), strings.Join(names, ", "))
	}
}

// Unwrap exposes the underlying hook errors for errors.Is / errors.As.
func (e *PluginLifecycleError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f.Err
	}
	return errs
}
