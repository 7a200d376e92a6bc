package ensemble

import "github.com/ensemble-dev/ensemble/internal/domain"

// Sentinel errors returned by the public API. Check with errors.Is.
var (
	// ErrInvalidMetadata is returned when plugin metadata fails validation.
	ErrInvalidMetadata = domain.ErrInvalidMetadata

	// ErrAlreadyStarted is returned when Start() is called twice.
	ErrAlreadyStarted = domain.ErrAlreadyStarted

	// ErrNotStarted is returned when Stop() is called before Start().
	ErrNotStarted = domain.ErrNotStarted

	// ErrInvalidPhase is returned on a lifecycle call made in the wrong phase.
	ErrInvalidPhase = domain.ErrInvalidPhase

	// ErrServiceNotFound is returned when a container lookup misses.
	ErrServiceNotFound = domain.ErrServiceNotFound

	// ErrServiceExists is returned when a container key is registered twice.
	ErrServiceExists = domain.ErrServiceExists
)

// Typed errors carried by the public API. Check with errors.As.
type (
	// DuplicatePluginError reports a second registration under a taken name.
	DuplicatePluginError = domain.DuplicatePluginError

	// MissingDependencyError reports an unresolvable hard dependency.
	MissingDependencyError = domain.MissingDependencyError

	// CircularDependencyError reports a dependency cycle with its path.
	CircularDependencyError = domain.CircularDependencyError

	// PluginLifecycleError reports failed lifecycle hooks.
	PluginLifecycleError = domain.PluginLifecycleError

	// HookFailure records one plugin's failed hook invocation.
	HookFailure = domain.HookFailure

	// Hook names a lifecycle hook for error reporting.
	Hook = domain.Hook
)

// Hook names carried by PluginLifecycleError.
const (
	HookInitialize = domain.HookInitialize
	HookStart      = domain.HookStart
	HookStop       = domain.HookStop
)
