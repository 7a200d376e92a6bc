package ensemble

import (
	"github.com/ensemble-dev/ensemble/internal/app"
	"github.com/ensemble-dev/ensemble/internal/domain"
	"github.com/ensemble-dev/ensemble/internal/ports"
)

// Re-export the plugin-facing contracts from the internal layers so that
// plugin authors and hosts only import this package.

// Plugin is the base interface every plugin must satisfy. Lifecycle hooks
// are optional capabilities: implement any subset of [Initializer],
// [Starter], [Stopper], and [HealthChecker].
type Plugin = ports.Plugin

// Initializer is the optional initialize hook, run in dependency order.
type Initializer = ports.Initializer

// Starter is the optional start hook, run in dependency order after all
// plugins have initialized.
type Starter = ports.Starter

// Stopper is the optional stop hook, run in reverse dependency order.
type Stopper = ports.Stopper

// HealthChecker is the optional health hook.
type HealthChecker = ports.HealthChecker

// Context is handed to a plugin's Initialize hook.
type Context = ports.Context

// Container is the shared service registry plugins write into and resolve from.
type Container = ports.Container

// ConfigProvider supplies per-plugin configuration slices.
type ConfigProvider = ports.ConfigProvider

// Metadata describes a plugin's identity and dependency declarations.
type Metadata = domain.Metadata

// PluginState is the lifecycle state tag of a single registered plugin.
type PluginState = domain.PluginState

// Plugin states.
const (
	StateRegistered  = domain.StateRegistered
	StateInitialized = domain.StateInitialized
	StateStarted     = domain.StateStarted
	StateStopped     = domain.StateStopped
	StateFailed      = domain.StateFailed
)

// Phase represents the lifecycle phase of the whole application.
type Phase = app.Phase

// Lifecycle phases.
const (
	PhaseCreated      = app.PhaseCreated
	PhaseInitializing = app.PhaseInitializing
	PhaseInitialized  = app.PhaseInitialized
	PhaseStarting     = app.PhaseStarting
	PhaseStarted      = app.PhaseStarted
	PhaseStopping     = app.PhaseStopping
	PhaseStopped      = app.PhaseStopped
	PhaseFailed       = app.PhaseFailed
)

// HealthStatus is the health of a plugin or of the whole application.
type HealthStatus = domain.HealthStatus

// Health statuses, ordered best to worst.
const (
	StatusUp       = domain.StatusUp
	StatusDegraded = domain.StatusDegraded
	StatusDown     = domain.StatusDown
)

// PluginHealth is one plugin's contribution to an aggregated health report.
type PluginHealth = domain.PluginHealth

// AggregatedHealth is a worst-wins snapshot of every plugin's health.
type AggregatedHealth = domain.AggregatedHealth
