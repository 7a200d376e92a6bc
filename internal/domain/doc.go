// Package domain contains the core domain entities and value objects for ensemble.
//
// This package represents the innermost layer of the architecture. It has no
// dependencies on other packages; higher layers (ports, registry, graph, app)
// depend on it, never the other way around.
//
// # Entities
//
//   - [Metadata]: A plugin's static identity and dependency declarations
//   - [PluginState]: The per-plugin lifecycle state tag
//   - [HealthStatus], [PluginHealth], [AggregatedHealth]: Health reporting
//
// # Errors
//
// Configuration-time errors ([DuplicatePluginError], [MissingDependencyError],
// [CircularDependencyError]) are detected before any lifecycle hook runs and
// always fail the whole startup attempt. [PluginLifecycleError] reports hook
// failures at runtime and carries the offending plugin name(s) and hook for
// diagnosis.
package domain
