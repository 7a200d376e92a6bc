// Package ports defines the interfaces (ports) that connect the lifecycle
// engine to the outside world.
//
// In Clean Architecture / Hexagonal Architecture, ports are the boundaries
// between the application core and external collaborators. They define what
// the engine needs without specifying how those needs are fulfilled.
//
// # Port Interfaces
//
//   - [Plugin]: Base plugin identity; lifecycle hooks are the optional
//     capabilities [Initializer], [Starter], [Stopper], [HealthChecker]
//   - [Container]: Shared service registry plugins write into and resolve from
//   - [ConfigProvider]: Per-plugin configuration slices
//
// # Usage
//
// The engine (internal/registry, internal/graph, internal/app) depends only
// on these interfaces. Concrete collaborators — the in-memory container,
// TOML-backed configuration, user plugins — implement them.
//
// This separation enables:
//   - Testing the engine with mock plugins and containers
//   - Substituting a real DI container without changing the engine
//   - Clear boundaries and dependency direction
package ports
