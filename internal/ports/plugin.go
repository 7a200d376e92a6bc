package ports

import (
	"context"

	"github.com/ensemble-dev/ensemble/internal/domain"
	"github.com/ensemble-dev/ensemble/pkg/log"
)

// Plugin is the base interface every plugin must satisfy. All lifecycle
// hooks are optional capabilities discovered by interface assertion at call
// time; a plugin implements any subset of [Initializer], [Starter],
// [Stopper], and [HealthChecker].
type Plugin interface {
	// Metadata returns the plugin's static identity and dependency
	// declarations. Called once at registration; must be stable.
	Metadata() domain.Metadata
}

// Initializer is the optional initialize hook. It runs in dependency order
// before any plugin starts, and receives the plugin context for registering
// services into the shared container.
type Initializer interface {
	Initialize(ctx context.Context, pctx *Context) error
}

// Starter is the optional start hook. It runs in dependency order after
// every plugin has initialized.
type Starter interface {
	Start(ctx context.Context) error
}

// Stopper is the optional stop hook. It runs in reverse dependency order so
// that a plugin's dependents are always stopped before the plugin itself.
type Stopper interface {
	Stop(ctx context.Context) error
}

// HealthChecker is the optional health hook. Plugins without it are reported
// as up. A returned error, or a panic, is recorded as down for that plugin
// only and never propagates to the caller of the aggregate check.
type HealthChecker interface {
	HealthCheck(ctx context.Context) (domain.PluginHealth, error)
}

// Context is handed to a plugin's Initialize hook. It carries the shared
// service container, the plugin's own configuration slice, and a logger.
//
// The container contract is cooperative: each plugin writes only to keys it
// introduces. The engine does not police key ownership.
type Context struct {
	container Container
	config    map[string]any
	logger    log.Logger
}

// NewContext builds a plugin context. A nil config yields an empty map and a
// nil logger yields the no-op logger, so hooks never have to nil-check.
func NewContext(container Container, config map[string]any, logger log.Logger) *Context {
	if config == nil {
		config = map[string]any{}
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Context{container: container, config: config, logger: logger}
}

// Container returns the shared service container.
func (c *Context) Container() Container {
	return c.container
}

// Config returns the plugin's configuration slice as raw key-value pairs.
func (c *Context) Config() map[string]any {
	return c.config
}

// Logger returns the logger handed to this plugin.
func (c *Context) Logger() log.Logger {
	return c.logger
}
