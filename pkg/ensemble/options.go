package ensemble

import (
	"github.com/ensemble-dev/ensemble/internal/ports"
	"github.com/ensemble-dev/ensemble/pkg/log"
)

// Option configures optional behavior of an Application.
type Option func(*options)

// options holds the optional configuration for an Application instance.
type options struct {
	plugins        []ports.Plugin
	logger         log.Logger
	container      ports.Container
	configProvider ports.ConfigProvider
	pluginConfigs  map[string]map[string]any
	eventHandler   EventHandler
}

// defaultOptions returns options with sensible defaults.
func defaultOptions() options {
	return options{
		logger:        log.NewNoopLogger(),
		pluginConfigs: make(map[string]map[string]any),
	}
}

// WithPlugin registers a plugin when the application is built. Plugins may
// also be registered later with [Application.Register], up until Start.
func WithPlugin(plugin Plugin) Option {
	return func(o *options) {
		o.plugins = append(o.plugins, plugin)
	}
}

// WithPlugins registers several plugins in the given order.
func WithPlugins(plugins ...Plugin) Option {
	return func(o *options) {
		o.plugins = append(o.plugins, plugins...)
	}
}

// WithLogger sets the logger used by the engine and handed to plugins.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithContainer substitutes the shared service container. Use this to adapt
// an existing dependency-injection container. If not provided, an in-memory
// container is used.
func WithContainer(container Container) Option {
	return func(o *options) {
		o.container = container
	}
}

// WithConfigProvider sets the source of per-plugin configuration slices,
// typically backed by a configuration file's plugin tables.
func WithConfigProvider(provider ConfigProvider) Option {
	return func(o *options) {
		o.configProvider = provider
	}
}

// WithPluginConfig sets the configuration slice for one plugin directly.
// Takes precedence over a configured provider for that plugin.
func WithPluginConfig(name string, config map[string]any) Option {
	return func(o *options) {
		o.pluginConfigs[name] = config
	}
}

// WithEventHandler sets a handler for lifecycle events. Events are called
// synchronously between hook invocations.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}
