package ports

// Container is the shared service registry plugins write into during
// initialize and resolve from afterwards. The framework treats it as an
// opaque collaborator; any dependency-injection container can be adapted to
// this interface.
type Container interface {
	// Register stores a service under the given key. Registering an
	// already-taken key is an error.
	Register(key string, service any) error

	// Resolve returns the service stored under the key, or
	// domain.ErrServiceNotFound.
	Resolve(key string) (any, error)

	// Has reports whether a service is registered under the key.
	Has(key string) bool
}

// ConfigProvider supplies per-plugin configuration slices, keyed by plugin
// name. Providers are typically backed by a TOML file's [plugins.<name>]
// tables, but any source works.
type ConfigProvider interface {
	// PluginConfig returns the configuration slice for the named plugin
	// and whether one was present.
	PluginConfig(name string) (map[string]any, bool)
}
