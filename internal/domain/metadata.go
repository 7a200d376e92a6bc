package domain

import "fmt"

// Metadata describes a plugin's identity and its dependency declarations.
// It is provided once by the plugin author and never mutated by the engine.
type Metadata struct {
	// Name uniquely identifies the plugin within one registry.
	// Must be non-empty.
	Name string

	// Version is an informational version string (e.g., "1.2.0").
	Version string

	// Description is an optional human-readable summary.
	Description string

	// Dependencies lists plugin names that must be registered and will be
	// initialized and started before this plugin. A missing hard dependency
	// is a configuration error.
	Dependencies []string

	// OptionalDependencies lists plugin names that, if registered, are
	// ordered before this plugin. Absent optional dependencies impose no
	// constraint and no error.
	OptionalDependencies []string
}

// Validate checks the metadata invariants: a non-empty name and no
// self-dependency, hard or optional.
func (m Metadata) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("%w: plugin name must not be empty", ErrInvalidMetadata)
	}
	for _, dep := range m.Dependencies {
		if dep == m.Name {
			return fmt.Errorf("%w: plugin %q depends on itself", ErrInvalidMetadata, m.Name)
		}
	}
	for _, dep := range m.OptionalDependencies {
		if dep == m.Name {
			return fmt.Errorf("%w: plugin %q optionally depends on itself", ErrInvalidMetadata, m.Name)
		}
	}
	return nil
}
