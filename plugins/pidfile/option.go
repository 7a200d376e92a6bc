package pidfile

import "github.com/ensemble-dev/ensemble/pkg/ensemble"

// WithPidfile returns an ensemble Option that registers a pidfile plugin.
//
// Usage:
//
//	app, err := ensemble.New(
//	    pidfile.WithPidfile(pidfile.Config{Path: "/run/myapp.pid"}),
//	)
func WithPidfile(cfg Config) ensemble.Option {
	return ensemble.WithPlugin(New(cfg))
}
