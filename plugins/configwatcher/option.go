package configwatcher

import "github.com/ensemble-dev/ensemble/pkg/ensemble"

// WithConfigWatcher returns an ensemble Option that registers a config
// watcher plugin.
//
// Usage:
//
//	app, err := ensemble.New(
//	    configwatcher.WithConfigWatcher(configwatcher.Config{
//	        Path:          "/etc/myapp/config.toml",
//	        DebounceDelay: 200 * time.Millisecond,
//	    }, onReload),
//	)
func WithConfigWatcher(cfg Config, handlers ...ChangeHandler) ensemble.Option {
	return ensemble.WithPlugin(New(cfg, handlers...))
}
