// Package configwatcher provides a plugin that monitors a configuration
// file for changes and notifies subscribed handlers, letting other plugins
// react to configuration edits without restarting the application.
package configwatcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ensemble-dev/ensemble/pkg/ensemble"
	"github.com/ensemble-dev/ensemble/pkg/log"
)

// PluginName is the name the plugin registers under. Other plugins may
// declare it as an optional dependency and resolve the watcher from the
// container to subscribe.
const PluginName = "configwatcher"

// ChangeHandler is called with the watched path after a debounced change.
type ChangeHandler func(path string)

// Config holds configuration options for the config watcher plugin.
// Fields left zero can be supplied through the plugin's configuration
// slice ([plugins.configwatcher] in a TOML host config).
type Config struct {
	// Path is the configuration file to watch. Required.
	Path string

	// DebounceDelay is the quiet period after a change before handlers
	// fire, coalescing editor write bursts. Default: 200 milliseconds.
	DebounceDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DebounceDelay: 200 * time.Millisecond,
	}
}

// fileConfig is the TOML shape of the plugin's configuration slice.
type fileConfig struct {
	Path     string `toml:"path"`
	Debounce string `toml:"debounce"`
}

// Plugin watches one configuration file and fans change notifications out
// to subscribed handlers.
type Plugin struct {
	mu       sync.Mutex
	cfg      Config
	handlers []ChangeHandler
	logger   log.Logger

	cancel   context.CancelFunc
	wg       sync.WaitGroup
	debounce *time.Timer
	running  bool
}

// New creates a config watcher plugin. Handlers passed here are notified on
// every change; more can be added later with Subscribe.
func New(cfg Config, handlers ...ChangeHandler) *Plugin {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 200 * time.Millisecond
	}
	return &Plugin{
		cfg:      cfg,
		handlers: handlers,
		logger:   log.NewNoopLogger(),
	}
}

// Metadata describes the plugin. It has no dependencies; plugins that want
// reload notifications declare configwatcher as a dependency instead.
func (p *Plugin) Metadata() ensemble.Metadata {
	return ensemble.Metadata{
		Name:        PluginName,
		Version:     "1.0.0",
		Description: "notifies subscribers when the watched configuration file changes",
	}
}

// Subscribe adds a change handler. Safe to call from other plugins'
// Initialize hooks after resolving the watcher from the container.
func (p *Plugin) Subscribe(handler ChangeHandler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers = append(p.handlers, handler)
}

// Initialize applies the configuration slice, validates the watched path,
// and registers the watcher in the container under PluginName so dependent
// plugins can subscribe.
func (p *Plugin) Initialize(ctx context.Context, pctx *ensemble.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.logger = pctx.Logger()

	var fc fileConfig
	if err := ensemble.DecodeConfig(pctx, &fc); err != nil {
		return fmt.Errorf("configwatcher: decode config: %w", err)
	}
	if fc.Path != "" {
		p.cfg.Path = fc.Path
	}
	if fc.Debounce != "" {
		d, err := time.ParseDuration(fc.Debounce)
		if err != nil {
			return fmt.Errorf("configwatcher: parse debounce: %w", err)
		}
		p.cfg.DebounceDelay = d
	}

	if p.cfg.Path == "" {
		return fmt.Errorf("configwatcher: path is required")
	}
	if _, err := os.Stat(p.cfg.Path); err != nil {
		return fmt.Errorf("configwatcher: watched file: %w", err)
	}

	return pctx.Container().Register(PluginName, p)
}

// Start begins watching the file's directory. Watching the directory
// rather than the file survives editors that replace the file on save.
func (p *Plugin) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("configwatcher: create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(p.cfg.Path)); err != nil {
		watcher.Close()
		return fmt.Errorf("configwatcher: watch %s: %w", filepath.Dir(p.cfg.Path), err)
	}

	watchCtx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.running = true

	p.wg.Add(1)
	go p.watchLoop(watchCtx, watcher)

	p.logger.Info("config watcher started", log.String("path", p.cfg.Path))
	return nil
}

// Stop ends the watch loop and waits for it to drain.
func (p *Plugin) Stop(ctx context.Context) error {
	p.mu.Lock()
	cancel := p.cancel
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	p.wg.Wait()

	p.mu.Lock()
	p.running = false
	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.mu.Unlock()
	return nil
}

// HealthCheck reports degraded when the watch loop is not running.
func (p *Plugin) HealthCheck(ctx context.Context) (ensemble.PluginHealth, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return ensemble.PluginHealth{
			Status:  ensemble.StatusDegraded,
			Message: "watch loop not running",
		}, nil
	}
	return ensemble.PluginHealth{Status: ensemble.StatusUp}, nil
}

func (p *Plugin) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer p.wg.Done()
	defer watcher.Close()

	watched := filepath.Clean(p.cfg.Path)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != watched {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			p.scheduleNotify()

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("config watcher error", log.Err(err))
		}
	}
}

// scheduleNotify (re)arms the debounce timer so rapid write bursts collapse
// into one notification.
func (p *Plugin) scheduleNotify() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.debounce = time.AfterFunc(p.cfg.DebounceDelay, p.notify)
}

func (p *Plugin) notify() {
	p.mu.Lock()
	handlers := append([]ChangeHandler{}, p.handlers...)
	path := p.cfg.Path
	p.mu.Unlock()

	p.logger.Info("configuration changed", log.String("path", path))
	for _, h := range handlers {
		h(path)
	}
}
