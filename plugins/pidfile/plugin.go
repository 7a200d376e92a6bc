// Package pidfile provides a plugin that maintains a pidfile for the
// lifetime of the application: written on start, verified by health checks,
// and removed on stop.
package pidfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/ensemble-dev/ensemble/pkg/ensemble"
	"github.com/ensemble-dev/ensemble/pkg/log"
)

// PluginName is the name the plugin registers under.
const PluginName = "pidfile"

// Config holds configuration options for the pidfile plugin.
type Config struct {
	// Path is where the pidfile is written. Required, either here or via
	// the plugin's configuration slice.
	Path string
}

// fileConfig is the TOML shape of the plugin's configuration slice.
type fileConfig struct {
	Path string `toml:"path"`
}

// Plugin writes the process ID to a file on start and removes it on stop.
type Plugin struct {
	mu     sync.Mutex
	cfg    Config
	logger log.Logger
	active bool
}

// New creates a pidfile plugin.
func New(cfg Config) *Plugin {
	return &Plugin{cfg: cfg, logger: log.NewNoopLogger()}
}

// Metadata describes the plugin.
func (p *Plugin) Metadata() ensemble.Metadata {
	return ensemble.Metadata{
		Name:        PluginName,
		Version:     "1.0.0",
		Description: "maintains a pidfile for the application's lifetime",
	}
}

// Initialize applies the configuration slice and validates the target path.
func (p *Plugin) Initialize(ctx context.Context, pctx *ensemble.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.logger = pctx.Logger()

	var fc fileConfig
	if err := ensemble.DecodeConfig(pctx, &fc); err != nil {
		return fmt.Errorf("pidfile: decode config: %w", err)
	}
	if fc.Path != "" {
		p.cfg.Path = fc.Path
	}
	if p.cfg.Path == "" {
		return fmt.Errorf("pidfile: path is required")
	}

	if _, err := os.Stat(filepath.Dir(p.cfg.Path)); err != nil {
		return fmt.Errorf("pidfile: target directory: %w", err)
	}
	return nil
}

// Start writes the pidfile. An existing pidfile is treated as a stale
// leftover and overwritten.
func (p *Plugin) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	pid := strconv.Itoa(os.Getpid())
	if err := os.WriteFile(p.cfg.Path, []byte(pid+"\n"), 0o644); err != nil {
		return fmt.Errorf("pidfile: write: %w", err)
	}
	p.active = true
	p.logger.Info("pidfile written", log.String("path", p.cfg.Path), log.String("pid", pid))
	return nil
}

// Stop removes the pidfile. A pidfile that is already gone is not an error.
func (p *Plugin) Stop(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.active = false
	if err := os.Remove(p.cfg.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("pidfile: remove: %w", err)
	}
	return nil
}

// HealthCheck verifies that the pidfile exists and still names this
// process. A missing or foreign pidfile while active is reported down.
func (p *Plugin) HealthCheck(ctx context.Context) (ensemble.PluginHealth, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.active {
		return ensemble.PluginHealth{Status: ensemble.StatusUp, Message: "inactive"}, nil
	}

	data, err := os.ReadFile(p.cfg.Path)
	if err != nil {
		return ensemble.PluginHealth{
			Status:  ensemble.StatusDown,
			Message: fmt.Sprintf("pidfile unreadable: %v", err),
		}, nil
	}
	if got := strings.TrimSpace(string(data)); got != strconv.Itoa(os.Getpid()) {
		return ensemble.PluginHealth{
			Status:  ensemble.StatusDown,
			Message: fmt.Sprintf("pidfile names pid %s, not this process", got),
		}, nil
	}
	return ensemble.PluginHealth{Status: ensemble.StatusUp}, nil
}
