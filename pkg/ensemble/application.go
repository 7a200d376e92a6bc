package ensemble

import (
	"context"
	"fmt"
	"sync"

	"github.com/ensemble-dev/ensemble/internal/app"
	"github.com/ensemble-dev/ensemble/internal/container"
	"github.com/ensemble-dev/ensemble/internal/domain"
	"github.com/ensemble-dev/ensemble/internal/graph"
	"github.com/ensemble-dev/ensemble/internal/ports"
	"github.com/ensemble-dev/ensemble/internal/registry"
	"github.com/ensemble-dev/ensemble/pkg/log"
)

// Application is the caller-facing handle over the plugin registry, the
// dependency graph, and the lifecycle manager. Build one with New, register
// plugins, then drive it with Start and Stop.
//
// An Application runs its lifecycle once. After a failed or completed run,
// construct a new instance; lifecycle state is never reset in place.
type Application struct {
	mu        sync.Mutex
	opts      options
	registry  *registry.Registry
	container ports.Container
	logger    log.Logger

	// manager is created by Start once the order is known and kept
	// afterwards so a failed startup can still be torn down.
	manager *app.Manager
}

// New builds an Application and registers any plugins supplied via options.
// Returns *DuplicatePluginError or a metadata validation error if a supplied
// plugin cannot be registered.
func New(opts ...Option) (*Application, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.container == nil {
		o.container = container.New()
	}

	a := &Application{
		opts:      o,
		registry:  registry.New(),
		container: o.container,
		logger:    o.logger,
	}
	for _, p := range o.plugins {
		if err := a.registry.Register(p); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Register adds a plugin after construction. Registration closes once Start
// has been called; afterwards Register returns ErrAlreadyStarted.
func (a *Application) Register(plugin Plugin) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.manager != nil {
		return domain.ErrAlreadyStarted
	}
	return a.registry.Register(plugin)
}

// Start validates the registered plugin set, computes the dependency order,
// and drives every plugin through initialize and start.
//
// Configuration errors (*MissingDependencyError, *CircularDependencyError)
// are returned before any lifecycle hook runs. A hook failure fails fast and
// returns *PluginLifecycleError; already-initialized plugins are left as-is,
// and cleaning them up via Stop is the caller's decision.
func (a *Application) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.manager != nil {
		return domain.ErrAlreadyStarted
	}

	if err := a.registry.Validate(); err != nil {
		return err
	}

	regs := a.registry.All()
	metas := make([]domain.Metadata, len(regs))
	for i, r := range regs {
		metas[i] = r.Meta
	}
	order, err := graph.Build(metas).TopologicalOrder()
	if err != nil {
		return err
	}
	a.logger.Info("plugin order resolved", log.Strings("order", order))

	a.manager = app.NewManager(app.Config{
		Registry: a.registry,
		Order:    order,
		Contexts: a.contextFor,
		Logger:   a.logger,
		Emitter:  &emitterWrapper{handler: a.opts.eventHandler},
	})
	return a.manager.StartAll(ctx)
}

// Stop tears the application down in reverse dependency order. Every plugin
// that reached initialize gets its stop attempt even when a sibling's stop
// fails; failures are reported in one aggregated *PluginLifecycleError.
// Returns ErrNotStarted if Start was never called.
func (a *Application) Stop(ctx context.Context) error {
	a.mu.Lock()
	mgr := a.manager
	a.mu.Unlock()

	if mgr == nil {
		return domain.ErrNotStarted
	}
	return mgr.StopAll(ctx)
}

// Phase returns the current lifecycle phase.
// Safe to call concurrently from any goroutine.
func (a *Application) Phase() Phase {
	a.mu.Lock()
	mgr := a.manager
	a.mu.Unlock()

	if mgr == nil {
		return PhaseCreated
	}
	return mgr.Phase()
}

// Resolve returns a service from the shared container.
func (a *Application) Resolve(key string) (any, error) {
	return a.container.Resolve(key)
}

// Container returns the shared service container.
func (a *Application) Container() Container {
	return a.container
}

// HealthCheck reports every registered plugin's health and the worst-wins
// aggregate. Plugins without a health hook default to up. A health hook that
// returns an error or panics is recorded as down for that plugin only; the
// aggregate call itself never fails.
//
// The snapshot is order-independent and may be taken in any phase.
func (a *Application) HealthCheck(ctx context.Context) AggregatedHealth {
	result := AggregatedHealth{
		Status:  StatusUp,
		Plugins: make(map[string]PluginHealth),
	}
	for _, reg := range a.registry.All() {
		health := checkPlugin(ctx, reg.Plugin)
		result.Plugins[reg.Name()] = health
		result.Status = domain.Worst(result.Status, health.Status)
	}
	return result
}

// checkPlugin runs one plugin's health hook, downgrading errors and panics
// to a down status.
func checkPlugin(ctx context.Context, plugin Plugin) (health PluginHealth) {
	checker, ok := plugin.(ports.HealthChecker)
	if !ok {
		return PluginHealth{Status: StatusUp}
	}

	defer func() {
		if r := recover(); r != nil {
			health = PluginHealth{
				Status:  StatusDown,
				Message: fmt.Sprintf("health check panicked: %v", r),
			}
		}
	}()

	reported, err := checker.HealthCheck(ctx)
	if err != nil {
		return PluginHealth{Status: StatusDown, Message: err.Error()}
	}
	return reported
}

// contextFor builds the initialize context for one plugin, picking the
// plugin's configuration slice from direct options first, then from the
// configured provider.
func (a *Application) contextFor(name string) *ports.Context {
	var cfg map[string]any
	if direct, ok := a.opts.pluginConfigs[name]; ok {
		cfg = direct
	} else if a.opts.configProvider != nil {
		if fromProvider, ok := a.opts.configProvider.PluginConfig(name); ok {
			cfg = fromProvider
		}
	}
	return ports.NewContext(a.container, cfg, a.logger)
}
