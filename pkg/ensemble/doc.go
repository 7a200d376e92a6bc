// Package ensemble composes independently-authored plugins into one
// application, deciding in what order they may safely initialize, start,
// and later tear down.
//
// # Basic Usage
//
// Build an application from plugins, then drive its lifecycle:
//
//	app, err := ensemble.New(
//	    ensemble.WithPlugin(logplugin.New()),
//	    ensemble.WithPlugin(dbplugin.New()),
//	    ensemble.WithLogger(log.NewConsoleLogger("info")),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ctx := context.Background()
//	if err := app.Start(ctx); err != nil {
//	    _ = app.Stop(ctx) // tear down whatever did initialize
//	    log.Fatal(err)
//	}
//
//	// ... run until shutdown signal ...
//
//	if err := app.Stop(ctx); err != nil {
//	    log.Printf("shutdown error: %v", err)
//	}
//
// # Plugins
//
// A plugin is any value with a [Metadata] describing its name and
// dependency declarations. All four lifecycle hooks are optional
// capabilities discovered at call time:
//
//	type Plugin interface{ Metadata() ensemble.Metadata }
//	Initialize(ctx context.Context, pctx *ensemble.Context) error // Initializer
//	Start(ctx context.Context) error                              // Starter
//	Stop(ctx context.Context) error                               // Stopper
//	HealthCheck(ctx context.Context) (ensemble.PluginHealth, error) // HealthChecker
//
// Hard dependencies must be registered and are initialized and started
// first; optional dependencies are ordered first only when present. The
// computed order is deterministic: ties are broken by registration order.
//
// # Failure Model
//
// Startup fails fast: the first failing initialize or start hook aborts the
// remaining plugins and the application enters the Failed phase, because a
// half-initialized dependency chain is unsafe to build on top of. Shutdown
// is best-effort: every plugin that reached initialize gets its stop
// attempt regardless of a sibling's failure, and all stop failures are
// reported in one aggregated [PluginLifecycleError] afterwards.
//
// A failed startup does not tear itself down; call [Application.Stop]
// explicitly to release whatever did initialize.
//
// # Concurrency
//
// Lifecycle hooks run single-threaded, each awaited to completion before
// the next plugin's hook begins. Plugins write into one shared container
// during initialize, and serial execution keeps those registrations
// deterministic. No timeout is enforced on an individual hook; callers
// wanting bounded startup time wrap hook bodies themselves.
//
// # Health
//
// [Application.HealthCheck] aggregates plugin health worst-wins
// (down > degraded > up). Plugins without the capability count as up, and a
// broken health hook marks only its own plugin down.
package ensemble
