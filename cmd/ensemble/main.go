package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/ensemble-dev/ensemble/internal/cliconfig"
	"github.com/ensemble-dev/ensemble/pkg/ensemble"
	"github.com/ensemble-dev/ensemble/pkg/log"
	"github.com/ensemble-dev/ensemble/plugins/configwatcher"
	"github.com/ensemble-dev/ensemble/plugins/pidfile"
)

const helpDescription = `
Run a plugin-composed application: plugins declare dependencies, ensemble
resolves the start order, runs the lifecycle, and shuts everything down in
reverse on SIGINT/SIGTERM.

Highlights:
  - Dependency-ordered startup with fail-fast error reporting.
  - Best-effort reverse-order shutdown that always visits every plugin.
  - Per-plugin configuration tables from a single TOML file.
  - Optional pidfile and config-reload plugins, enabled from config or flags.
`

var exampleUsage = strings.TrimSpace(`
  ensemble --config $HOME/.ensemble/config.toml
  ensemble --pidfile /run/ensemble.pid --log-level debug
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	root := &cobra.Command{
		Use:     "ensemble",
		Short:   "Run a plugin-composed application with ordered startup and shutdown",
		Long:    strings.TrimSpace(helpDescription),
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Load config file first (default $HOME/.ensemble/config.toml),
			// then env, then flag overrides via the changed map.
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			var fc cliconfig.FileConfig
			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				var err error
				fc, err = cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			logger := cfg.Logger()

			opts := []ensemble.Option{
				ensemble.WithLogger(logger),
			}
			if fc.Plugins != nil {
				opts = append(opts, ensemble.WithConfigProvider(fc.Plugins))
			}
			if cfg.PidfilePath != "" {
				opts = append(opts, pidfile.WithPidfile(pidfile.Config{Path: cfg.PidfilePath}))
			}
			if cfg.WatchConfig && cfgFile != "" {
				opts = append(opts, configwatcher.WithConfigWatcher(
					configwatcher.Config{Path: cfgFile},
					func(path string) {
						logger.Info("configuration file changed, restart to apply",
							log.String("path", path))
					},
				))
			}

			app, err := ensemble.New(opts...)
			if err != nil {
				return fmt.Errorf("create application: %w", err)
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			if err := app.Start(ctx); err != nil {
				// Started plugins still need their shutdown hooks.
				stopCtx, stopCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
				defer stopCancel()
				if stopErr := app.Stop(stopCtx); stopErr != nil {
					logger.Error("cleanup after failed start", log.Err(stopErr))
				}
				return fmt.Errorf("start application: %w", err)
			}

			logger.Info("application started", log.Stringer("phase", app.Phase()))

			sig := <-sigCh
			logger.Info("received signal, stopping", log.String("signal", sig.String()))

			stopCtx, stopCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer stopCancel()
			if err := app.Stop(stopCtx); err != nil {
				return fmt.Errorf("stop application: %w", err)
			}
			return nil
		},
	}

	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.ensemble/config.toml)")
	root.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (trace, debug, info, warn, error)")
	root.Flags().StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format (console or json)")
	root.Flags().StringVar(&cfg.PidfilePath, "pidfile", cfg.PidfilePath, "write a pidfile at this path for the process lifetime")
	root.Flags().BoolVar(&cfg.WatchConfig, "watch-config", cfg.WatchConfig, "watch the config file and log when it changes")
	root.Flags().DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "maximum time to wait for plugins to stop")

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ensemble: %v\n", err)
		os.Exit(1)
	}
}
