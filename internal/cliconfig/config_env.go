package cliconfig

import "os"

// ApplyEnvConfig applies ENSEMBLE_* environment variables to the Config.
// Environment values override the config file but lose to explicitly set
// flags (checked via the changed map).
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("log-level", os.Getenv("ENSEMBLE_LOG_LEVEL"), &cfg.LogLevel)
	s.setString("log-format", os.Getenv("ENSEMBLE_LOG_FORMAT"), &cfg.LogFormat)
	s.setString("pidfile", os.Getenv("ENSEMBLE_PIDFILE"), &cfg.PidfilePath)
	s.setBoolFromString("watch-config", os.Getenv("ENSEMBLE_WATCH_CONFIG"), &cfg.WatchConfig)

	return s.setDuration("shutdown-timeout", os.Getenv("ENSEMBLE_SHUTDOWN_TIMEOUT"), &cfg.ShutdownTimeout)
}
