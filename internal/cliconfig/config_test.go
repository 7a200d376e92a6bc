package cliconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults are valid", mutate: func(c *Config) {}},
		{name: "json format", mutate: func(c *Config) { c.LogFormat = "json" }},
		{
			name:    "unknown format",
			mutate:  func(c *Config) { c.LogFormat = "xml" },
			wantErr: true,
		},
		{
			name:    "zero shutdown timeout",
			mutate:  func(c *Config) { c.ShutdownTimeout = 0 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyFileConfig(t *testing.T) {
	cfg := DefaultConfig()
	verbose := true
	fc := FileConfig{
		LogLevel:        "debug",
		LogFormat:       "json",
		Pidfile:         "/run/ensemble.pid",
		WatchConfig:     &verbose,
		ShutdownTimeout: "30s",
	}

	if err := ApplyFileConfig(&cfg, fc, map[string]bool{}); err != nil {
		t.Fatalf("ApplyFileConfig failed: %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat = %q, want json", cfg.LogFormat)
	}
	if cfg.PidfilePath != "/run/ensemble.pid" {
		t.Errorf("PidfilePath = %q", cfg.PidfilePath)
	}
	if !cfg.WatchConfig {
		t.Error("WatchConfig = false, want true")
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 30s", cfg.ShutdownTimeout)
	}
}

func TestApplyFileConfigRespectsChangedFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "warn" // set via flag
	fc := FileConfig{LogLevel: "debug", ShutdownTimeout: "1m"}

	changed := map[string]bool{"log-level": true}
	if err := ApplyFileConfig(&cfg, fc, changed); err != nil {
		t.Fatalf("ApplyFileConfig failed: %v", err)
	}

	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, flag value should win over file", cfg.LogLevel)
	}
	if cfg.ShutdownTimeout != time.Minute {
		t.Errorf("ShutdownTimeout = %v, want 1m from file", cfg.ShutdownTimeout)
	}
}

func TestApplyFileConfigBadDuration(t *testing.T) {
	cfg := DefaultConfig()
	fc := FileConfig{ShutdownTimeout: "soon"}
	if err := ApplyFileConfig(&cfg, fc, map[string]bool{}); err == nil {
		t.Error("ApplyFileConfig accepted invalid duration")
	}
}

func TestApplyEnvConfig(t *testing.T) {
	t.Setenv("ENSEMBLE_LOG_LEVEL", "trace")
	t.Setenv("ENSEMBLE_LOG_FORMAT", "json")
	t.Setenv("ENSEMBLE_PIDFILE", "/tmp/e.pid")
	t.Setenv("ENSEMBLE_WATCH_CONFIG", "1")
	t.Setenv("ENSEMBLE_SHUTDOWN_TIMEOUT", "5s")

	cfg := DefaultConfig()
	if err := ApplyEnvConfig(&cfg, map[string]bool{}); err != nil {
		t.Fatalf("ApplyEnvConfig failed: %v", err)
	}

	if cfg.LogLevel != "trace" {
		t.Errorf("LogLevel = %q, want trace", cfg.LogLevel)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat = %q, want json", cfg.LogFormat)
	}
	if cfg.PidfilePath != "/tmp/e.pid" {
		t.Errorf("PidfilePath = %q", cfg.PidfilePath)
	}
	if !cfg.WatchConfig {
		t.Error("WatchConfig = false, want true")
	}
	if cfg.ShutdownTimeout != 5*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 5s", cfg.ShutdownTimeout)
	}
}

func TestApplyEnvConfigRespectsChangedFlags(t *testing.T) {
	t.Setenv("ENSEMBLE_LOG_LEVEL", "trace")

	cfg := DefaultConfig()
	cfg.LogLevel = "error"
	changed := map[string]bool{"log-level": true}
	if err := ApplyEnvConfig(&cfg, changed); err != nil {
		t.Fatalf("ApplyEnvConfig failed: %v", err)
	}
	if cfg.LogLevel != "error" {
		t.Errorf("LogLevel = %q, flag value should win over env", cfg.LogLevel)
	}
}

func TestLoadFileConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
log_level = "debug"
watch_config = true

[plugins.configwatcher]
debounce = "500ms"

[plugins.pidfile]
path = "/run/app.pid"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	fc, err := LoadFileConfig(path)
	if err != nil {
		t.Fatalf("LoadFileConfig failed: %v", err)
	}

	if fc.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", fc.LogLevel)
	}
	if fc.WatchConfig == nil || !*fc.WatchConfig {
		t.Error("WatchConfig not parsed as true")
	}

	cw, ok := fc.Plugins.PluginConfig("configwatcher")
	if !ok {
		t.Fatal("configwatcher table missing")
	}
	if cw["debounce"] != "500ms" {
		t.Errorf("debounce = %v, want 500ms", cw["debounce"])
	}
	if _, ok := fc.Plugins.PluginConfig("absent"); ok {
		t.Error("PluginConfig returned ok for absent plugin")
	}
}

func TestLoadFileConfigMissingFile(t *testing.T) {
	if _, err := LoadFileConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("LoadFileConfig succeeded on missing file")
	}
}
