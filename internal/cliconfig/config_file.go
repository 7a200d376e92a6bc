package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML
// friendly, and carries per-plugin configuration tables.
type FileConfig struct {
	LogLevel        string `toml:"log_level"`
	LogFormat       string `toml:"log_format"`
	Pidfile         string `toml:"pidfile"`
	WatchConfig     *bool  `toml:"watch_config"`
	ShutdownTimeout string `toml:"shutdown_timeout"`

	// Plugins holds one table per plugin name, handed to the application
	// as configuration slices:
	//
	//	[plugins.configwatcher]
	//	debounce = "500ms"
	Plugins PluginConfigs `toml:"plugins"`
}

// PluginConfigs maps plugin names to their configuration tables. It
// satisfies the application's ConfigProvider contract.
type PluginConfigs map[string]map[string]any

// PluginConfig returns the configuration table for the named plugin.
func (p PluginConfigs) PluginConfig(name string) (map[string]any, bool) {
	cfg, ok := p[name]
	return cfg, ok
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.ensemble/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".ensemble", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setString("log-format", fc.LogFormat, &cfg.LogFormat)
	s.setString("pidfile", fc.Pidfile, &cfg.PidfilePath)
	s.setBool("watch-config", fc.WatchConfig, &cfg.WatchConfig)

	return s.setDuration("shutdown-timeout", fc.ShutdownTimeout, &cfg.ShutdownTimeout)
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
