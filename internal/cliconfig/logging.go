package cliconfig

import (
	"os"

	"github.com/ensemble-dev/ensemble/pkg/log"
)

// Logger builds the host logger from the configured level and format.
func (c *Config) Logger() log.Logger {
	if c.LogFormat == "json" {
		return log.NewJSONLogger(os.Stderr, c.LogLevel)
	}
	return log.NewConsoleLogger(c.LogLevel)
}
