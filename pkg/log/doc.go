// Package log provides the logging abstraction used by the ensemble
// framework and handed to plugins through their context.
//
// The package defines a small Logger interface that any logging library can
// satisfy. Two implementations ship with the framework: a zerolog adapter
// with console and JSON variants, and a no-op logger for embedding and tests.
//
// # Usage
//
// Use the console adapter for CLI hosts:
//
//	logger := log.NewConsoleLogger("info")
//
// Wrap an existing zerolog.Logger when embedding:
//
//	logger := log.NewZerologLogger(myZerolog)
//
// # Custom Loggers
//
// Implement the four Logger methods to integrate with existing logging
// infrastructure:
//
//	func (l *MyLogger) Debug(msg string, fields ...log.Field) { ... }
//	func (l *MyLogger) Info(msg string, fields ...log.Field)  { ... }
//	func (l *MyLogger) Warn(msg string, fields ...log.Field)  { ... }
//	func (l *MyLogger) Error(msg string, fields ...log.Field) { ... }
package log
