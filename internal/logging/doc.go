// Package logging wraps log/slog with the handlers and typed attribute
// helpers used across bookscout.
//
// Two output formats are supported: a compact console layout for
// interactive runs and JSON for captured logs. Component loggers carry a
// "component" attribute that the console handler folds into the message
// prefix.
package logging
