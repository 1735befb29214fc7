// Package logging wraps log/slog with the handlers and attribute
// helpers used throughout the pipeline.
//
// Two output formats are supported: a compact single-line console
// format for interactive use and JSON for scheduled runs. When no
// format is configured the choice follows whether the output is a
// terminal. Components obtain their logger through NewComponentLogger
// so every record carries a component field.
package logging
