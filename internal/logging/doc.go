// Package logging constructs the slog loggers used across audioscribe.
//
// Two output formats are supported: a compact console format for interactive
// use and JSON for machine consumption. Helpers provide standardized field
// keys, context-derived attributes (job id, stage), and a no-op logger for
// tests.
package logging
