// Package logging assembles the structured slog loggers used across
// shoebox. It owns the console and JSON handlers, centralizes level and
// output plumbing, and exposes context-aware helpers so pipeline code can
// tag log lines with catalog item IDs, stages, and run identifiers. It
// also provides a no-op logger for tests and wiring code that cannot fail.
package logging
