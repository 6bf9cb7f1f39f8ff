// Package logging assembles structured slog loggers and the attribute helpers
// used across marquee.
//
// It owns the console and JSON handlers, centralizes level and output routing,
// and exposes context-aware helpers that tag log lines with the resolution
// correlation id and the query being resolved. A no-op logger is provided for
// tests and wiring code that cannot fail.
package logging
