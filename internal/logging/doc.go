// Package logging assembles structured slog loggers and formatting helpers used
// across bidsmap.
//
// It owns the console/JSON handlers, centralizes level and output plumbing,
// and exposes context-aware helpers so placement code can tag log lines with
// the pass session ID, series stems, and mapping sections. The package also
// provides a no-op logger for tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits warnings with the same event_type / error_hint / impact shape.
package logging
