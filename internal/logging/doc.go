// Package logging provides slog-based logging with per-module levels.
//
// Console output goes to stderr: stdout is reserved for the line-delimited
// event protocol and must never carry diagnostics. When systemd journal is
// available, records are mirrored there as well, and a ring buffer keeps
// the most recent entries for inspection.
package logging
