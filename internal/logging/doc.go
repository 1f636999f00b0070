// Package logging assembles the slog loggers used by compressr.
//
// It owns the console and JSON handlers, routes records to stderr and the
// log file, and tags lines with the run id, attempt and pass carried on the
// context. Stdout is never written here; it belongs to the progress display.
package logging
