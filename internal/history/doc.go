// Package history persists encode runs and their attempts in SQLite.
//
// Each invocation against an input file becomes a run row keyed by UUID;
// every two-pass attempt inside it is appended with its bitrates and the
// measured output size. The CLI reads the store back for the history
// commands. The database lives at <state_dir>/history.db and uses WAL
// journaling with busy retries so concurrent runs can share it.
package history
