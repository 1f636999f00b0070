// Package preflight provides readiness checks for the binaries and
// filesystem paths compressr depends on.
//
// These checks run in two contexts:
//   - The encode command calls RunAll before the first pass so a missing
//     ffmpeg or a full disk fails fast instead of after a long pass 1.
//   - The "compressr check" command renders every result as a table.
//
// Directory checks for the state directory are skipped when history is
// disabled.
package preflight
