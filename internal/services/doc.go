// Package services defines shared utilities consumed by the encode loop and
// the external tool integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, attempt numbers, and pass numbers
//     for logging.
//   - Structured error markers plus the Wrap helper so the CLI can tell probe,
//     spawn, filesystem, and external tool failures apart.
//
// Use these helpers when wiring new integrations so error handling and
// observability stay uniform.
package services
