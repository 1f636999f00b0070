// Package main hosts the compressr CLI entrypoint and command graph.
//
// The Cobra-based command tree turns terminal invocations into encode runs,
// probe summaries, preflight checks, history listings and configuration
// scaffolding. It centralizes configuration resolution, flag overrides and
// logger setup so subcommands can focus on output instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
