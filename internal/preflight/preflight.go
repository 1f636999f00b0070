package preflight

import (
	"context"
	"path/filepath"
	"strings"

	"compressr/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// When input is set, the directory receiving the output is checked for
// write access and for room to hold one output at the size budget.
func RunAll(ctx context.Context, cfg *config.Config, input string) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	for _, status := range CheckSystemDeps(cfg) {
		results = append(results, checkResolved(ctx, status))
	}

	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}
	if cfg.History.Enabled {
		results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))
	}

	if input = strings.TrimSpace(input); input != "" {
		outDir := filepath.Dir(input)
		if abs, err := filepath.Abs(outDir); err == nil {
			outDir = abs
		}
		results = append(results,
			CheckDirectoryAccess("Output directory", outDir),
			CheckFreeSpace("Free space", outDir, cfg.SizeBudgetBytes()),
		)
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
