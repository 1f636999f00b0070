package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"compressr/internal/config"
)

// ConfigOption adjusts a test configuration after the temp layout exists.
type ConfigOption func(t testing.TB, root string, cfg *config.Config)

// NewConfig returns defaults rooted in a fresh temp directory: logs under
// <root>/logs, state under <root>/state. History starts disabled.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	root := t.TempDir()
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(root, "logs")
	cfg.Paths.StateDir = filepath.Join(root, "state")
	cfg.History.Enabled = false
	for _, opt := range opts {
		opt(t, root, &cfg)
	}
	return &cfg
}

// BaseDir returns the temp root behind a config built by NewConfig.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}

// WithEncode sets the size target and codec selection.
func WithEncode(codec, gpu string, sizeMB float64) ConfigOption {
	return func(_ testing.TB, _ string, cfg *config.Config) {
		cfg.Encode.Codec = codec
		cfg.Encode.GPU = gpu
		cfg.Encode.SizeMB = sizeMB
	}
}

// WithMaxAttempts caps the convergence loop.
func WithMaxAttempts(n int) ConfigOption {
	return func(_ testing.TB, _ string, cfg *config.Config) {
		cfg.Encode.MaxAttempts = n
	}
}

// WithHistory turns the run history database on.
func WithHistory() ConfigOption {
	return func(_ testing.TB, _ string, cfg *config.Config) {
		cfg.History.Enabled = true
	}
}

// WithStubbedTools points the ffmpeg and ffprobe settings at executables
// under <root>/bin that exit 0 without output.
func WithStubbedTools() ConfigOption {
	return func(t testing.TB, root string, cfg *config.Config) {
		t.Helper()
		binDir := filepath.Join(root, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", binDir, err)
		}
		stub := func(name string) string {
			path := filepath.Join(binDir, name)
			if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
				t.Fatalf("write stub %s: %v", name, err)
			}
			return path
		}
		cfg.Tools.FFmpeg = stub("ffmpeg")
		cfg.Tools.FFprobe = stub("ffprobe")
	}
}
