package deps

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Blank", Command: "  "},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}

	if !results[0].Available || results[0].Path != present {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}

	if results[1].Available {
		t.Fatalf("expected missing binary to be unavailable")
	}
	if results[1].Detail == "" {
		t.Fatalf("expected detail message for missing binary")
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}

	if results[2].Available || results[2].Detail != "command not configured" || results[2].Command != "" {
		t.Fatalf("unexpected blank command status: %#v", results[2])
	}
}

func TestVersionReturnsFirstLine(t *testing.T) {
	restore := stubCommand(t, "version")
	defer restore()

	got, err := Version(context.Background(), "ffmpeg")
	if err != nil {
		t.Fatalf("Version returned error: %v", err)
	}
	if got != "ffmpeg version 7.1 Copyright (c) 2000-2024 the FFmpeg developers" {
		t.Fatalf("unexpected version line %q", got)
	}
}

func TestVersionReportsFailure(t *testing.T) {
	restore := stubCommand(t, "fail")
	defer restore()

	_, err := Version(context.Background(), "ffmpeg")
	if err == nil || !strings.Contains(err.Error(), "unrecognized option") {
		t.Fatalf("expected stderr in error, got %v", err)
	}
}

func TestVersionEmptyOutput(t *testing.T) {
	restore := stubCommand(t, "empty")
	defer restore()

	if _, err := Version(context.Background(), "ffmpeg"); err == nil {
		t.Fatal("expected error for empty output")
	}
}

func stubCommand(t *testing.T, mode string) func() {
	t.Helper()
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		cs := append([]string{"-test.run=TestHelperProcess", "--", name}, args...)
		cmd := exec.CommandContext(ctx, os.Args[0], cs...)
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "DEPS_HELPER_MODE="+mode)
		return cmd
	}
	return func() { commandContext = original }
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	switch os.Getenv("DEPS_HELPER_MODE") {
	case "version":
		fmt.Fprintln(os.Stdout, "")
		fmt.Fprintln(os.Stdout, "ffmpeg version 7.1 Copyright (c) 2000-2024 the FFmpeg developers")
		fmt.Fprintln(os.Stdout, "built with gcc 14")
	case "fail":
		fmt.Fprintln(os.Stderr, "unrecognized option 'version'")
		os.Exit(1)
	}
	os.Exit(0)
}
