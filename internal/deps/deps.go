package deps

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

var commandContext = exec.CommandContext

// Requirement names an external binary and what it is needed for.
type Requirement struct {
	Name    string
	Command string
	Purpose string
}

// Status is the lookup outcome for one Requirement.
type Status struct {
	Requirement
	Available bool
	// Path is the resolved executable when Available.
	Path string
	// Detail explains why the binary is unavailable.
	Detail string
}

// Resolve looks req.Command up on PATH. Commands containing a slash are
// checked as given.
func Resolve(req Requirement) Status {
	req.Command = strings.TrimSpace(req.Command)
	status := Status{Requirement: req}
	if req.Command == "" {
		status.Detail = "command not configured"
		return status
	}
	path, err := exec.LookPath(req.Command)
	if err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", req.Command)
		return status
	}
	status.Available = true
	status.Path = path
	return status
}

// CheckBinaries resolves each requirement in order.
func CheckBinaries(requirements []Requirement) []Status {
	out := make([]Status, len(requirements))
	for i, req := range requirements {
		out[i] = Resolve(req)
	}
	return out
}

// Version runs "<binary> -version" and returns the first line of output,
// e.g. "ffmpeg version 7.1 Copyright ...". Both ffmpeg and ffprobe accept
// the flag.
func Version(ctx context.Context, binary string) (string, error) {
	cmd := commandContext(ctx, binary, "-version")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%s -version: %w: %s", binary, err, msg)
		}
		return "", fmt.Errorf("%s -version: %w", binary, err)
	}
	scanner := bufio.NewScanner(&stdout)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			return line, nil
		}
	}
	return "", fmt.Errorf("%s -version: empty output", binary)
}
