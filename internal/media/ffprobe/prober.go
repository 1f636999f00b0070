package ffprobe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrParse reports ffprobe output that could not be read as the expected number.
var ErrParse = errors.New("ffprobe output not parseable")

// Prober runs single-value ffprobe queries against one binary.
type Prober struct {
	binary string
}

// NewProber returns a Prober for binary, defaulting to "ffprobe".
func NewProber(binary string) *Prober {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	return &Prober{binary: binary}
}

// FrameCount returns the packet count of the first video stream. ffprobe
// has to demux the whole file for this, so it can take a while on long inputs.
func (p *Prober) FrameCount(ctx context.Context, input string) (uint64, error) {
	out, err := p.query(ctx, input,
		"-v", "error",
		"-select_streams", "v:0",
		"-count_packets",
		"-show_entries", "stream=nb_read_packets",
		"-of", "csv=p=0",
	)
	if err != nil {
		return 0, fmt.Errorf("ffprobe frame count: %w", err)
	}
	value := strings.TrimRight(out, ",")
	frames, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe frame count %q: %w", value, ErrParse)
	}
	return frames, nil
}

// Duration returns the container duration in seconds. Zero, negative and
// non-finite values are rejected.
func (p *Prober) Duration(ctx context.Context, input string) (float64, error) {
	out, err := p.query(ctx, input,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
	)
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration: %w", err)
	}
	seconds, err := strconv.ParseFloat(out, 64)
	if err != nil || math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds <= 0 {
		return 0, fmt.Errorf("ffprobe duration %q: %w", out, ErrParse)
	}
	return seconds, nil
}

// query runs ffprobe and returns the first non-empty stdout line.
func (p *Prober) query(ctx context.Context, input string, args ...string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", errors.New("empty input path")
	}
	args = append(args, "--", input)
	cmd := commandContext(ctx, p.binary, args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if detail := strings.TrimSpace(stderr.String()); detail != "" {
			return "", fmt.Errorf("%w: %s", err, detail)
		}
		return "", err
	}
	for _, line := range strings.Split(stdout.String(), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed, nil
		}
	}
	return "", ErrParse
}
