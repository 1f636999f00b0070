package ffmpeg

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"sync"

	"compressr/internal/config"
	"compressr/internal/logging"
	"compressr/internal/services"
)

var commandContext = exec.CommandContext

const (
	diagnosticTailBytes = 4096
	maxProgressLine     = 1 << 20
)

// Encoder runs a single ffmpeg pass.
type Encoder interface {
	Encode(ctx context.Context, req Request, onLine func(string)) error
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary = strings.TrimSpace(binary); binary != "" {
			c.binary = binary
		}
	}
}

// WithChannel selects the stream ffmpeg writes progress to.
func WithChannel(channel string) Option {
	return func(c *CLI) {
		if strings.EqualFold(strings.TrimSpace(channel), config.ChannelStderr) {
			c.channel = config.ChannelStderr
		} else {
			c.channel = config.ChannelStdout
		}
	}
}

// WithLogger sets the logger used for process diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *CLI) {
		c.logger = logger
	}
}

// CLI wraps the ffmpeg command-line encoder.
type CLI struct {
	binary  string
	channel string
	logger  *slog.Logger
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "ffmpeg", channel: config.ChannelStdout}
	for _, opt := range opts {
		opt(cli)
	}
	cli.logger = logging.NewComponentLogger(cli.logger, "ffmpeg")
	return cli
}

// Channel reports the progress channel in use.
func (c *CLI) Channel() string {
	return c.channel
}

// Encode runs one pass and blocks until ffmpeg exits. Every line of the
// progress channel is handed to onLine on the calling goroutine. The other
// stream is kept as a bounded tail for error reporting. When progress shares
// stderr with diagnostics, lines that are not key=value pairs also go to
// the tail.
func (c *CLI) Encode(ctx context.Context, req Request, onLine func(string)) error {
	if strings.TrimSpace(req.Input) == "" {
		return services.Wrap(services.ErrValidation, "encode", "ffmpeg", "input path required", nil)
	}
	if req.Pass != 1 && req.Pass != 2 {
		return services.Wrap(services.ErrValidation, "encode", "ffmpeg", fmt.Sprintf("invalid pass %d", req.Pass), nil)
	}
	if req.Pass == 2 && strings.TrimSpace(req.Output) == "" {
		return services.Wrap(services.ErrValidation, "encode", "ffmpeg", "output path required", nil)
	}

	args := Args(req, c.channel)
	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	tail := newTailBuffer(diagnosticTailBytes)

	var (
		progress io.ReadCloser
		err      error
	)
	if c.channel == config.ChannelStderr {
		progress, err = cmd.StderrPipe()
		cmd.Stdout = tail
	} else {
		progress, err = cmd.StdoutPipe()
		cmd.Stderr = tail
	}
	if err != nil {
		return services.Wrap(services.ErrSpawn, "encode", "ffmpeg", "open progress pipe", err)
	}

	logging.WithContext(ctx, c.logger).Debug("starting ffmpeg",
		logging.Args(logging.String("binary", c.binary), logging.String("args", strings.Join(args, " ")))...)
	if err := cmd.Start(); err != nil {
		return services.Wrap(services.ErrSpawn, "encode", "ffmpeg", "start "+c.binary, err)
	}

	scanner := bufio.NewScanner(progress)
	scanner.Buffer(make([]byte, 0, 64*1024), maxProgressLine)
	mixed := c.channel == config.ChannelStderr
	for scanner.Scan() {
		line := scanner.Text()
		if mixed && !isProgressLine(line) {
			_, _ = fmt.Fprintln(tail, line)
		}
		if onLine != nil {
			onLine(line)
		}
	}
	scanErr := scanner.Err()
	if scanErr != nil {
		// Keep the pipe drained so ffmpeg cannot block on a full buffer.
		_, _ = io.Copy(io.Discard, progress)
	}

	waitErr := cmd.Wait()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("ffmpeg pass %d: %w", req.Pass, ctxErr)
	}
	if waitErr != nil {
		return services.Wrap(services.ErrExternalTool, "encode", fmt.Sprintf("ffmpeg pass %d", req.Pass), tail.String(), waitErr)
	}
	if scanErr != nil {
		return services.Wrap(services.ErrExternalTool, "encode", fmt.Sprintf("ffmpeg pass %d", req.Pass), "read progress", scanErr)
	}
	return nil
}

var _ Encoder = (*CLI)(nil)

// isProgressLine reports whether line looks like "key=value" with a
// whitespace-free key, as written by -progress.
func isProgressLine(line string) bool {
	key, _, ok := strings.Cut(strings.TrimSpace(line), "=")
	return ok && key != "" && !strings.ContainsAny(key, " \t")
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	mu    sync.Mutex
	limit int
	buf   []byte
}

func newTailBuffer(limit int) *tailBuffer {
	return &tailBuffer{limit: limit}
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.limit; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return strings.TrimSpace(string(t.buf))
}

