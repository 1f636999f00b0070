package encoding

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"compressr/internal/config"
	"compressr/internal/history"
	"compressr/internal/logging"
	"compressr/internal/progress"
	"compressr/internal/services"
	"compressr/internal/services/ffmpeg"
)

// Prober answers the per-file questions the loop needs before encoding.
type Prober interface {
	FrameCount(ctx context.Context, input string) (uint64, error)
	Duration(ctx context.Context, input string) (float64, error)
}

// Recorder persists runs and attempts. The history store satisfies it.
type Recorder interface {
	BeginRun(ctx context.Context, run history.Run) (history.Run, error)
	RecordAttempt(ctx context.Context, runID string, attempt history.Attempt) error
	FinishRun(ctx context.Context, runID string, status history.Status, finalSize int64, runErr error) error
}

// Plan is everything decided before the first pass.
type Plan struct {
	Input           string
	Output          string
	Codecs          ffmpeg.Codecs
	TotalFrames     uint64
	DurationSeconds float64
	Bitrates        Bitrates
	BudgetBytes     int64
}

// Attempt records one two-pass encode.
type Attempt struct {
	Index     int
	VideoKbps float64
	AudioKbps float64
	SizeBytes int64
	Accepted  bool
}

// Result summarizes a run.
type Result struct {
	RunID           string
	Plan            Plan
	Attempts        []Attempt
	FinalSize       int64
	DeletedOriginal bool
}

// Option configures a Runner.
type Option func(*Runner)

// WithRecorder stores runs and attempts in r.
func WithRecorder(r Recorder) Option {
	return func(runner *Runner) {
		runner.recorder = r
	}
}

// WithDisplay sends the progress display to w. inPlace redraws the block
// with cursor movement and should only be set for terminals.
func WithDisplay(w io.Writer, inPlace bool) Option {
	return func(runner *Runner) {
		if w != nil {
			runner.display = w
		}
		runner.inPlace = inPlace
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(runner *Runner) {
		runner.logger = logger
	}
}

// Runner drives the convergence loop for one input at a time.
type Runner struct {
	cfg      *config.Config
	prober   Prober
	encoder  ffmpeg.Encoder
	recorder Recorder
	display  io.Writer
	inPlace  bool
	logger   *slog.Logger
}

// NewRunner constructs a Runner.
func NewRunner(cfg *config.Config, prober Prober, encoder ffmpeg.Encoder, opts ...Option) *Runner {
	runner := &Runner{
		cfg:     cfg,
		prober:  prober,
		encoder: encoder,
		display: os.Stdout,
	}
	for _, opt := range opts {
		opt(runner)
	}
	runner.logger = logging.NewComponentLogger(runner.logger, "encoder")
	return runner
}

// Plan probes input once and derives bitrates, codecs and the output path.
func (r *Runner) Plan(ctx context.Context, input string) (Plan, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Plan{}, services.Wrap(services.ErrValidation, "plan", "input", "input path required", nil)
	}
	abs, err := filepath.Abs(input)
	if err != nil {
		return Plan{}, services.Wrap(services.ErrFilesystem, "plan", "resolve input", input, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return Plan{}, services.Wrap(services.ErrFilesystem, "plan", "stat input", abs, err)
	}
	if info.IsDir() {
		return Plan{}, services.Wrap(services.ErrValidation, "plan", "input", abs+" is a directory", nil)
	}

	codecs, err := ffmpeg.ResolveCodecs(r.cfg.Encode.Codec, r.cfg.Encode.GPU)
	if err != nil {
		return Plan{}, err
	}

	duration, err := r.prober.Duration(ctx, abs)
	if err != nil {
		return Plan{}, services.Wrap(services.ErrProbe, "probe", "duration", abs, err)
	}
	frames, err := r.prober.FrameCount(ctx, abs)
	if err != nil {
		return Plan{}, services.Wrap(services.ErrProbe, "probe", "frame count", abs, err)
	}

	return Plan{
		Input:           abs,
		Output:          OutputPath(abs, r.cfg.Encode.SizeMB, codecs.Extension),
		Codecs:          codecs,
		TotalFrames:     frames,
		DurationSeconds: duration,
		Bitrates:        InitialBitrates(r.cfg.Encode.SizeMB, duration, r.cfg.Encode.AudioBitrate),
		BudgetBytes:     r.cfg.SizeBudgetBytes(),
	}, nil
}

// Run encodes input until the output fits the size budget. Probe, spawn,
// encoder and filesystem failures end the run with an error, as does
// hitting the attempt cap. The last attempt's output is left in place.
func (r *Runner) Run(ctx context.Context, input string) (result Result, err error) {
	result.RunID = uuid.NewString()
	ctx = services.WithRunID(ctx, result.RunID)

	plan, err := r.Plan(services.WithStage(ctx, "plan"), input)
	if err != nil {
		return result, err
	}
	result.Plan = plan
	ctx = services.WithStage(ctx, "encode")
	logger := logging.WithContext(ctx, r.logger)
	logger.Info("encode planned", logging.Args(
		logging.String(logging.FieldInput, plan.Input),
		logging.String(logging.FieldOutput, plan.Output),
		logging.String("video_codec", plan.Codecs.Video),
		logging.Uint64("total_frames", plan.TotalFrames),
		logging.Float64("duration_seconds", plan.DurationSeconds),
		logging.Float64("video_kbps", plan.Bitrates.VideoKbps),
		logging.Float64("audio_kbps", plan.Bitrates.AudioKbps),
		logging.Int64("budget_bytes", plan.BudgetBytes),
	)...)

	lock := flock.New(plan.Output + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return result, services.Wrap(services.ErrFilesystem, "encode", "lock output", plan.Output, err)
	}
	if !locked {
		return result, services.Wrap(services.ErrValidation, "encode", "lock output", plan.Output+" is being written by another run", nil)
	}
	defer func() {
		_ = lock.Unlock()
		_ = os.Remove(lock.Path())
	}()

	passDir, err := os.MkdirTemp("", "compressr-passlog-")
	if err != nil {
		return result, services.Wrap(services.ErrFilesystem, "encode", "create passlog dir", "", err)
	}
	defer os.RemoveAll(passDir)

	r.beginRun(ctx, logger, result.RunID, plan)
	defer func() {
		r.finishRun(ctx, logger, result, err)
	}()

	interp, err := r.interpreter(ctx)
	if err != nil {
		return result, err
	}

	state := Start(plan.TotalFrames, plan.Bitrates)
	for !state.Phase.Terminal() {
		attemptCtx := services.WithAttempt(ctx, state.Attempt)
		for pass := state.Pass(); pass != 0; pass = state.Pass() {
			req := ffmpeg.Request{
				Input:         plan.Input,
				Output:        plan.Output,
				VideoCodec:    plan.Codecs.Video,
				AudioCodec:    plan.Codecs.Audio,
				VideoKbps:     state.Bitrates.VideoKbps,
				AudioKbps:     state.Bitrates.AudioKbps,
				Pass:          pass,
				PassLogPrefix: filepath.Join(passDir, "pass"),
			}
			if err := r.runPass(services.WithPass(attemptCtx, pass), interp, req, state); err != nil {
				return result, err
			}
			state = state.PassDone()
		}

		info, statErr := os.Stat(plan.Output)
		if statErr != nil {
			return result, services.Wrap(services.ErrFilesystem, "measure", "stat output", plan.Output, statErr)
		}
		attempt := Attempt{
			Index:     state.Attempt,
			VideoKbps: state.Bitrates.VideoKbps,
			AudioKbps: state.Bitrates.AudioKbps,
			SizeBytes: info.Size(),
		}

		next, measureErr := state.Measured(info.Size(), plan.BudgetBytes, r.cfg.Encode.MaxAttempts)
		attempt.Accepted = next.Phase == PhaseAccepted
		result.Attempts = append(result.Attempts, attempt)
		result.FinalSize = info.Size()
		r.recordAttempt(attemptCtx, logger, result.RunID, attempt)

		attemptLogger := logging.WithContext(attemptCtx, r.logger)
		switch {
		case measureErr != nil:
			return result, measureErr
		case attempt.Accepted:
			attemptLogger.Info("output within budget", logging.Args(
				logging.Int64("size_bytes", attempt.SizeBytes),
				logging.Int64("budget_bytes", plan.BudgetBytes),
			)...)
		default:
			attemptLogger.Info("output over budget, retrying with lower bitrate", logging.Args(
				logging.Int64("size_bytes", attempt.SizeBytes),
				logging.Int64("budget_bytes", plan.BudgetBytes),
				logging.Float64("next_video_kbps", next.Bitrates.VideoKbps),
			)...)
		}
		state = next
	}

	if r.cfg.Encode.DeleteOriginal {
		if err := os.Remove(plan.Input); err != nil {
			return result, services.Wrap(services.ErrFilesystem, "finalize", "delete original", plan.Input, err)
		}
		result.DeletedOriginal = true
		logger.Info("original deleted", logging.Args(logging.String(logging.FieldInput, plan.Input))...)
	}
	return result, nil
}

func (r *Runner) runPass(ctx context.Context, interp progress.Interpreter, req ffmpeg.Request, state State) error {
	logger := logging.WithContext(ctx, r.logger)
	label := progress.LabelFor(state.Attempt, req.Pass)
	logger.Info("pass started", logging.Args(
		logging.String("label", label.String()),
		logging.Float64("video_kbps", req.VideoKbps),
	)...)

	interp.Begin(state.TotalFrames, label)
	defer interp.End()

	malformed := 0
	err := r.encoder.Encode(ctx, req, func(line string) {
		lineErr := interp.Line(line)
		switch {
		case lineErr == nil:
		case errors.Is(lineErr, progress.ErrMalformedLine):
			malformed++
			logging.WarnEvent(logger, "progress_parse", "progress display skips one update",
				"skipping malformed progress line", logging.Error(lineErr))
			if logger.Enabled(ctx, slog.LevelWarn) {
				interp.Interrupt()
			}
		default:
			logger.Debug("progress display write failed", logging.Args(logging.Error(lineErr))...)
		}
	})
	if err != nil {
		return err
	}
	attrs := []logging.Attr{
		logging.String("label", label.String()),
		logging.Int("malformed_lines", malformed),
	}
	if tracked, ok := interp.(interface{ Last() progress.State }); ok {
		attrs = append(attrs, logging.Int("final_percent", tracked.Last().Percent))
	}
	logger.Info("pass finished", logging.Args(attrs...)...)
	return nil
}

func (r *Runner) interpreter(ctx context.Context) (progress.Interpreter, error) {
	logger := logging.WithContext(ctx, r.logger)
	sampler := logging.NewProgressSampler(logging.DefaultProgressBucket)
	var interp progress.Interpreter
	interp, err := progress.New(progress.Options{
		Mode:     r.cfg.Progress.Mode,
		Out:      r.display,
		InPlace:  r.inPlace,
		BarWidth: r.cfg.Progress.BarWidth,
		OnState: func(sample progress.Sample, state progress.State) {
			if !sampler.ShouldLog(state.Percent, state.Pass.String()) {
				return
			}
			logger.Debug("encode progress", logging.Args(
				logging.String("label", state.Pass.String()),
				logging.Int("percent", state.Percent),
				logging.Uint64("frame", sample.Frame),
				logging.Int("fps", sample.FPS),
				logging.Uint64("seconds_left", state.SecondsLeft),
			)...)
			if logger.Enabled(ctx, slog.LevelDebug) {
				interp.Interrupt()
			}
		},
	})
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "encode", "progress display", "", err)
	}
	return interp, nil
}

func (r *Runner) beginRun(ctx context.Context, logger *slog.Logger, runID string, plan Plan) {
	if r.recorder == nil {
		return
	}
	_, err := r.recorder.BeginRun(ctx, history.Run{
		ID:              runID,
		Input:           plan.Input,
		Output:          plan.Output,
		Codec:           plan.Codecs.Video,
		BudgetBytes:     plan.BudgetBytes,
		TotalFrames:     plan.TotalFrames,
		DurationSeconds: plan.DurationSeconds,
	})
	if err != nil {
		logging.WarnEvent(logger, "history_write", "run will be missing from history",
			"failed to record run start", logging.Error(err))
	}
}

func (r *Runner) recordAttempt(ctx context.Context, logger *slog.Logger, runID string, attempt Attempt) {
	if r.recorder == nil {
		return
	}
	err := r.recorder.RecordAttempt(ctx, runID, history.Attempt{
		Index:     attempt.Index,
		VideoKbps: attempt.VideoKbps,
		AudioKbps: attempt.AudioKbps,
		SizeBytes: attempt.SizeBytes,
		Accepted:  attempt.Accepted,
	})
	if err != nil {
		logging.WarnEvent(logger, "history_write", "",
			"failed to record attempt", logging.Error(err),
			logging.Int(logging.FieldAttempt, attempt.Index),
		)
	}
}

func (r *Runner) finishRun(ctx context.Context, logger *slog.Logger, result Result, runErr error) {
	if r.recorder == nil {
		return
	}
	status := history.StatusAccepted
	switch {
	case errors.Is(runErr, ErrAttemptsExhausted):
		status = history.StatusExhausted
	case runErr != nil:
		status = history.StatusFailed
	}
	// The caller's context may already be canceled; the final status should still land.
	if err := r.recorder.FinishRun(context.WithoutCancel(ctx), result.RunID, status, result.FinalSize, runErr); err != nil {
		logging.WarnEvent(logger, "history_write", "",
			"failed to record run result", logging.Error(err),
			logging.String("status", string(status)),
		)
	}
}
