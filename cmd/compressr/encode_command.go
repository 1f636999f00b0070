package main

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"compressr/internal/config"
	"compressr/internal/encoding"
	"compressr/internal/history"
	"compressr/internal/logging"
	"compressr/internal/media/ffprobe"
	"compressr/internal/preflight"
	"compressr/internal/services"
	"compressr/internal/services/ffmpeg"
)

func newEncodeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "encode <input>",
		Short: "Encode a video until it fits the size budget",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEncode(cmd, ctx, args[0])
		},
	}
}

func runEncode(cmd *cobra.Command, ctx *commandContext, input string) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.loggerFor(cfg)
	if err != nil {
		return err
	}

	if err := requirePreflight(cmd, cfg, input); err != nil {
		return err
	}

	encoder := ffmpeg.NewCLI(
		ffmpeg.WithBinary(cfg.FFmpegBinary()),
		ffmpeg.WithChannel(cfg.Progress.Channel),
		ffmpeg.WithLogger(logger),
	)
	out := cmd.OutOrStdout()
	opts := []encoding.Option{
		encoding.WithLogger(logger),
		encoding.WithDisplay(out, isTerminal(out)),
	}

	if cfg.History.Enabled {
		store, err := history.Open(cfg)
		if err != nil {
			logging.WarnEvent(logger, "history_open", "run will not be recorded",
				"run history unavailable", logging.Error(err))
		} else {
			defer store.Close()
			opts = append(opts, encoding.WithRecorder(store))
		}
	}

	logger.Debug("encoder configured",
		slog.String("binary", cfg.FFmpegBinary()),
		slog.String("progress_channel", encoder.Channel()),
		slog.String("progress_mode", cfg.Progress.Mode),
	)

	runner := encoding.NewRunner(cfg, ffprobe.NewProber(cfg.FFprobeBinary()), encoder, opts...)
	result, runErr := runner.Run(cmd.Context(), input)
	if len(result.Attempts) > 0 {
		printSummary(out, result, runErr == nil)
	}
	return runErr
}

// requirePreflight fails when a required binary or the output directory is
// unusable. Log and state directory problems were already reported by
// EnsureDirectories.
func requirePreflight(cmd *cobra.Command, cfg *config.Config, input string) error {
	failed := preflight.Failed(preflight.RunAll(cmd.Context(), cfg, input))
	if len(failed) == 0 {
		return nil
	}
	parts := make([]string, 0, len(failed))
	for _, r := range failed {
		parts = append(parts, fmt.Sprintf("%s: %s", r.Name, r.Detail))
	}
	return services.Wrap(services.ErrValidation, "preflight", "", strings.Join(parts, "; "), nil)
}

func printSummary(out io.Writer, result encoding.Result, accepted bool) {
	last := result.Attempts[len(result.Attempts)-1]
	verdict := "fits"
	if !accepted {
		verdict = "over budget"
	}
	fmt.Fprintf(out, "%s -> %s\n", filepath.Base(result.Plan.Input), filepath.Base(result.Plan.Output))
	fmt.Fprintf(out, "  size:     %s of %s (%s)\n",
		humanize.Bytes(uint64(max(result.FinalSize, 0))),
		humanize.Bytes(uint64(max(result.Plan.BudgetBytes, 0))),
		verdict)
	fmt.Fprintf(out, "  attempts: %d (final video %.1f kbps, audio %.1f kbps)\n",
		len(result.Attempts), last.VideoKbps, last.AudioKbps)
	if result.DeletedOriginal {
		fmt.Fprintln(out, "  original deleted")
	}
}
