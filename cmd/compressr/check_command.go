package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"compressr/internal/preflight"
	"compressr/internal/services"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check [input]",
		Short: "Verify ffmpeg, ffprobe and the working directories",
		Long: "Verify that ffmpeg and ffprobe resolve and run, and that the log and state\n" +
			"directories are writable. With an input, also check the output directory\n" +
			"and that it has room for one output at the size budget.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			var input string
			if len(args) == 1 {
				input = args[0]
			}

			out := cmd.OutOrStdout()
			colorize := isTerminal(out)
			results := preflight.RunAll(cmd.Context(), cfg, input)
			for _, r := range results {
				fmt.Fprintln(out, renderStatusLine(r.Name, statusFor(r.Passed), r.Detail, colorize))
			}
			if !cfg.History.Enabled {
				fmt.Fprintln(out, renderStatusLine("Run history", statusWarn, "disabled", colorize))
			}

			if failed := preflight.Failed(results); len(failed) > 0 {
				return services.Wrap(services.ErrValidation, "check", "", fmt.Sprintf("%d of %d checks failed", len(failed), len(results)), nil)
			}
			return nil
		},
	}
}
