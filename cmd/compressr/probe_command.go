package main

import (
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"compressr/internal/encoding"
	"compressr/internal/media/ffprobe"
	"compressr/internal/services"
	"compressr/internal/services/ffmpeg"
)

func newProbeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "probe <input>",
		Short: "Show frame count, duration and the planned bitrates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.loggerFor(cfg)
			if err != nil {
				return err
			}

			runner := encoding.NewRunner(cfg, ffprobe.NewProber(cfg.FFprobeBinary()), ffmpeg.NewCLI(),
				encoding.WithLogger(logger))
			plan, err := runner.Plan(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			rows := [][]string{
				{"Input", plan.Input},
				{"Output", filepath.Base(plan.Output)},
				{"Duration", fmt.Sprintf("%.2f s", plan.DurationSeconds)},
				{"Frames", humanize.Comma(int64(plan.TotalFrames))},
				{"Budget", humanize.Bytes(uint64(plan.BudgetBytes))},
				{"Video", fmt.Sprintf("%s @ %.1f kbps", plan.Codecs.Video, plan.Bitrates.VideoKbps)},
				{"Audio", fmt.Sprintf("%s @ %.1f kbps", plan.Codecs.Audio, plan.Bitrates.AudioKbps)},
			}

			info, err := ffprobe.Inspect(cmd.Context(), cfg.FFprobeBinary(), plan.Input)
			if err != nil {
				return services.Wrap(services.ErrProbe, "probe", "inspect", plan.Input, err)
			}
			if stream, ok := info.VideoStream(); ok {
				rows = append(rows, []string{"Source video", fmt.Sprintf("%s %dx%d", stream.CodecName, stream.Width, stream.Height)})
			}
			rows = append(rows,
				[]string{"Source streams", fmt.Sprintf("%d video, %d audio", info.VideoStreamCount(), info.AudioStreamCount())},
				[]string{"Source size", humanize.Bytes(uint64(info.SizeBytes()))},
				[]string{"Source bitrate", fmt.Sprintf("%.1f kbps", float64(info.BitRate())/1000)},
			)

			fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, rows, []columnAlignment{alignLeft, alignLeft}))
			return nil
		},
	}
}
