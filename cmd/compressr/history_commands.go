package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"compressr/internal/config"
	"compressr/internal/history"
	"compressr/internal/services"
)

const shortIDLength = 8

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List recent encode runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(ctx, func(store *history.Store) error {
				runs, err := store.Runs(cmd.Context(), limit)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}
				rows := make([][]string, 0, len(runs))
				for _, run := range runs {
					rows = append(rows, []string{
						shortID(run.ID),
						formatWhen(run.StartedAt),
						filepath.Base(run.Input),
						titleCase(string(run.Status)),
						strconv.Itoa(len(run.Attempts)),
						formatBytes(run.FinalSize),
						formatBytes(run.BudgetBytes),
					})
				}
				headers := []string{"ID", "Started", "Input", "Status", "Attempts", "Size", "Budget"}
				aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight}
				fmt.Fprintln(out, renderTable(headers, rows, aligns))
				return nil
			})
		},
	}
	historyCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list (0 for all)")
	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	return historyCmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one run and its attempts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(ctx, func(store *history.Store) error {
				run, err := store.Run(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if run == nil {
					return services.Wrap(services.ErrValidation, "history", "show", fmt.Sprintf("no run matches %q", args[0]), nil)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Run:      %s\n", run.ID)
				fmt.Fprintf(out, "Input:    %s\n", run.Input)
				fmt.Fprintf(out, "Output:   %s\n", run.Output)
				fmt.Fprintf(out, "Codec:    %s\n", run.Codec)
				fmt.Fprintf(out, "Status:   %s\n", titleCase(string(run.Status)))
				fmt.Fprintf(out, "Started:  %s\n", formatWhen(run.StartedAt))
				fmt.Fprintf(out, "Elapsed:  %s\n", formatElapsed(run.Elapsed()))
				fmt.Fprintf(out, "Budget:   %s\n", formatBytes(run.BudgetBytes))
				if run.ErrorMessage != "" {
					fmt.Fprintf(out, "Error:    %s\n", run.ErrorMessage)
				}
				if len(run.Attempts) == 0 {
					return nil
				}

				rows := make([][]string, 0, len(run.Attempts))
				for _, a := range run.Attempts {
					rows = append(rows, []string{
						strconv.Itoa(a.Index),
						fmt.Sprintf("%.1f", a.VideoKbps),
						fmt.Sprintf("%.1f", a.AudioKbps),
						formatBytes(a.SizeBytes),
						yesNo(a.Accepted),
					})
				}
				headers := []string{"Attempt", "Video kbps", "Audio kbps", "Size", "Accepted"}
				aligns := []columnAlignment{alignRight, alignRight, alignRight, alignRight, alignLeft}
				fmt.Fprintln(out)
				fmt.Fprintln(out, renderTable(headers, rows, aligns))
				return nil
			})
		},
	}
}

func withHistory(ctx *commandContext, fn func(*history.Store) error) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	if !cfg.History.Enabled {
		return services.Wrap(services.ErrConfiguration, "history", "", "run history is disabled (history.enabled = false)", nil)
	}
	store, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func openHistory(cfg *config.Config) (*history.Store, error) {
	store, err := history.Open(cfg)
	if err != nil {
		return nil, services.Wrap(services.ErrFilesystem, "history", "open", cfg.HistoryPath(), err)
	}
	return store, nil
}

func shortID(id string) string {
	if len(id) > shortIDLength {
		return id[:shortIDLength]
	}
	return id
}
