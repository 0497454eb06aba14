package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"vidscribe/internal/history"
	"vidscribe/internal/services"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently processed videos",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(ctx, cmd, func(store *history.Store) error {
				runs, err := store.List(cmd.Context(), limit)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}
				fmt.Fprintln(out, renderTable(
					[]string{"When", "Video", "Status", "Provider", "Chunks", "Skipped", "Chars", "Took", "ID"},
					historyRows(runs),
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft},
				))
				return nil
			})
		},
	}
	historyCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show")

	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	historyCmd.AddCommand(newHistoryStatsCommand(ctx))
	historyCmd.AddCommand(newHistoryClearCommand(ctx))
	return historyCmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one recorded run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(ctx, cmd, func(store *history.Store) error {
				run, err := store.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if run == nil {
					return services.Wrap(services.ErrNotFound, "", "history", "no run with id "+args[0], nil)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "ID:          %s\n", run.ID)
				fmt.Fprintf(out, "Request:     %s\n", run.RequestID)
				fmt.Fprintf(out, "Recorded:    %s\n", run.CreatedAt.Local().Format(time.RFC3339))
				fmt.Fprintf(out, "Video:       %s\n", run.SourcePath)
				fmt.Fprintf(out, "Transcript:  %s\n", run.OutputPath)
				fmt.Fprintf(out, "Provider:    %s (%s)\n", run.Provider, run.Language)
				fmt.Fprintf(out, "Status:      %s\n", run.Status)
				fmt.Fprintf(out, "Chunks:      %d (%d skipped)\n", run.ChunksTotal, run.ChunksSkipped)
				fmt.Fprintf(out, "Audio:       %s\n", formatSeconds(run.AudioSeconds))
				fmt.Fprintf(out, "Took:        %s\n", run.Duration.Round(time.Millisecond))
				if run.ErrorMessage != "" {
					fmt.Fprintf(out, "Error:       %s\n", run.ErrorMessage)
				}
				return nil
			})
		},
	}
}

func newHistoryStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize recorded runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(ctx, cmd, func(store *history.Store) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				fmt.Fprintln(out, renderStatusLine("Runs", statusInfo, strconv.Itoa(stats.Total), colorize))
				fmt.Fprintln(out, renderStatusLine("Succeeded", statusOK, strconv.Itoa(stats.Succeeded), colorize))
				failedKind := statusOK
				if stats.Failed > 0 {
					failedKind = statusWarn
				}
				fmt.Fprintln(out, renderStatusLine("Failed", failedKind, strconv.Itoa(stats.Failed), colorize))
				return nil
			})
		},
	}
}

func newHistoryClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every recorded run",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(ctx, cmd, func(store *history.Store) error {
				removed, err := store.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d run(s)\n", removed)
				return nil
			})
		},
	}
}

func withHistory(ctx *commandContext, cmd *cobra.Command, fn func(*history.Store) error) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	if !cfg.History.Enabled {
		fmt.Fprintln(cmd.OutOrStdout(), "Run history is disabled (history.enabled = false)")
		return nil
	}
	store, err := history.Open(cmd.Context(), cfg.HistoryPath())
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "", "open history", "", err)
	}
	defer store.Close()
	return fn(store)
}

func historyRows(runs []*history.Run) [][]string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			run.CreatedAt.Local().Format("2006-01-02 15:04"),
			truncate(displayName(run.SourcePath), 32),
			string(run.Status),
			run.Provider,
			strconv.Itoa(run.ChunksTotal),
			strconv.Itoa(run.ChunksSkipped),
			strconv.Itoa(run.Characters),
			run.Duration.Round(time.Second).String(),
			run.ID,
		})
	}
	return rows
}

func formatSeconds(seconds float64) string {
	return (time.Duration(seconds * float64(time.Second))).Round(time.Second).String()
}
