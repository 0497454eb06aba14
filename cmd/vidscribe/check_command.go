package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"vidscribe/internal/preflight"
	"vidscribe/internal/services"
	"vidscribe/internal/staging"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var online bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify external tools, directories, and provider credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg, preflight.Options{Online: online})

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			if ctx.configPath != "" {
				fmt.Fprintln(out, renderStatusLine("Config", statusInfo, ctx.configPath, colorize))
			}
			for _, r := range results {
				kind := statusOK
				if !r.Passed {
					kind = statusError
				}
				fmt.Fprintln(out, renderStatusLine(r.Name, kind, r.Detail, colorize))
			}

			leftovers, err := staging.ListDirectories(cfg.Paths.WorkDir)
			if err == nil && len(leftovers) > 0 {
				var size int64
				for _, dir := range leftovers {
					size += dir.Size
				}
				fmt.Fprintln(out, renderStatusLine("Leftover work dirs", statusWarn,
					fmt.Sprintf("%d using %s (removed after %dh)", len(leftovers), humanize.IBytes(uint64(size)), cfg.Workflow.StaleWorkHours), colorize))
			}

			if failed := preflight.Failed(results); len(failed) > 0 {
				return services.Wrap(services.ErrConfiguration, "", "check", fmt.Sprintf("%d of %d checks failed", len(failed), len(results)), nil)
			}
			fmt.Fprintln(out, "\nAll checks passed")
			return nil
		},
	}
	cmd.Flags().BoolVar(&online, "online", false, "Also verify the provider credential against its API")
	return cmd
}
