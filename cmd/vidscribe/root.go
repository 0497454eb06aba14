package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	ctx := newCommandContext()

	root := &cobra.Command{
		Use:   "vidscribe",
		Short: "Transcribe the speech in video files",
		Long: "vidscribe extracts the audio track of MP4 videos with ffmpeg, sends it to a\n" +
			"speech recognizer in fixed-length chunks and writes the joined text next to\n" +
			"the configured output directory.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&ctx.flags.configPath, "config", "c", "", "Configuration file path")
	flags.StringVar(&ctx.flags.logLevel, "log-level", "", "Log level override (debug, info, warn, error)")
	flags.StringVar(&ctx.flags.logFormat, "log-format", "", "Log format override (console, json)")

	root.AddCommand(
		newTranscribeCommand(ctx),
		newCompareCommand(),
		newHistoryCommand(ctx),
		newCheckCommand(ctx),
		newConfigCommand(ctx),
	)
	return root
}
