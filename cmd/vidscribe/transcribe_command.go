package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"vidscribe/internal/config"
	"vidscribe/internal/deps"
	"vidscribe/internal/history"
	"vidscribe/internal/language"
	"vidscribe/internal/logging"
	"vidscribe/internal/pipeline"
	"vidscribe/internal/services"
	"vidscribe/internal/speech"
	"vidscribe/internal/staging"
)

type transcribeOptions struct {
	output   string
	provider string
	language string
	append   bool
	quiet    bool
}

func newTranscribeCommand(ctx *commandContext) *cobra.Command {
	var opts transcribeOptions

	cmd := &cobra.Command{
		Use:   "transcribe [video...]",
		Short: "Transcribe videos (every *.mp4 in the input directory when none are given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := applyTranscribeOverrides(cfg, opts); err != nil {
				return err
			}
			if opts.output != "" && len(args) != 1 {
				return usageError("--output requires exactly one video argument")
			}
			if err := cfg.ValidateCredentials(); err != nil {
				return services.Wrap(services.ErrConfiguration, "", "credentials", "", err)
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			return runTranscribe(cmd, cfg, logger, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Transcript path (single video only)")
	cmd.Flags().StringVar(&opts.provider, "provider", "", "Speech provider override (google, openai, whisperx)")
	cmd.Flags().StringVarP(&opts.language, "language", "l", "", "Spoken language as a BCP 47 tag (e.g. en-US)")
	cmd.Flags().BoolVar(&opts.append, "append", false, "Append to an existing transcript instead of overwriting it")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "Do not print the transcript after writing it")
	return cmd
}

func applyTranscribeOverrides(cfg *config.Config, opts transcribeOptions) error {
	if provider := strings.ToLower(strings.TrimSpace(opts.provider)); provider != "" {
		cfg.Speech.Provider = provider
	}
	if lang := strings.TrimSpace(opts.language); lang != "" {
		tag, err := language.Normalize(lang)
		if err != nil {
			return usageError("invalid --language %q: %v", lang, err)
		}
		cfg.Speech.Language = tag.BCP47
	}
	if opts.append {
		cfg.Output.Mode = config.OutputModeAppend
	}
	if opts.quiet {
		cfg.Output.Echo = false
	}
	if err := cfg.Validate(); err != nil {
		return services.Wrap(services.ErrConfiguration, "", "validate overrides", "", err)
	}
	return nil
}

func runTranscribe(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger, opts transcribeOptions, args []string) error {
	runCtx := cmd.Context()
	out := cmd.OutOrStdout()

	if err := requireTools(cfg); err != nil {
		return err
	}

	staleAge := time.Duration(cfg.Workflow.StaleWorkHours) * time.Hour
	staging.CleanStale(runCtx, cfg.Paths.WorkDir, staleAge, logger)

	recognizer, err := speech.New(runCtx, cfg, logger)
	if err != nil {
		return err
	}

	pipelineOpts := []pipeline.Option{pipeline.WithEcho(out)}
	if cfg.History.Enabled {
		store, err := history.Open(runCtx, cfg.HistoryPath())
		if err != nil {
			logging.WarnWithContext(logger, "run history unavailable", "history_unavailable",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check state_dir permissions or set history.enabled = false"),
				logging.String(logging.FieldImpact, "this run will not appear in `vidscribe history`"),
			)
		} else {
			defer store.Close()
			pipelineOpts = append(pipelineOpts, pipeline.WithHistory(store))
		}
	}

	processor, err := pipeline.New(cfg, logger, recognizer, pipelineOpts...)
	if err != nil {
		return err
	}

	switch len(args) {
	case 0:
		summary, err := processor.ProcessBatch(runCtx, cfg.Paths.InputDir, cfg.Paths.OutputDir)
		if err != nil {
			return err
		}
		if summary.Total == 0 {
			fmt.Fprintf(out, "No MP4 files found in %s\n", cfg.Paths.InputDir)
			return nil
		}
		printSummary(cmd, summary)
		return summary.Err()
	case 1:
		video, err := config.ExpandPath(args[0])
		if err != nil {
			return usageError("resolve video path: %v", err)
		}
		output := ""
		if opts.output != "" {
			if output, err = config.ExpandPath(opts.output); err != nil {
				return usageError("resolve output path: %v", err)
			}
		}
		outcome, err := processor.ProcessFile(runCtx, video, output)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Transcript saved to %s\n", outcome.OutputPath)
		return nil
	default:
		videos := make([]string, 0, len(args))
		for _, arg := range args {
			video, err := config.ExpandPath(arg)
			if err != nil {
				return usageError("resolve video path: %v", err)
			}
			videos = append(videos, video)
		}
		summary := processor.ProcessFiles(runCtx, videos, cfg.Paths.OutputDir)
		printSummary(cmd, summary)
		return summary.Err()
	}
}

// requireTools fails before any work starts when ffmpeg, ffprobe, or (for
// WhisperX) uvx cannot be found.
func requireTools(cfg *config.Config) error {
	statuses := deps.CheckBinaries(deps.MediaRequirements(
		cfg.Audio.FFmpegBinary,
		cfg.Audio.FFprobeBinary,
		cfg.Speech.Provider == config.ProviderWhisperX,
	))
	missing := deps.Missing(statuses)
	if len(missing) == 0 {
		return nil
	}
	names := make([]string, 0, len(missing))
	for _, status := range missing {
		names = append(names, fmt.Sprintf("%s (%s)", status.Name, status.Detail))
	}
	return services.Wrap(services.ErrConfiguration, "", "check tools",
		"missing required tools: "+strings.Join(names, ", ")+"; run `vidscribe check` for details", nil)
}

func printSummary(cmd *cobra.Command, summary pipeline.Summary) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	fmt.Fprintln(out)
	for _, result := range summary.Results {
		if result.Err == nil {
			fmt.Fprintln(out, renderStatusLine(displayName(result.Source), statusOK, result.OutputPath, colorize))
			continue
		}
		fmt.Fprintln(out, renderStatusLine(displayName(result.Source), statusError, firstLine(result.Err.Error()), colorize))
	}
	fmt.Fprintf(out, "\nProcessing complete: %s\n", summary)
}
