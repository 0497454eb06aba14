package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"vidscribe/internal/config"
	"vidscribe/internal/fileutil"
	"vidscribe/internal/history"
	"vidscribe/internal/logging"
	"vidscribe/internal/media/audio"
	"vidscribe/internal/media/ffprobe"
	"vidscribe/internal/preflight"
	"vidscribe/internal/services"
	"vidscribe/internal/speech"
	"vidscribe/internal/staging"
	"vidscribe/internal/transcript"
)

// Stage names used in logs and wrapped errors.
const (
	StageProbe     = "probe"
	StageExtract   = "extract"
	StageRecognize = "recognize"
	StageWrite     = "write"
)

// wavHeaderBytes pads the free-space estimate for the RIFF header and rounding.
const wavHeaderBytes = 4096

// Extractor produces the WAV files the recognizer consumes.
type Extractor interface {
	Extract(ctx context.Context, source, dest string) error
	Cut(ctx context.Context, wavPath string, window audio.Window, dir string) (audio.Chunk, error)
}

// Prober inspects a media container.
type Prober func(ctx context.Context, binary, path string) (ffprobe.Result, error)

// Recorder persists one row per processed video.
type Recorder interface {
	Record(ctx context.Context, run *history.Run) error
}

// FreeSpaceFunc reports available bytes on the filesystem holding path.
type FreeSpaceFunc func(path string) (uint64, error)

// Outcome describes a processed video.
type Outcome struct {
	RequestID     string
	Source        string
	OutputPath    string
	Text          string
	ChunksTotal   int
	ChunksSkipped int
	AudioDuration time.Duration
	Elapsed       time.Duration
}

// Processor runs videos through extraction, recognition, and transcript writing.
type Processor struct {
	cfg        *config.Config
	logger     *slog.Logger
	recognizer speech.Recognizer
	extractor  Extractor
	probe      Prober
	history    Recorder
	echo       io.Writer
	freeSpace  FreeSpaceFunc
	now        func() time.Time
}

// Option customizes a Processor.
type Option func(*Processor)

// WithExtractor replaces the ffmpeg-backed extractor.
func WithExtractor(e Extractor) Option {
	return func(p *Processor) {
		if e != nil {
			p.extractor = e
		}
	}
}

// WithProber replaces ffprobe.Inspect.
func WithProber(fn Prober) Option {
	return func(p *Processor) {
		if fn != nil {
			p.probe = fn
		}
	}
}

// WithHistory records every run, successful or not.
func WithHistory(r Recorder) Option {
	return func(p *Processor) {
		p.history = r
	}
}

// WithEcho sets where finished transcripts are printed when echo is enabled.
func WithEcho(w io.Writer) Option {
	return func(p *Processor) {
		p.echo = w
	}
}

// WithFreeSpaceCheck replaces the statfs-based free space probe. A nil
// function disables the check.
func WithFreeSpaceCheck(fn FreeSpaceFunc) Option {
	return func(p *Processor) {
		p.freeSpace = fn
	}
}

// New builds a Processor. The recognizer is required.
func New(cfg *config.Config, logger *slog.Logger, recognizer speech.Recognizer, opts ...Option) (*Processor, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "", "build pipeline", "configuration required", nil)
	}
	if recognizer == nil {
		return nil, services.Wrap(services.ErrConfiguration, "", "build pipeline", "recognizer required", nil)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	p := &Processor{
		cfg:        cfg,
		logger:     logging.NewComponentLogger(logger, "pipeline"),
		recognizer: recognizer,
		extractor:  audio.NewExtractor(cfg.Audio.FFmpegBinary, cfg.Audio.SampleRate, cfg.Audio.Channels),
		probe:      ffprobe.Inspect,
		echo:       os.Stdout,
		freeSpace:  preflight.FreeBytes,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// ProcessFile transcribes videoPath into outputPath. An empty outputPath
// derives <output_dir>/<base><suffix> from the configuration.
func (p *Processor) ProcessFile(ctx context.Context, videoPath, outputPath string) (outcome Outcome, err error) {
	if strings.TrimSpace(outputPath) == "" {
		outputPath = transcript.OutputPath(p.cfg.Paths.OutputDir, videoPath, p.cfg.Output.Suffix)
	}
	outcome = Outcome{
		RequestID:  uuid.NewString(),
		Source:     videoPath,
		OutputPath: outputPath,
	}
	ctx = services.WithRequestID(ctx, outcome.RequestID)
	ctx = services.WithSource(ctx, videoPath)
	logger := logging.WithContext(ctx, p.logger)
	started := p.now()

	defer func() {
		outcome.Elapsed = p.now().Sub(started)
		p.record(ctx, logger, outcome, err)
	}()

	logger.Info("processing video",
		logging.String("output_path", outputPath),
		logging.String("provider", p.recognizer.Name()),
	)

	var probe ffprobe.Result
	if err = p.runStage(ctx, StageProbe, func(ctx context.Context, _ *slog.Logger) error {
		var stageErr error
		probe, stageErr = p.inspect(ctx, videoPath)
		return stageErr
	}); err != nil {
		return outcome, err
	}

	runDir, err := staging.NewRunDir(p.cfg.Paths.WorkDir, outcome.RequestID)
	if err != nil {
		return outcome, services.Wrap(services.ErrConfiguration, StageExtract, "create work dir", "", err)
	}
	defer func() {
		if rmErr := fileutil.RemoveIfExists(runDir); rmErr != nil {
			logging.WarnWithContext(logger, "work dir cleanup failed", "cleanup_failed",
				logging.String("path", runDir),
				logging.Error(rmErr),
				logging.String(logging.FieldImpact, "stale audio left in work dir until the next run"),
			)
		}
	}()

	wavPath := filepath.Join(runDir, baseName(videoPath)+"_audio.wav")
	var windows []audio.Window
	if err = p.runStage(ctx, StageExtract, func(ctx context.Context, stageLogger *slog.Logger) error {
		var stageErr error
		windows, outcome.AudioDuration, stageErr = p.extract(ctx, stageLogger, probe, videoPath, wavPath, runDir)
		return stageErr
	}); err != nil {
		return outcome, err
	}
	outcome.ChunksTotal = len(windows)

	if err = p.runStage(ctx, StageRecognize, func(ctx context.Context, stageLogger *slog.Logger) error {
		var stageErr error
		outcome.Text, outcome.ChunksSkipped, stageErr = p.recognize(ctx, stageLogger, wavPath, windows, runDir)
		return stageErr
	}); err != nil {
		return outcome, err
	}

	if err = p.runStage(ctx, StageWrite, func(ctx context.Context, _ *slog.Logger) error {
		return p.write(outputPath, outcome.Text)
	}); err != nil {
		return outcome, err
	}

	logger.Info("transcript written",
		logging.String(logging.FieldEventType, "transcript_written"),
		logging.String("output_path", outputPath),
		logging.Int("chunks_total", outcome.ChunksTotal),
		logging.Int("chunks_skipped", outcome.ChunksSkipped),
		logging.Int("characters", len(outcome.Text)),
	)
	if p.cfg.Output.Echo && p.echo != nil {
		fmt.Fprint(p.echo, "\n"+transcript.Banner(outcome.Text))
	}
	return outcome, nil
}

// runStage executes fn with stage-scoped context and logs its lifecycle.
func (p *Processor) runStage(ctx context.Context, stage string, fn func(context.Context, *slog.Logger) error) error {
	stageCtx := services.WithStage(ctx, stage)
	stageLogger := logging.WithContext(stageCtx, p.logger)
	started := p.now()

	stageLogger.Debug("stage started", logging.String(logging.FieldEventType, "stage_start"))
	if err := fn(stageCtx, stageLogger); err != nil {
		stageLogger.Error("stage failed",
			logging.String(logging.FieldEventType, "stage_failure"),
			logging.Duration("elapsed", p.now().Sub(started)),
			logging.Error(err),
		)
		return err
	}
	stageLogger.Debug("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("elapsed", p.now().Sub(started)),
	)
	return nil
}

func (p *Processor) inspect(ctx context.Context, videoPath string) (ffprobe.Result, error) {
	info, err := os.Stat(videoPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return ffprobe.Result{}, services.Wrap(services.ErrNotFound, StageProbe, "", "video file not found: "+videoPath, nil)
	case err != nil:
		return ffprobe.Result{}, services.Wrap(services.ErrValidation, StageProbe, "stat video", videoPath, err)
	case info.IsDir():
		return ffprobe.Result{}, services.Wrap(services.ErrValidation, StageProbe, "stat video", "not a file: "+videoPath, nil)
	}

	result, err := p.probe(ctx, p.cfg.Audio.FFprobeBinary, videoPath)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ffprobe.Result{}, ctxErr
		}
		return ffprobe.Result{}, services.Wrap(services.ErrExternalTool, StageProbe, "ffprobe", "unsupported or corrupt video", err)
	}
	stream, ok := result.FirstAudioStream()
	if !ok {
		return ffprobe.Result{}, services.Wrap(services.ErrValidation, StageProbe, "", "no audio track found in video", nil)
	}
	logging.WithContext(ctx, p.logger).Debug("video probed",
		logging.String("audio_codec", stream.CodecName),
		logging.Int("audio_channels", stream.Channels),
		logging.Int("audio_streams", result.AudioStreamCount()),
		logging.Int("video_streams", result.VideoStreamCount()),
		logging.String("size", humanize.IBytes(uint64(result.SizeBytes()))),
	)
	return result, nil
}

func (p *Processor) extract(ctx context.Context, logger *slog.Logger, probe ffprobe.Result, videoPath, wavPath, runDir string) ([]audio.Window, time.Duration, error) {
	if err := p.checkFreeSpace(logger, probe, runDir); err != nil {
		return nil, 0, err
	}
	if err := p.extractor.Extract(ctx, videoPath, wavPath); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, 0, ctxErr
		}
		return nil, 0, services.Wrap(services.ErrExternalTool, StageExtract, "ffmpeg", "audio extraction failed", err)
	}
	duration, err := audio.Duration(wavPath)
	if err != nil {
		return nil, 0, services.Wrap(services.ErrExternalTool, StageExtract, "read wav", "unsupported audio", err)
	}
	chunkLength := time.Duration(p.cfg.Audio.ChunkSeconds) * time.Second
	windows, err := audio.PlanChunks(duration, chunkLength)
	if err != nil {
		return nil, 0, services.Wrap(services.ErrConfiguration, StageExtract, "plan chunks", "", err)
	}
	if len(windows) == 0 {
		return nil, duration, services.Wrap(services.ErrNoSpeech, StageExtract, "", "extracted audio is empty", nil)
	}
	logger.Info("audio extracted",
		logging.Duration("audio_duration", duration),
		logging.Int("chunks", len(windows)),
	)
	return windows, duration, nil
}

// checkFreeSpace compares the estimated WAV size plus one chunk against the
// space left in the work dir. An unknown duration or probe failure skips it.
func (p *Processor) checkFreeSpace(logger *slog.Logger, probe ffprobe.Result, dir string) error {
	if p.freeSpace == nil {
		return nil
	}
	seconds := probe.DurationSeconds()
	if math.IsNaN(seconds) || seconds <= 0 {
		return nil
	}
	bytesPerSecond := float64(p.cfg.Audio.SampleRate * p.cfg.Audio.Channels * 2)
	chunkSeconds := math.Min(seconds, float64(p.cfg.Audio.ChunkSeconds))
	need := uint64((seconds+chunkSeconds)*bytesPerSecond) + wavHeaderBytes

	free, err := p.freeSpace(dir)
	if err != nil {
		logger.Debug("free space probe failed", logging.Error(err))
		return nil
	}
	if free < need {
		return services.Wrap(services.ErrValidation, StageExtract, "disk space",
			fmt.Sprintf("need %s in %s, %s available", humanize.IBytes(need), dir, humanize.IBytes(free)), nil)
	}
	return nil
}

// recognize cuts and transcribes each window in order. Chunk files are
// removed after their attempt regardless of the result.
func (p *Processor) recognize(ctx context.Context, logger *slog.Logger, wavPath string, windows []audio.Window, runDir string) (string, int, error) {
	texts := make([]string, 0, len(windows))
	skipped := 0
	for _, window := range windows {
		if err := ctx.Err(); err != nil {
			return "", skipped, err
		}
		chunkAttrs := []logging.Attr{
			logging.Int("chunk", window.Index+1),
			logging.Int("chunks_total", len(windows)),
			logging.Duration("offset", window.Start),
		}

		chunk, err := p.extractor.Cut(ctx, wavPath, window, runDir)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", skipped, ctxErr
			}
			skipped++
			logging.WarnWithContext(logger, "chunk extraction failed", "chunk_skipped",
				append(chunkAttrs,
					logging.Error(err),
					logging.String(logging.FieldImpact, "this part of the audio is missing from the transcript"),
				)...,
			)
			continue
		}

		result, err := p.recognizer.Recognize(ctx, chunk.Path)
		if rmErr := fileutil.RemoveIfExists(chunk.Path); rmErr != nil {
			logger.Debug("chunk cleanup failed", logging.String("path", chunk.Path), logging.Error(rmErr))
		}
		switch {
		case err == nil && strings.TrimSpace(result.Text) != "":
			texts = append(texts, strings.TrimSpace(result.Text))
			logger.Debug("chunk recognized", append(logging.Args(chunkAttrs...), logging.Int("characters", len(result.Text)))...)
		case err == nil, errors.Is(err, services.ErrNoSpeech):
			skipped++
			logger.Info("no speech recognized in chunk", logging.Args(chunkAttrs...)...)
		case ctx.Err() != nil:
			return "", skipped, ctx.Err()
		case errors.Is(err, services.ErrAuth):
			return "", skipped, err
		default:
			skipped++
			logging.WarnWithContext(logger, "chunk recognition failed", "chunk_skipped",
				append(chunkAttrs,
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check network connectivity and provider quota"),
					logging.String(logging.FieldImpact, "this part of the audio is missing from the transcript"),
				)...,
			)
		}
	}

	text := strings.Join(texts, " ")
	if text == "" {
		return "", skipped, services.Wrap(services.ErrNoSpeech, StageRecognize, "", "no text was transcribed", nil)
	}
	return text, skipped, nil
}

func (p *Processor) write(outputPath, text string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, StageWrite, "ensure output dir", "", err)
	}
	if err := transcript.Write(outputPath, text, p.cfg.Output.Mode); err != nil {
		return services.Wrap(services.ErrExternalTool, StageWrite, "write transcript", outputPath, err)
	}
	return nil
}

func (p *Processor) record(ctx context.Context, logger *slog.Logger, outcome Outcome, runErr error) {
	if p.history == nil {
		return
	}
	run := &history.Run{
		RequestID:     outcome.RequestID,
		SourcePath:    outcome.Source,
		OutputPath:    outcome.OutputPath,
		Provider:      p.recognizer.Name(),
		Language:      p.cfg.Speech.Language,
		Status:        history.StatusSucceeded,
		ChunksTotal:   outcome.ChunksTotal,
		ChunksSkipped: outcome.ChunksSkipped,
		Characters:    len(outcome.Text),
		AudioSeconds:  outcome.AudioDuration.Seconds(),
		Duration:      outcome.Elapsed,
	}
	if runErr != nil {
		run.Status = history.StatusFailed
		run.ErrorMessage = runErr.Error()
	}
	// A cancelled run still gets its row.
	recordCtx := context.WithoutCancel(ctx)
	if err := p.history.Record(recordCtx, run); err != nil {
		logger.Warn("failed to record run history",
			logging.String(logging.FieldEventType, "history_record_failed"),
			logging.Error(err),
		)
	}
}

func baseName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
