package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Defaults used when the extractor is built with zero values.
const (
	DefaultSampleRate = 16000
	DefaultChannels   = 1
	FFmpegCommand     = "ffmpeg"
)

// CommandRunner executes an external command. Tests substitute a fake.
type CommandRunner func(ctx context.Context, name string, args ...string) error

// Extractor converts media into mono/stereo PCM WAV files via ffmpeg.
type Extractor struct {
	FFmpegBinary string
	SampleRate   int
	Channels     int

	runner CommandRunner
}

// NewExtractor returns an extractor with defaults filled in.
func NewExtractor(ffmpegBinary string, sampleRate, channels int) *Extractor {
	return &Extractor{
		FFmpegBinary: ffmpegBinary,
		SampleRate:   sampleRate,
		Channels:     channels,
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (e *Extractor) WithCommandRunner(runner CommandRunner) {
	e.runner = runner
}

// Extract pulls the first audio stream out of source and writes it to dest
// as 16-bit PCM WAV. Extraction and format conversion happen in one ffmpeg
// invocation.
func (e *Extractor) Extract(ctx context.Context, source, dest string) error {
	if strings.TrimSpace(source) == "" {
		return errors.New("extract audio: source path required")
	}
	if strings.TrimSpace(dest) == "" {
		return errors.New("extract audio: destination path required")
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("extract audio: ensure destination dir: %w", err)
	}
	args := e.buildArgs(source, -1, -1, dest)
	if err := e.run(ctx, args...); err != nil {
		return fmt.Errorf("ffmpeg extract: %w", err)
	}
	return nil
}

// ExtractSegment writes the [start, start+length) range of source to dest.
func (e *Extractor) ExtractSegment(ctx context.Context, source string, start, length time.Duration, dest string) error {
	if start < 0 {
		return fmt.Errorf("extract segment: invalid start %s", start)
	}
	if length <= 0 {
		return fmt.Errorf("extract segment: invalid duration %s", length)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("extract segment: ensure destination dir: %w", err)
	}
	args := e.buildArgs(source, start, length, dest)
	if err := e.run(ctx, args...); err != nil {
		return fmt.Errorf("ffmpeg extract segment: %w", err)
	}
	return nil
}

// buildArgs assembles the ffmpeg argument list. Negative start/length skip
// the seek and limit options.
func (e *Extractor) buildArgs(source string, start, length time.Duration, dest string) []string {
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
	}
	if start >= 0 && length > 0 {
		args = append(args,
			"-ss", formatSeconds(start),
			"-t", formatSeconds(length),
		)
	}
	args = append(args,
		"-i", source,
		"-map", "0:a:0",
		"-vn",
		"-sn",
		"-dn",
		"-ac", strconv.Itoa(e.channels()),
		"-ar", strconv.Itoa(e.sampleRate()),
		"-c:a", "pcm_s16le",
		dest,
	)
	return args
}

func (e *Extractor) run(ctx context.Context, args ...string) error {
	binary := strings.TrimSpace(e.FFmpegBinary)
	if binary == "" {
		binary = FFmpegCommand
	}
	if e.runner != nil {
		return e.runner(ctx, binary, args...)
	}
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

func (e *Extractor) sampleRate() int {
	if e.SampleRate > 0 {
		return e.SampleRate
	}
	return DefaultSampleRate
}

func (e *Extractor) channels() int {
	if e.Channels > 0 {
		return e.Channels
	}
	return DefaultChannels
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
}
