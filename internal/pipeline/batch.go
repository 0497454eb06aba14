package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gofrs/flock"

	"vidscribe/internal/logging"
	"vidscribe/internal/services"
	"vidscribe/internal/transcript"
)

// VideoExtension is the file extension batch mode picks up, compared
// case-insensitively.
const VideoExtension = ".mp4"

// FileResult is the outcome of one video within a batch.
type FileResult struct {
	Outcome
	Err error
}

// Summary aggregates a batch run.
type Summary struct {
	Total     int
	Succeeded int
	Results   []FileResult
}

// Failed returns the number of videos that did not produce a transcript.
func (s Summary) Failed() int {
	return s.Total - s.Succeeded
}

func (s Summary) String() string {
	if s.Total == 0 {
		return "no videos found"
	}
	return fmt.Sprintf("%d/%d videos processed successfully", s.Succeeded, s.Total)
}

// Err returns nil when every video succeeded. Otherwise it wraps the first
// failure so callers can classify the exit status.
func (s Summary) Err() error {
	for _, r := range s.Results {
		if r.Err != nil {
			return fmt.Errorf("%d of %d videos failed: %w", s.Failed(), s.Total, r.Err)
		}
	}
	return nil
}

// ListVideos returns the *.mp4 files directly inside dir, sorted by name.
func ListVideos(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	videos := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), VideoExtension) {
			videos = append(videos, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(videos)
	return videos, nil
}

// ProcessFiles transcribes each video in order into outputDir using the
// derived transcript name. One failure does not stop the rest.
func (p *Processor) ProcessFiles(ctx context.Context, videos []string, outputDir string) Summary {
	summary := Summary{Total: len(videos), Results: make([]FileResult, 0, len(videos))}
	for i, video := range videos {
		if err := ctx.Err(); err != nil {
			for _, rest := range videos[i:] {
				summary.Results = append(summary.Results, FileResult{Outcome: Outcome{Source: rest}, Err: err})
			}
			break
		}
		p.logger.Info("starting video",
			logging.Int("index", i+1),
			logging.Int("total", len(videos)),
			logging.String(logging.FieldSource, video),
		)
		outputPath := transcript.OutputPath(outputDir, video, p.cfg.Output.Suffix)
		outcome, err := p.ProcessFile(ctx, video, outputPath)
		if err == nil {
			summary.Succeeded++
		} else {
			logging.ErrorWithContext(p.logger, "video failed", "video_failed",
				logging.String(logging.FieldSource, video),
				logging.Error(err),
				logging.String(logging.FieldImpact, "no transcript written for this video"),
			)
		}
		summary.Results = append(summary.Results, FileResult{Outcome: outcome, Err: err})
	}
	return summary
}

// ProcessBatch transcribes every video in inputDir. The returned error covers
// setup failures only; per-video failures are reported in the Summary.
func (p *Processor) ProcessBatch(ctx context.Context, inputDir, outputDir string) (Summary, error) {
	for _, dir := range []string{inputDir, outputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Summary{}, services.Wrap(services.ErrConfiguration, "", "batch", "create directory "+dir, err)
		}
	}

	lockPath := p.cfg.LockPath()
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return Summary{}, services.Wrap(services.ErrConfiguration, "", "batch", "create state directory", err)
	}
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return Summary{}, services.Wrap(services.ErrExternalTool, "", "batch", "acquire lock", err)
	}
	if !ok {
		return Summary{}, services.Wrap(services.ErrValidation, "", "batch", "another vidscribe batch is already running", nil)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			p.logger.Warn("failed to release batch lock", logging.Error(err))
		}
	}()

	videos, err := ListVideos(inputDir)
	if err != nil {
		return Summary{}, services.Wrap(services.ErrConfiguration, "", "batch", "", err)
	}
	if len(videos) == 0 {
		p.logger.Info("no videos found",
			logging.String("input_dir", inputDir),
			logging.String("pattern", "*"+VideoExtension),
		)
		return Summary{}, nil
	}

	p.logger.Info("batch started",
		logging.String(logging.FieldEventType, "batch_start"),
		logging.String("input_dir", inputDir),
		logging.String("output_dir", outputDir),
		logging.Int("videos", len(videos)),
	)
	summary := p.ProcessFiles(ctx, videos, outputDir)
	p.logger.Info("batch completed",
		logging.String(logging.FieldEventType, "batch_complete"),
		logging.Int("succeeded", summary.Succeeded),
		logging.Int("failed", summary.Failed()),
	)
	if errors.Is(ctx.Err(), context.Canceled) {
		return summary, ctx.Err()
	}
	return summary, nil
}
