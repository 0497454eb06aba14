package pipeline_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/gofrs/flock"

	"vidscribe/internal/media/ffprobe"
	"vidscribe/internal/pipeline"
	"vidscribe/internal/services"
	"vidscribe/internal/testsupport"
)

func TestListVideos(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.mp4", "A.MP4", "notes.txt", "clip.mkv"} {
		testsupport.WriteFile(t, filepath.Join(dir, name), 1)
	}
	if err := os.Mkdir(filepath.Join(dir, "nested.mp4"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	videos, err := pipeline.ListVideos(dir)
	if err != nil {
		t.Fatalf("ListVideos: %v", err)
	}
	want := []string{filepath.Join(dir, "A.MP4"), filepath.Join(dir, "b.mp4")}
	if !reflect.DeepEqual(videos, want) {
		t.Fatalf("videos = %v, want %v", videos, want)
	}
}

func TestProcessBatchCountsSuccesses(t *testing.T) {
	silentForB := func(_ context.Context, _, path string) (ffprobe.Result, error) {
		if strings.HasSuffix(path, "b.mp4") {
			return ffprobe.Result{Streams: []ffprobe.Stream{{CodecType: "video"}}}, nil
		}
		return audioProbe(context.Background(), "", path)
	}
	h := newHarness(t, []chunkReply{{text: "first"}}, pipeline.WithProber(silentForB))
	testsupport.WriteFile(t, filepath.Join(h.cfg.Paths.InputDir, "b.mp4"), 1024)

	summary, err := h.processor.ProcessBatch(context.Background(), h.cfg.Paths.InputDir, h.cfg.Paths.OutputDir)
	if err != nil {
		t.Fatalf("ProcessBatch: %v", err)
	}
	if summary.Total != 2 || summary.Succeeded != 1 || summary.Failed() != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if got := summary.String(); got != "1/2 videos processed successfully" {
		t.Fatalf("summary string = %q", got)
	}
	if !errors.Is(summary.Err(), services.ErrValidation) {
		t.Fatalf("expected summary error to carry ErrValidation, got %v", summary.Err())
	}

	out := filepath.Join(h.cfg.Paths.OutputDir, "lecture_transcript.txt")
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read transcript: %v", err)
	}
	if string(data) != "first\n" {
		t.Fatalf("transcript = %q", data)
	}
	if _, err := os.Stat(filepath.Join(h.cfg.Paths.OutputDir, "b_transcript.txt")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("failed video should have no transcript, stat err = %v", err)
	}
}

func TestProcessBatchEmptyDirectory(t *testing.T) {
	h := newHarness(t, nil)
	input := filepath.Join(testsupport.BaseDir(h.cfg), "empty-input")
	output := filepath.Join(testsupport.BaseDir(h.cfg), "fresh-output")

	summary, err := h.processor.ProcessBatch(context.Background(), input, output)
	if err != nil {
		t.Fatalf("ProcessBatch: %v", err)
	}
	if summary.Total != 0 || summary.Err() != nil {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.String() != "no videos found" {
		t.Fatalf("summary string = %q", summary.String())
	}
	for _, dir := range []string{input, output} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected %s to be created, err = %v", dir, err)
		}
	}
}

func TestProcessBatchRejectsConcurrentRun(t *testing.T) {
	h := newHarness(t, nil)
	lockPath := h.cfg.LockPath()
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	held := flock.New(lockPath)
	ok, err := held.TryLock()
	if err != nil || !ok {
		t.Fatalf("TryLock: ok=%v err=%v", ok, err)
	}
	t.Cleanup(func() { _ = held.Unlock() })

	_, err = h.processor.ProcessBatch(context.Background(), h.cfg.Paths.InputDir, h.cfg.Paths.OutputDir)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if !strings.Contains(err.Error(), "already running") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestProcessFilesStopsOnCancel(t *testing.T) {
	h := newHarness(t, []chunkReply{{text: "x"}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	videos := []string{h.video, filepath.Join(h.cfg.Paths.InputDir, "other.mp4")}
	summary := h.processor.ProcessFiles(ctx, videos, h.cfg.Paths.OutputDir)
	if summary.Total != 2 || summary.Succeeded != 0 || len(summary.Results) != 2 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if !errors.Is(summary.Err(), context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", summary.Err())
	}
	if len(h.extractor.extracted) != 0 {
		t.Fatal("no video should be extracted after cancel")
	}
}
