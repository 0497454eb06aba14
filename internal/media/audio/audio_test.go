package audio

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

func writeSilentWAV(t *testing.T, path string, sampleRate int, seconds float64) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create wav: %v", err)
	}
	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	samples := int(float64(sampleRate) * seconds)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           make([]int, samples),
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("encode wav: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close encoder: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close wav: %v", err)
	}
}

func TestPlanChunks(t *testing.T) {
	tests := []struct {
		name    string
		total   time.Duration
		chunk   time.Duration
		lengths []time.Duration
	}{
		{name: "zero", total: 0, chunk: time.Minute, lengths: nil},
		{name: "shorter than chunk", total: 45 * time.Second, chunk: time.Minute, lengths: []time.Duration{45 * time.Second}},
		{name: "exact multiple", total: 2 * time.Minute, chunk: time.Minute, lengths: []time.Duration{time.Minute, time.Minute}},
		{name: "remainder", total: 150 * time.Second, chunk: time.Minute, lengths: []time.Duration{time.Minute, time.Minute, 30 * time.Second}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			windows, err := PlanChunks(tt.total, tt.chunk)
			if err != nil {
				t.Fatalf("PlanChunks: %v", err)
			}
			if len(windows) != len(tt.lengths) {
				t.Fatalf("expected %d windows, got %d", len(tt.lengths), len(windows))
			}
			var cursor time.Duration
			for i, w := range windows {
				if w.Index != i {
					t.Fatalf("window %d has index %d", i, w.Index)
				}
				if w.Start != cursor {
					t.Fatalf("window %d starts at %s, want %s", i, w.Start, cursor)
				}
				if w.Length != tt.lengths[i] {
					t.Fatalf("window %d length %s, want %s", i, w.Length, tt.lengths[i])
				}
				cursor = w.End()
			}
			if len(windows) > 0 && cursor != tt.total {
				t.Fatalf("windows cover %s, want %s", cursor, tt.total)
			}
		})
	}
}

func TestPlanChunksRejectsNonPositiveChunk(t *testing.T) {
	if _, err := PlanChunks(time.Minute, 0); err == nil {
		t.Fatal("expected error for zero chunk length")
	}
}

func TestInspectReadsWAVDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "speech.wav")
	writeSilentWAV(t, path, 16000, 2.5)

	info, err := Inspect(path)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if info.SampleRate != 16000 || info.Channels != 1 || info.BitDepth != 16 {
		t.Fatalf("unexpected format: %+v", info)
	}
	if info.Duration != 2500*time.Millisecond {
		t.Fatalf("expected 2.5s, got %s", info.Duration)
	}
}

func TestDurationRejectsNonWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.wav")
	if err := os.WriteFile(path, []byte("definitely not riff data"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Duration(path); err == nil {
		t.Fatal("expected error for invalid wav")
	}
	if _, err := Duration(filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Fatal("expected error for missing wav")
	}
}

func TestExtractBuildsFFmpegArgs(t *testing.T) {
	ext := NewExtractor("/opt/ffmpeg", 16000, 1)
	var gotName string
	var gotArgs []string
	ext.WithCommandRunner(func(_ context.Context, name string, args ...string) error {
		gotName = name
		gotArgs = args
		return nil
	})

	dest := filepath.Join(t.TempDir(), "work", "talk.wav")
	if err := ext.Extract(context.Background(), "talk.mp4", dest); err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if gotName != "/opt/ffmpeg" {
		t.Fatalf("unexpected binary %q", gotName)
	}
	want := []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-i", "talk.mp4",
		"-map", "0:a:0", "-vn", "-sn", "-dn",
		"-ac", "1", "-ar", "16000", "-c:a", "pcm_s16le",
		dest,
	}
	if !reflect.DeepEqual(gotArgs, want) {
		t.Fatalf("unexpected args:\n got %v\nwant %v", gotArgs, want)
	}
	if _, err := os.Stat(filepath.Dir(dest)); err != nil {
		t.Fatalf("expected destination dir created: %v", err)
	}
}

func TestExtractPropagatesRunnerError(t *testing.T) {
	ext := NewExtractor("", 0, 0)
	ext.WithCommandRunner(func(context.Context, string, ...string) error {
		return errors.New("Invalid data found when processing input")
	})
	err := ext.Extract(context.Background(), "broken.mp4", filepath.Join(t.TempDir(), "out.wav"))
	if err == nil || !strings.Contains(err.Error(), "Invalid data") {
		t.Fatalf("expected ffmpeg error, got %v", err)
	}
}

func TestSplitCutsEveryWindow(t *testing.T) {
	dir := t.TempDir()
	wavPath := filepath.Join(dir, "lecture.wav")
	writeSilentWAV(t, wavPath, 8000, 5)

	ext := NewExtractor("ffmpeg", 8000, 1)
	var seeks []string
	ext.WithCommandRunner(func(_ context.Context, name string, args ...string) error {
		for i, arg := range args {
			if arg == "-ss" {
				seeks = append(seeks, args[i+1]+"/"+args[i+3])
			}
		}
		return os.WriteFile(args[len(args)-1], nil, 0o644)
	})

	chunks, err := ext.Split(context.Background(), wavPath, 2*time.Second, filepath.Join(dir, "chunks"))
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	wantSeeks := []string{"0.000/2.000", "2.000/2.000", "4.000/1.000"}
	if !reflect.DeepEqual(seeks, wantSeeks) {
		t.Fatalf("unexpected seeks %v", seeks)
	}
	if filepath.Base(chunks[2].Path) != "lecture_chunk_2.wav" {
		t.Fatalf("unexpected chunk name %s", chunks[2].Path)
	}
	if _, err := os.Stat(chunks[0].Path); err != nil {
		t.Fatalf("expected chunk file: %v", err)
	}
}
