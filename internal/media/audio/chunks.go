package audio

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Window is a contiguous time range of an audio file.
type Window struct {
	Index  int
	Start  time.Duration
	Length time.Duration
}

// End returns the exclusive end offset of the window.
func (w Window) End() time.Duration {
	return w.Start + w.Length
}

// Chunk is a window that has been written to disk.
type Chunk struct {
	Window
	Path string
}

// PlanChunks divides total into ceil(total/chunk) windows. Every window is
// chunk long except the last, which holds the remainder.
func PlanChunks(total, chunk time.Duration) ([]Window, error) {
	if chunk <= 0 {
		return nil, fmt.Errorf("plan chunks: chunk length must be positive, got %s", chunk)
	}
	if total <= 0 {
		return nil, nil
	}
	count := int((total + chunk - 1) / chunk)
	windows := make([]Window, 0, count)
	for i := 0; i < count; i++ {
		start := time.Duration(i) * chunk
		length := chunk
		if remaining := total - start; remaining < length {
			length = remaining
		}
		windows = append(windows, Window{Index: i, Start: start, Length: length})
	}
	return windows, nil
}

// ChunkPath returns the file name used for window i of wavPath inside dir.
func ChunkPath(wavPath, dir string, index int) string {
	base := strings.TrimSuffix(filepath.Base(wavPath), filepath.Ext(wavPath))
	return filepath.Join(dir, fmt.Sprintf("%s_chunk_%d.wav", base, index))
}

// Cut writes a single window of wavPath into dir.
func (e *Extractor) Cut(ctx context.Context, wavPath string, window Window, dir string) (Chunk, error) {
	dest := ChunkPath(wavPath, dir, window.Index)
	if err := e.ExtractSegment(ctx, wavPath, window.Start, window.Length, dest); err != nil {
		return Chunk{}, fmt.Errorf("cut chunk %d: %w", window.Index, err)
	}
	return Chunk{Window: window, Path: dest}, nil
}

// Split measures wavPath and writes every chunk into dir.
func (e *Extractor) Split(ctx context.Context, wavPath string, chunk time.Duration, dir string) ([]Chunk, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("split audio: output directory required")
	}
	total, err := Duration(wavPath)
	if err != nil {
		return nil, fmt.Errorf("split audio: %w", err)
	}
	windows, err := PlanChunks(total, chunk)
	if err != nil {
		return nil, fmt.Errorf("split audio: %w", err)
	}
	chunks := make([]Chunk, 0, len(windows))
	for _, window := range windows {
		if err := ctx.Err(); err != nil {
			return chunks, err
		}
		c, err := e.Cut(ctx, wavPath, window, dir)
		if err != nil {
			return chunks, err
		}
		chunks = append(chunks, c)
	}
	return chunks, nil
}
