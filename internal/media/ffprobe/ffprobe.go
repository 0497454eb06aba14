package ffprobe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// Entries requested from ffprobe; everything else is left out of the JSON.
const showEntries = "stream=index,codec_type,codec_name,sample_rate,channels:" +
	"format=duration,size,bit_rate,format_name"

// Result is the subset of ffprobe output the pipeline looks at.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream is one elementary stream inside the container.
type Stream struct {
	Index      int    `json:"index"`
	CodecType  string `json:"codec_type"` // video, audio, subtitle, data
	CodecName  string `json:"codec_name"`
	SampleRate string `json:"sample_rate"`
	Channels   int    `json:"channels"`
}

// Format holds container metadata. ffprobe prints the numbers as strings.
type Format struct {
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	BitRate    string `json:"bit_rate"`
	FormatName string `json:"format_name"`
}

// Inspect runs binary (ffprobe when blank) on path and parses its report.
// A failing probe returns an error carrying ffprobe's stderr.
func Inspect(ctx context.Context, binary, path string) (Result, error) {
	if strings.TrimSpace(path) == "" {
		return Result{}, errors.New("ffprobe: no input path")
	}
	if binary = strings.TrimSpace(binary); binary == "" {
		binary = "ffprobe"
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, //nolint:gosec
		"-v", "error", "-hide_banner",
		"-show_entries", showEntries,
		"-of", "json",
		"--", path,
	)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return Result{}, fmt.Errorf("ffprobe %s: %w: %s", path, err, msg)
		}
		return Result{}, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	return Parse(stdout.Bytes())
}

// Parse decodes an ffprobe JSON report.
func Parse(data []byte) (Result, error) {
	var r Result
	if err := json.Unmarshal(data, &r); err != nil {
		return Result{}, fmt.Errorf("decode ffprobe output: %w", err)
	}
	return r, nil
}

func (r Result) streamsOf(kind string) []Stream {
	var out []Stream
	for _, s := range r.Streams {
		if strings.EqualFold(s.CodecType, kind) {
			out = append(out, s)
		}
	}
	return out
}

func (r Result) VideoStreamCount() int { return len(r.streamsOf("video")) }

func (r Result) AudioStreamCount() int { return len(r.streamsOf("audio")) }

// FirstAudioStream is the stream ffmpeg's 0:a:0 selector picks.
func (r Result) FirstAudioStream() (Stream, bool) {
	if audio := r.streamsOf("audio"); len(audio) > 0 {
		return audio[0], true
	}
	return Stream{}, false
}

// DurationSeconds is the container duration. Missing means 0, garbage
// means NaN so callers can tell the two apart.
func (r Result) DurationSeconds() float64 {
	v, ok := number(r.Format.Duration)
	if !ok {
		return math.NaN()
	}
	return v
}

// SizeBytes is the container size, 0 when missing or invalid.
func (r Result) SizeBytes() int64 { return nonNegative(r.Format.Size) }

// BitRate is the overall bitrate in bits per second, 0 when missing or invalid.
func (r Result) BitRate() int64 { return nonNegative(r.Format.BitRate) }

// number parses s. Blank input is a valid zero.
func number(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	v, err := strconv.ParseFloat(s, 64)
	return v, err == nil
}

func nonNegative(s string) int64 {
	v, ok := number(s)
	if !ok || v < 0 {
		return 0
	}
	return int64(v)
}
