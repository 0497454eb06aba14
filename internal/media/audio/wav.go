package audio

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-audio/wav"
)

// Info summarizes a PCM WAV file.
type Info struct {
	SampleRate int
	Channels   int
	BitDepth   int
	Duration   time.Duration
}

// Inspect reads the WAV header of path and derives its playback duration
// from the PCM data size.
func Inspect(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("open wav: %w", err)
	}
	defer func() { _ = f.Close() }()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return Info{}, fmt.Errorf("read wav %s: not a valid PCM wav file", path)
	}
	if err := decoder.FwdToPCM(); err != nil {
		return Info{}, fmt.Errorf("read wav %s: %w", path, err)
	}

	info := Info{
		SampleRate: int(decoder.SampleRate),
		Channels:   int(decoder.NumChans),
		BitDepth:   int(decoder.BitDepth),
	}
	bytesPerSecond := info.SampleRate * info.Channels * info.BitDepth / 8
	if bytesPerSecond <= 0 {
		return info, errors.New("read wav: header reports zero byte rate")
	}
	info.Duration = time.Duration(float64(decoder.PCMSize) / float64(bytesPerSecond) * float64(time.Second))
	return info, nil
}

// Duration returns the playback length of a PCM WAV file.
func Duration(path string) (time.Duration, error) {
	info, err := Inspect(path)
	if err != nil {
		return 0, err
	}
	return info.Duration, nil
}
