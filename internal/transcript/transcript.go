// Package transcript writes recognized text to disk and scores it against
// reference text.
package transcript

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"vidscribe/internal/fileutil"
	"vidscribe/internal/textutil"
)

// Write modes.
const (
	ModeOverwrite = "overwrite"
	ModeAppend    = "append"
)

// DefaultSuffix is appended to the video base name to build the output file name.
const DefaultSuffix = "_transcript.txt"

const (
	bannerHeader = "=== Transcript ==="
	bannerFooter = "=================="
)

// OutputPath returns <outputDir>/<base><suffix> where base is the video file
// name without its extension.
func OutputPath(outputDir, videoPath, suffix string) string {
	if suffix == "" {
		suffix = DefaultSuffix
	}
	base := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	return filepath.Join(outputDir, base+suffix)
}

// Write stores text at path. Overwrite replaces any existing file; append
// adds text after existing content, starting on a new line.
func Write(path, text, mode string) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("write transcript: path required")
	}
	body := strings.TrimSpace(text) + "\n"
	switch mode {
	case "", ModeOverwrite:
		if err := fileutil.WriteFileAtomic(path, []byte(body), 0o644); err != nil {
			return fmt.Errorf("write transcript: %w", err)
		}
	case ModeAppend:
		sep, err := appendSeparator(path)
		if err != nil {
			return fmt.Errorf("write transcript: %w", err)
		}
		if err := fileutil.AppendFile(path, []byte(sep+body), 0o644); err != nil {
			return fmt.Errorf("write transcript: %w", err)
		}
	default:
		return fmt.Errorf("write transcript: unknown mode %q", mode)
	}
	return nil
}

// appendSeparator returns "\n" when existing content does not already end
// on a line break.
func appendSeparator(path string) (string, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()
	info, err := f.Stat()
	if err != nil {
		return "", err
	}
	if info.Size() == 0 {
		return "", nil
	}
	last := make([]byte, 1)
	if _, err := f.ReadAt(last, info.Size()-1); err != nil {
		return "", err
	}
	if last[0] == '\n' {
		return "", nil
	}
	return "\n", nil
}

// Banner frames text for terminal echo.
func Banner(text string) string {
	var b strings.Builder
	b.WriteString(bannerHeader)
	b.WriteByte('\n')
	b.WriteString(strings.TrimSpace(text))
	b.WriteByte('\n')
	b.WriteString(bannerFooter)
	b.WriteByte('\n')
	return b.String()
}

// Comparison reports how closely a transcript matches a reference.
type Comparison struct {
	// Accuracy is the case-insensitive character match ratio in [0,1].
	Accuracy float64
	// WordOverlap is the cosine similarity of the word frequency vectors.
	WordOverlap     float64
	ReferenceWords  int
	TranscriptWords int
}

// Compare returns the case-insensitive similarity of transcribed to
// reference in [0,1]. Either side being blank scores 0.
func Compare(reference, transcribed string) float64 {
	return CompareDetailed(reference, transcribed).Accuracy
}

// CompareDetailed computes every comparison measure.
func CompareDetailed(reference, transcribed string) Comparison {
	ref := strings.ToLower(strings.TrimSpace(reference))
	got := strings.ToLower(strings.TrimSpace(transcribed))
	cmp := Comparison{
		ReferenceWords:  len(textutil.Words(ref)),
		TranscriptWords: len(textutil.Words(got)),
	}
	if ref == "" || got == "" {
		return cmp
	}
	cmp.Accuracy = textutil.SequenceRatio(ref, got)
	cmp.WordOverlap = textutil.WordCosine(textutil.CountWords(ref), textutil.CountWords(got))
	return cmp
}
