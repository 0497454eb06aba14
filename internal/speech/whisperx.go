package speech

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	langpkg "vidscribe/internal/language"
	"vidscribe/internal/services"
)

// ProviderWhisperX is the name reported by the local WhisperX recognizer.
const ProviderWhisperX = "whisperx"

const (
	uvxCommand           = "uvx"
	whisperXDefaultModel = "large-v3"
	vadSilero            = "silero"
	vadPyannote          = "pyannote"
	pypiIndex            = "https://pypi.org/simple"
	torchCUDAIndex       = "https://download.pytorch.org/whl/cu128"
)

// Decoding settings passed to every WhisperX run. Chunk size is WhisperX's
// own VAD window, unrelated to the pipeline's chunk length.
var whisperXTuning = []string{
	"--batch_size", "4",
	"--chunk_size", "15",
	"--beam_size", "5",
	"--output_format", "json",
}

// WhisperXConfig captures runtime settings for WhisperX.
type WhisperXConfig struct {
	Model       string
	CUDAEnabled bool
	// VADMethod is silero (default) or pyannote. pyannote needs HFToken.
	VADMethod string
	HFToken   string
	Language  string
	Timeout   time.Duration
}

// WhisperX transcribes each chunk by running the WhisperX CLI through uvx.
// No network service or API key is involved once the model is cached.
type WhisperX struct {
	cfg    WhisperXConfig
	runner func(ctx context.Context, name string, args ...string) error
}

func NewWhisperX(cfg WhisperXConfig) *WhisperX {
	return &WhisperX{cfg: cfg, runner: runUVX}
}

// WithCommandRunner replaces process execution, for tests.
func (w *WhisperX) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	w.runner = runner
}

func (w *WhisperX) Name() string { return ProviderWhisperX }

// Recognize writes WhisperX output to a temp dir beside audioPath, joins
// the segment texts, and removes the temp dir.
func (w *WhisperX) Recognize(ctx context.Context, audioPath string) (Result, error) {
	if strings.TrimSpace(audioPath) == "" {
		return Result{}, services.Wrap(services.ErrValidation, stageRecognize, ProviderWhisperX, "audio path required", nil)
	}
	outDir, err := os.MkdirTemp(filepath.Dir(audioPath), "whisperx-")
	if err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, stageRecognize, ProviderWhisperX, "create output dir", err)
	}
	defer os.RemoveAll(outDir)

	if w.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.cfg.Timeout)
		defer cancel()
	}
	if err := w.runner(ctx, uvxCommand, w.args(audioPath, outDir)...); err != nil {
		if ctx.Err() != nil {
			return Result{}, classifyTransport(ProviderWhisperX, ctx.Err())
		}
		return Result{}, services.Wrap(services.ErrExternalTool, stageRecognize, ProviderWhisperX, "run whisperx", err)
	}

	name := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath)) + ".json"
	segments, err := readSegments(filepath.Join(outDir, name))
	if err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, stageRecognize, ProviderWhisperX, "read whisperx output", err)
	}
	texts := make([]string, len(segments))
	for i, seg := range segments {
		texts[i] = seg.Text
	}
	text := joinTexts(texts)
	if text == "" {
		return Result{}, noSpeech(ProviderWhisperX, audioPath)
	}
	return Result{Text: text, Provider: ProviderWhisperX, Language: w.cfg.Language}, nil
}

func runUVX(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	// torch >= 2.6 defaults torch.load to weights_only, which the pyannote
	// checkpoints WhisperX loads do not support.
	if os.Getenv("TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD") == "" {
		cmd.Env = append(os.Environ(), "TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD=1")
	}
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// args builds: uvx <index flags> whisperx <audio> <model+tuning> <vad>
// [--language xx] <device flags>.
func (w *WhisperX) args(audioPath, outDir string) []string {
	index := []string{"--index-url", pypiIndex}
	device := []string{"--device", "cpu", "--compute_type", "float32"}
	if w.cfg.CUDAEnabled {
		index = []string{"--index-url", torchCUDAIndex, "--extra-index-url", pypiIndex}
		device = []string{"--device", "cuda"}
	}

	model := cmp.Or(w.cfg.Model, whisperXDefaultModel)
	vad := cmp.Or(w.cfg.VADMethod, vadSilero)

	args := append(index, "whisperx", audioPath, "--model", model, "--output_dir", outDir)
	args = append(args, whisperXTuning...)
	args = append(args, "--vad_method", vad)
	if vad == vadPyannote && w.cfg.HFToken != "" {
		args = append(args, "--hf_token", w.cfg.HFToken)
	}
	if iso := langpkg.ToISO2(w.cfg.Language); iso != "" {
		args = append(args, "--language", iso)
	}
	return append(args, device...)
}

// segment is one entry of WhisperX's JSON output.
type segment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

func readSegments(path string) ([]segment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc struct {
		Segments []segment `json:"segments"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse whisperx json: %w", err)
	}
	return doc.Segments, nil
}
