package main

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"vidscribe/internal/services"
	"vidscribe/internal/testsupport"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
	inputDir   string
	outputDir  string
	stateDir   string
}

type envOptions struct {
	provider  string
	googleURL string
}

func setupCLITestEnv(t *testing.T, opts envOptions) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("GOOGLE_SPEECH_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	env := &cliTestEnv{
		baseDir:    base,
		configPath: filepath.Join(base, "config.toml"),
		inputDir:   filepath.Join(base, "input"),
		outputDir:  filepath.Join(base, "output"),
		stateDir:   filepath.Join(base, "state"),
	}

	fixture := filepath.Join(base, "fixture.wav")
	writeFixtureWAV(t, fixture, 1.5)

	binDir := filepath.Join(base, "bin")
	ffmpeg := filepath.Join(binDir, "ffmpeg")
	ffprobe := filepath.Join(binDir, "ffprobe")
	testsupport.WriteScript(t, ffmpeg, fmt.Sprintf("for last; do :; done\ncp %q \"$last\"", fixture))
	testsupport.WriteScript(t, ffprobe, `printf '%s' '{"streams":[{"index":0,"codec_type":"video"},{"index":1,"codec_type":"audio","codec_name":"aac"}],"format":{"duration":"1.5"}}'`)

	googleURL := opts.googleURL
	if googleURL == "" {
		googleURL = "http://127.0.0.1:1"
	}
	provider := opts.provider
	if provider == "" {
		provider = "google"
	}

	content := fmt.Sprintf(`[paths]
input_dir = %q
output_dir = %q
work_dir = %q
state_dir = %q

[audio]
chunk_seconds = 1
ffmpeg_binary = %q
ffprobe_binary = %q

[speech]
provider = %q
retry_attempts = 1

[google]
api_key = "test-key"
base_url = %q

[output]
echo = true

[logging]
level = "error"
`, env.inputDir, env.outputDir, filepath.Join(base, "work"), env.stateDir, ffmpeg, ffprobe, provider, googleURL)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func writeFixtureWAV(t *testing.T, path string, seconds float64) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create wav: %v", err)
	}
	enc := wav.NewEncoder(f, 16000, 16, 1, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: 16000},
		Data:           make([]int, int(16000*seconds)),
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

// newGoogleServer answers every recognize call with text and counts requests.
func newGoogleServer(t *testing.T, text string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "speech:recognize") {
			http.NotFound(w, r)
			return
		}
		requests.Add(1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"results":[{"alternatives":[{"transcript":%q,"confidence":0.9}]}]}`, text)
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func TestTranscribeSingleVideo(t *testing.T) {
	srv, requests := newGoogleServer(t, "hello there")
	env := setupCLITestEnv(t, envOptions{googleURL: srv.URL})
	video := filepath.Join(env.inputDir, "lecture.mp4")
	testsupport.WriteFile(t, video, 2048)

	out, _, err := runCLI(t, []string{"transcribe", video}, env.configPath)
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	requireContains(t, out, "=== Transcript ===\nhello there hello there\n==================")
	transcriptPath := filepath.Join(env.outputDir, "lecture_transcript.txt")
	requireContains(t, out, "Transcript saved to "+transcriptPath)

	data, err := os.ReadFile(transcriptPath)
	if err != nil {
		t.Fatalf("read transcript: %v", err)
	}
	if string(data) != "hello there hello there\n" {
		t.Fatalf("transcript = %q", data)
	}
	if n := requests.Load(); n != 2 {
		t.Fatalf("expected 2 recognition requests, got %d", n)
	}

	out, _, err = runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "lecture.mp4")
	requireContains(t, out, "succeeded")

	out, _, err = runCLI(t, []string{"history", "clear"}, env.configPath)
	if err != nil {
		t.Fatalf("history clear: %v", err)
	}
	requireContains(t, out, "Removed 1 run(s)")
}

func TestTranscribeAppendAndQuiet(t *testing.T) {
	srv, _ := newGoogleServer(t, "again")
	env := setupCLITestEnv(t, envOptions{googleURL: srv.URL})
	video := filepath.Join(env.inputDir, "talk.mp4")
	testsupport.WriteFile(t, video, 2048)
	target := filepath.Join(env.baseDir, "custom.txt")
	if err := os.WriteFile(target, []byte("existing"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}

	out, _, err := runCLI(t, []string{"transcribe", video, "--output", target, "--append", "--quiet"}, env.configPath)
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if strings.Contains(out, "=== Transcript ===") {
		t.Fatalf("--quiet should suppress echo, got %q", out)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read transcript: %v", err)
	}
	if string(data) != "existing\nagain again\n" {
		t.Fatalf("transcript = %q", data)
	}
}

func TestTranscribeMissingVideo(t *testing.T) {
	env := setupCLITestEnv(t, envOptions{})
	missing := filepath.Join(env.inputDir, "absent.mp4")

	_, _, err := runCLI(t, []string{"transcribe", missing}, env.configPath)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	requireContains(t, err.Error(), "video file not found: "+missing)
	if code := services.ExitCode(err); code != services.ExitNotFound {
		t.Fatalf("exit code = %d", code)
	}
}

func TestTranscribeBatchWithoutVideos(t *testing.T) {
	env := setupCLITestEnv(t, envOptions{})

	out, _, err := runCLI(t, []string{"transcribe"}, env.configPath)
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	requireContains(t, out, "No MP4 files found in "+env.inputDir)
}

func TestTranscribeBatchSummary(t *testing.T) {
	srv, _ := newGoogleServer(t, "batch text")
	env := setupCLITestEnv(t, envOptions{googleURL: srv.URL})
	testsupport.WriteFile(t, filepath.Join(env.inputDir, "one.mp4"), 512)
	testsupport.WriteFile(t, filepath.Join(env.inputDir, "TWO.MP4"), 512)
	testsupport.WriteFile(t, filepath.Join(env.inputDir, "readme.txt"), 16)

	out, _, err := runCLI(t, []string{"transcribe", "--quiet"}, env.configPath)
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	requireContains(t, out, "Processing complete: 2/2 videos processed successfully")
	for _, name := range []string{"one_transcript.txt", "TWO_transcript.txt"} {
		if _, err := os.Stat(filepath.Join(env.outputDir, name)); err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
	}
}

func TestTranscribeRejectsOutputForBatch(t *testing.T) {
	env := setupCLITestEnv(t, envOptions{})

	_, _, err := runCLI(t, []string{"transcribe", "--output", "x.txt"}, env.configPath)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if code := services.ExitCode(err); code != services.ExitUsage {
		t.Fatalf("exit code = %d", code)
	}
}

func TestTranscribeMissingCredential(t *testing.T) {
	env := setupCLITestEnv(t, envOptions{})

	_, _, err := runCLI(t, []string{"transcribe", "--provider", "openai"}, env.configPath)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	requireContains(t, err.Error(), "OPENAI_API_KEY")
}

func TestCompare(t *testing.T) {
	dir := t.TempDir()
	ref := filepath.Join(dir, "ref.txt")
	got := filepath.Join(dir, "got.txt")
	if err := os.WriteFile(ref, []byte("Hello World"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(got, []byte("hello world"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	out, _, err := runCLI(t, []string{"compare", ref, got}, "")
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	requireContains(t, out, "Accuracy: 100.00%")

	_, _, err = runCLI(t, []string{"compare", ref, filepath.Join(dir, "missing.txt")}, "")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCheckReportsMissingCredential(t *testing.T) {
	env := setupCLITestEnv(t, envOptions{provider: "openai"})

	out, _, err := runCLI(t, []string{"check"}, env.configPath)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	requireContains(t, out, "Speech provider (openai):")
	requireContains(t, out, "[ERROR]")
}

func TestHistoryStatsEmpty(t *testing.T) {
	env := setupCLITestEnv(t, envOptions{})

	out, _, err := runCLI(t, []string{"history", "stats"}, env.configPath)
	if err != nil {
		t.Fatalf("history stats: %v", err)
	}
	requireContains(t, out, "Runs:")
	requireContains(t, out, "[INFO] 0")

	out, _, err = runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "No runs recorded")
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t, envOptions{})

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	_, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected refusal to overwrite, got %v", err)
	}
}
