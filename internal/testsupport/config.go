package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"vidscribe/internal/config"
)

// ConfigOption adjusts a config built by NewConfig. base is the temp
// directory that holds every configured path.
type ConfigOption func(t testing.TB, cfg *config.Config, base string)

// NewConfig returns the default config with every directory moved under a
// fresh temp dir, a placeholder Google API key, and echo turned off.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Google.APIKey = "test"
	cfg.Output.Echo = false
	for dir, field := range map[string]*string{
		"input":  &cfg.Paths.InputDir,
		"output": &cfg.Paths.OutputDir,
		"work":   &cfg.Paths.WorkDir,
		"state":  &cfg.Paths.StateDir,
	} {
		*field = filepath.Join(base, dir)
	}
	for _, opt := range opts {
		opt(t, &cfg, base)
	}
	return &cfg
}

// WithStubbedBinaries puts do-nothing executables named names (ffmpeg and
// ffprobe when empty) first on PATH for the rest of the test.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(t testing.TB, _ *config.Config, base string) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "ffprobe"}
		}
		bin := filepath.Join(base, "bin")
		for _, name := range names {
			WriteScript(t, filepath.Join(bin, name), "exit 0")
		}
		t.Setenv("PATH", bin+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
}

// BaseDir returns the temp directory NewConfig placed cfg's paths under.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.WorkDir)
}
