package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig []byte

const (
	defaultConfigLocation = "~/.config/vidscribe/config.toml"
	projectConfigName     = "vidscribe.toml"
)

// DefaultConfigPath is ~/.config/vidscribe/config.toml, made absolute.
func DefaultConfigPath() (string, error) {
	return ExpandPath(defaultConfigLocation)
}

// Load builds the effective configuration: defaults, then the TOML file,
// then .env files and environment variables for values the file left empty.
// The result is normalized and validated.
//
// With an explicit path a missing file is not an error; defaults are used.
// Without one the default location is tried, then ./vidscribe.toml.
// Load also returns the path it settled on and whether that file exists.
func Load(path string) (*Config, string, bool, error) {
	resolved, exists, err := locate(path)
	if err != nil {
		return nil, "", false, err
	}

	cfg := Default()
	if exists {
		data, err := os.ReadFile(resolved)
		if err != nil {
			return nil, "", false, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolved, err)
		}
	}
	if err := loadDotEnv(".", filepath.Dir(resolved)); err != nil {
		return nil, "", false, err
	}
	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolved, exists, nil
}

func locate(path string) (string, bool, error) {
	if path != "" {
		expanded, err := ExpandPath(path)
		if err != nil {
			return "", false, err
		}
		exists, err := isFile(expanded)
		return expanded, exists, err
	}

	fallback, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	project, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}
	for _, candidate := range []string{fallback, project} {
		if ok, _ := isFile(candidate); ok {
			return candidate, true, nil
		}
	}
	return fallback, false, nil
}

func isFile(path string) (bool, error) {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("stat config: %w", err)
	}
	return !info.IsDir(), nil
}

// loadDotEnv reads .env from each directory once. godotenv never overrides
// variables that are already set.
func loadDotEnv(dirs ...string) error {
	done := map[string]bool{}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		file, err := filepath.Abs(filepath.Join(dir, ".env"))
		if err != nil || done[file] {
			continue
		}
		done[file] = true
		if ok, _ := isFile(file); !ok {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return fmt.Errorf("load env file %s: %w", file, err)
		}
	}
	return nil
}

// ExpandPath resolves a leading ~ to the home directory and returns a
// cleaned absolute path. Blank input stays blank.
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if path == "~" || strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(home, path[1:])
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", path, err)
	}
	return abs, nil
}

// CreateSample writes the commented sample configuration to path.
func CreateSample(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, sampleConfig, 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// EnsureDirectories creates every configured directory, including the input
// directory so batch mode has somewhere to look.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.InputDir, c.Paths.OutputDir, c.Paths.WorkDir, c.Paths.StateDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// Files kept in the state directory.
func (c *Config) LogPath() string     { return filepath.Join(c.Paths.StateDir, "vidscribe.log") }
func (c *Config) HistoryPath() string { return filepath.Join(c.Paths.StateDir, "history.db") }
func (c *Config) LockPath() string    { return filepath.Join(c.Paths.StateDir, "vidscribe.lock") }
