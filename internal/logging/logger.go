package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"vidscribe/internal/config"
)

// Options controls New.
type Options struct {
	// Level is debug, info, warn or error. Unknown values mean info.
	Level string
	// Format is console (default) or json.
	Format string
	// Console receives every line. Nil means stderr; io.Discard silences it.
	Console io.Writer
	// File, when set, also receives every line in append mode.
	File string
}

// New builds a logger. Debug level also records the calling file and line.
func New(opts Options) (*slog.Logger, error) {
	level := parseLevel(opts.Level)

	out := opts.Console
	if out == nil {
		out = os.Stderr
	}
	if path := strings.TrimSpace(opts.File); path != "" {
		file, err := openLogFile(path)
		if err != nil {
			return nil, err
		}
		if out == io.Discard {
			out = file
		} else {
			out = io.MultiWriter(out, file)
		}
	}

	addSource := level <= slog.LevelDebug
	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "", "console":
		return slog.New(newConsoleHandler(out, level, addSource)), nil
	case "json":
		return slog.New(newJSONHandler(out, level, addSource)), nil
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}
}

// NewFromConfig logs to stderr and to vidscribe.log under the state directory.
func NewFromConfig(cfg *config.Config) (*slog.Logger, error) {
	if cfg == nil {
		return New(Options{})
	}
	opts := Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format}
	if strings.TrimSpace(cfg.Paths.StateDir) != "" {
		opts.File = cfg.LogPath()
	}
	return New(opts)
}

func parseLevel(level string) slog.Level {
	var l slog.Level
	switch v := strings.ToLower(strings.TrimSpace(level)); v {
	case "warning":
		return slog.LevelWarn
	case "fatal":
		return slog.LevelError
	default:
		if err := l.UnmarshalText([]byte(v)); err != nil {
			return slog.LevelInfo
		}
	}
	return l
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return file, nil
}

// JSON lines use "ts" in UTC RFC 3339, lowercase levels and file:line sources.
func newJSONHandler(w io.Writer, level slog.Leveler, addSource bool) slog.Handler {
	rewrite := func(_ []string, a slog.Attr) slog.Attr {
		switch a.Key {
		case slog.TimeKey:
			return slog.String("ts", a.Value.Time().UTC().Format(time.RFC3339))
		case slog.LevelKey:
			return slog.String(a.Key, strings.ToLower(a.Value.String()))
		case slog.SourceKey:
			if src, ok := a.Value.Any().(*slog.Source); ok && src != nil {
				return slog.String(a.Key, fmt.Sprintf("%s:%d", filepath.Base(src.File), src.Line))
			}
		}
		return a
	}
	return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level, AddSource: addSource, ReplaceAttr: rewrite})
}
