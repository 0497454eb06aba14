// Package staging manages the per-run working directories that hold
// extracted audio and chunk files while a video is transcribed.
package staging

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"vidscribe/internal/logging"
)

// RunDirPrefix marks directories created by NewRunDir. Nothing else in the
// work dir is touched.
const RunDirPrefix = "run-"

// NewRunDir creates <workDir>/run-<requestID>.
func NewRunDir(workDir, requestID string) (string, error) {
	workDir, requestID = strings.TrimSpace(workDir), strings.TrimSpace(requestID)
	switch {
	case workDir == "":
		return "", errors.New("create run dir: work dir required")
	case requestID == "":
		return "", errors.New("create run dir: request id required")
	}
	dir := filepath.Join(workDir, RunDirPrefix+requestID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create run dir: %w", err)
	}
	return dir, nil
}

// DirInfo describes one run directory.
type DirInfo struct {
	Name    string
	Path    string
	ModTime time.Time
	Size    int64 // bytes of regular files inside, filled by ListDirectories
}

// runDirs lists the run directories in workDir. A missing or blank work dir
// has none.
func runDirs(workDir string) ([]DirInfo, error) {
	workDir = strings.TrimSpace(workDir)
	if workDir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(workDir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var dirs []DirInfo
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), RunDirPrefix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue // removed while listing
		}
		dirs = append(dirs, DirInfo{Name: e.Name(), Path: filepath.Join(workDir, e.Name()), ModTime: info.ModTime()})
	}
	return dirs, nil
}

// CleanStaleResult lists what CleanStale removed and what it could not.
type CleanStaleResult struct {
	Removed []string
	Errors  []error
}

// CleanStale deletes run directories last modified more than maxAge ago.
// These are left by runs killed before their own cleanup. maxAge <= 0
// turns cleanup off.
func CleanStale(ctx context.Context, workDir string, maxAge time.Duration, logger *slog.Logger) CleanStaleResult {
	var result CleanStaleResult
	if maxAge <= 0 {
		return result
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	dirs, err := runDirs(workDir)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Errorf("scan %s: %w", workDir, err))
		return result
	}

	cutoff := time.Now().Add(-maxAge)
	for _, d := range dirs {
		if ctx.Err() != nil {
			break
		}
		if !d.ModTime.Before(cutoff) {
			continue
		}
		if err := os.RemoveAll(d.Path); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("remove %s: %w", d.Path, err))
			logging.WarnWithContext(logger, "failed to remove stale work directory", "work_cleanup_failed",
				logging.String("path", d.Path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check paths.work_dir permissions"),
				logging.String(logging.FieldImpact, "disk space not reclaimed"),
			)
			continue
		}
		result.Removed = append(result.Removed, d.Path)
		logger.Info("removed stale work directory",
			logging.String(logging.FieldEventType, "work_cleanup"),
			logging.String("path", d.Path),
			logging.Duration("age", time.Since(d.ModTime).Round(time.Second)),
		)
	}
	return result
}

// ListDirectories reports every run directory in workDir with its size.
func ListDirectories(workDir string) ([]DirInfo, error) {
	dirs, err := runDirs(workDir)
	if err != nil {
		return nil, err
	}
	for i := range dirs {
		_ = filepath.WalkDir(dirs[i].Path, func(_ string, e fs.DirEntry, err error) error {
			if err != nil || e.IsDir() {
				return nil
			}
			if info, err := e.Info(); err == nil {
				dirs[i].Size += info.Size()
			}
			return nil
		})
	}
	return dirs, nil
}
