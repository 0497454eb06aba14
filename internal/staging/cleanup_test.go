package staging

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"vidscribe/internal/logging"
)

func TestNewRunDir(t *testing.T) {
	workDir := t.TempDir()
	dir, err := NewRunDir(workDir, "abc123")
	if err != nil {
		t.Fatalf("NewRunDir: %v", err)
	}
	if dir != filepath.Join(workDir, "run-abc123") {
		t.Fatalf("unexpected run dir %q", dir)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Fatalf("expected directory created, err=%v", err)
	}
	if _, err := NewRunDir(workDir, " "); err == nil {
		t.Fatal("expected error for empty request id")
	}
	if _, err := NewRunDir("", "abc"); err == nil {
		t.Fatal("expected error for empty work dir")
	}
}

func TestCleanStaleInvalidPaths(t *testing.T) {
	for _, dir := range []string{"", "   ", "/nonexistent/path/12345"} {
		result := CleanStale(context.Background(), dir, time.Hour, logging.NewNop())
		if len(result.Removed) != 0 || len(result.Errors) != 0 {
			t.Errorf("expected empty result for path %q", dir)
		}
	}
}

func TestCleanStaleRemovesOldRunDirectories(t *testing.T) {
	tmpDir := t.TempDir()
	oldTime := time.Now().Add(-2 * time.Hour)

	oldDir := filepath.Join(tmpDir, "run-old")
	foreignDir := filepath.Join(tmpDir, "keep-me")
	recentDir := filepath.Join(tmpDir, "run-recent")
	for _, dir := range []string{oldDir, foreignDir, recentDir} {
		if err := os.Mkdir(dir, 0o755); err != nil {
			t.Fatalf("create %s: %v", dir, err)
		}
	}
	for _, dir := range []string{oldDir, foreignDir} {
		if err := os.Chtimes(dir, oldTime, oldTime); err != nil {
			t.Fatalf("set old time: %v", err)
		}
	}

	result := CleanStale(context.Background(), tmpDir, time.Hour, logging.NewNop())

	if len(result.Removed) != 1 || result.Removed[0] != oldDir {
		t.Fatalf("expected only %s removed, got %v", oldDir, result.Removed)
	}
	if _, err := os.Stat(oldDir); !os.IsNotExist(err) {
		t.Error("old run directory should have been removed")
	}
	for _, dir := range []string{foreignDir, recentDir} {
		if _, err := os.Stat(dir); err != nil {
			t.Errorf("%s should still exist", dir)
		}
	}
}

func TestCleanStaleDisabledWithZeroAge(t *testing.T) {
	tmpDir := t.TempDir()
	oldDir := filepath.Join(tmpDir, "run-old")
	if err := os.Mkdir(oldDir, 0o755); err != nil {
		t.Fatalf("create dir: %v", err)
	}
	oldTime := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(oldDir, oldTime, oldTime); err != nil {
		t.Fatalf("set old time: %v", err)
	}
	result := CleanStale(context.Background(), tmpDir, 0, nil)
	if len(result.Removed) != 0 {
		t.Fatalf("expected no removals when disabled, got %v", result.Removed)
	}
}

func TestCleanStaleIgnoresFiles(t *testing.T) {
	tmpDir := t.TempDir()

	oldFile := filepath.Join(tmpDir, "run-file.wav")
	if err := os.WriteFile(oldFile, []byte("test"), 0o644); err != nil {
		t.Fatalf("create file: %v", err)
	}
	oldTime := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(oldFile, oldTime, oldTime); err != nil {
		t.Fatalf("set old time: %v", err)
	}

	result := CleanStale(context.Background(), tmpDir, time.Hour, logging.NewNop())
	if len(result.Removed) != 0 {
		t.Errorf("expected no removals for files, got %d", len(result.Removed))
	}
	if _, err := os.Stat(oldFile); err != nil {
		t.Error("file should not have been removed")
	}
}

func TestListDirectoriesInvalidPaths(t *testing.T) {
	for _, path := range []string{"", "/nonexistent/path/12345"} {
		dirs, err := ListDirectories(path)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", path, err)
		}
		if dirs != nil {
			t.Errorf("expected nil for path %q, got %v", path, dirs)
		}
	}
}

func TestListDirectories(t *testing.T) {
	tmpDir := t.TempDir()

	dir1 := filepath.Join(tmpDir, "run-1")
	dir2 := filepath.Join(tmpDir, "run-2")
	other := filepath.Join(tmpDir, "cache")
	for _, dir := range []string{dir1, dir2, other} {
		if err := os.Mkdir(dir, 0o755); err != nil {
			t.Fatalf("create %s: %v", dir, err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir1, "talk_audio.wav"), []byte("12345"), 0o644); err != nil {
		t.Fatalf("create inner file: %v", err)
	}

	dirs, err := ListDirectories(tmpDir)
	if err != nil {
		t.Fatalf("ListDirectories: %v", err)
	}
	if len(dirs) != 2 {
		t.Fatalf("expected 2 run directories, got %d", len(dirs))
	}
	for _, d := range dirs {
		if !strings.HasPrefix(d.Name, RunDirPrefix) {
			t.Errorf("unexpected directory %q", d.Name)
		}
		if d.Name == "run-1" && d.Size != 5 {
			t.Errorf("run-1 size = %d, want 5", d.Size)
		}
		if d.ModTime.IsZero() {
			t.Errorf("expected mod time for %s", d.Name)
		}
	}
}
