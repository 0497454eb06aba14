package testsupport

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// WriteFile creates path, and any missing parents, holding size filler
// bytes. Stand-in videos only need to exist, so size may be tiny; anything
// below 1 becomes 1.
func WriteFile(t testing.TB, path string, size int) {
	t.Helper()
	writeFile(t, path, bytes.Repeat([]byte{'v'}, max(size, 1)), 0o644)
}

// WriteScript writes an executable shell script, used to stand in for
// ffmpeg, ffprobe or uvx.
func WriteScript(t testing.TB, path, body string) {
	t.Helper()
	writeFile(t, path, []byte("#!/bin/sh\n"+body+"\n"), 0o755)
}

func writeFile(t testing.TB, path string, data []byte, perm os.FileMode) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("create parent of %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, perm); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
