package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.txt")

	if err := WriteFileAtomic(path, []byte("first"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := WriteFileAtomic(path, []byte("second"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "second" {
		t.Fatalf("content mismatch: got %q", got)
	}
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected temp files cleaned up, found %d entries", len(entries))
	}
}

func TestAppendFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.txt")
	if err := AppendFile(path, []byte("one\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := AppendFile(path, []byte("two\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "one\ntwo\n" {
		t.Fatalf("content mismatch: got %q", got)
	}
}

func TestRemoveIfExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "audio.wav")
	sub := filepath.Join(dir, "chunks")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(sub, "deep"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := RemoveIfExists(file, sub, filepath.Join(dir, "missing"), ""); err != nil {
		t.Fatalf("RemoveIfExists: %v", err)
	}
	for _, p := range []string{file, sub} {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Fatalf("expected %s removed, stat err=%v", p, err)
		}
	}
}
