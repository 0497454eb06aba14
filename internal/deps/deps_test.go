package deps

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Blank", Command: "  "},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available || results[0].Path != present {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("expected missing binary with detail, got %#v", results[1])
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}
	if results[2].Detail != "command not configured" {
		t.Fatalf("unexpected detail for blank command: %q", results[2].Detail)
	}
}

func TestMissingSkipsOptional(t *testing.T) {
	t.Setenv("PATH", "")
	statuses := CheckBinaries(MediaRequirements("ffmpeg", "ffprobe", false))
	missing := Missing(statuses)
	if len(missing) != 2 {
		t.Fatalf("expected ffmpeg and ffprobe missing, got %#v", missing)
	}
	for _, status := range missing {
		if status.Name == "uvx" {
			t.Fatal("optional uvx should not be reported missing")
		}
	}

	missing = Missing(CheckBinaries(MediaRequirements("ffmpeg", "ffprobe", true)))
	if len(missing) != 3 {
		t.Fatalf("expected uvx required for whisperx, got %#v", missing)
	}
}
