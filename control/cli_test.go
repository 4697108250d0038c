package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/avolkov/spotsync/syncer/audio"
)

func writeFakeBinary(t *testing.T, dir, name string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0755); err != nil {
		t.Fatalf("Expected fake binary write to succeed, got %v", err)
	}
}

func TestCheckToolsByCommand(t *testing.T) {
	fetcher := audio.NewFetcher(&audio.Config{})

	// An empty PATH means no external binaries are available.
	t.Setenv("PATH", t.TempDir())

	for _, cmd := range []string{"sync", "download", "upgrade"} {
		if err := checkTools(cmd, fetcher); err == nil {
			t.Errorf("Expected %s to fail without yt-dlp", cmd)
		}
	}
	for _, cmd := range []string{"discover", "tag", "add"} {
		if err := checkTools(cmd, fetcher); err != nil {
			t.Errorf("Expected %s to pass without external tools, got %v", cmd, err)
		}
	}

	binDir := t.TempDir()
	writeFakeBinary(t, binDir, "yt-dlp")
	t.Setenv("PATH", binDir)

	if err := checkTools("download", fetcher); err != nil {
		t.Errorf("Expected download to pass with yt-dlp present, got %v", err)
	}
	if err := checkTools("upgrade", fetcher); err == nil {
		t.Errorf("Expected upgrade to fail without ffprobe")
	}

	writeFakeBinary(t, binDir, "ffprobe")
	if err := checkTools("upgrade", fetcher); err != nil {
		t.Errorf("Expected upgrade to pass with both tools, got %v", err)
	}
}
