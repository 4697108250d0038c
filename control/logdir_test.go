package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCreateRunDir(t *testing.T) {
	t.Setenv("SPOTSYNC_LOG_DIR", t.TempDir())

	runDir, logPath, err := CreateRunDir("sync")
	if err != nil {
		t.Fatalf("Expected run dir creation to succeed, got %v", err)
	}

	info, err := os.Stat(runDir)
	if err != nil || !info.IsDir() {
		t.Errorf("Expected run dir to exist, got %v", err)
	}
	if filepath.Dir(logPath) != runDir {
		t.Errorf("Expected log path inside run dir, got %s", logPath)
	}
	if filepath.Base(logPath) != "sync.log" {
		t.Errorf("Expected sync.log, got %s", filepath.Base(logPath))
	}

	second, _, err := CreateRunDir("sync")
	if err != nil {
		t.Fatalf("Expected second run dir creation to succeed, got %v", err)
	}
	if second == runDir {
		t.Errorf("Expected distinct run dirs, both were %s", runDir)
	}
}

func TestUpdateLatestLink(t *testing.T) {
	base := t.TempDir()
	t.Setenv("SPOTSYNC_LOG_DIR", base)

	_, logPath, err := CreateRunDir("download")
	if err != nil {
		t.Fatalf("Expected run dir creation to succeed, got %v", err)
	}
	if err := os.WriteFile(logPath, []byte("first\n"), 0644); err != nil {
		t.Fatalf("Expected log write to succeed, got %v", err)
	}
	if err := UpdateLatestLink(logPath); err != nil {
		t.Fatalf("Expected latest link update to succeed, got %v", err)
	}

	latest := filepath.Join(base, "latest.log")
	data, err := os.ReadFile(latest)
	if err != nil {
		t.Fatalf("Expected latest.log to resolve, got %v", err)
	}
	if string(data) != "first\n" {
		t.Errorf("Expected latest.log to point at the run log, got %q", string(data))
	}

	// Repointing must replace the old link.
	_, secondLog, err := CreateRunDir("download")
	if err != nil {
		t.Fatalf("Expected run dir creation to succeed, got %v", err)
	}
	if err := os.WriteFile(secondLog, []byte("second\n"), 0644); err != nil {
		t.Fatalf("Expected log write to succeed, got %v", err)
	}
	if err := UpdateLatestLink(secondLog); err != nil {
		t.Fatalf("Expected latest link repoint to succeed, got %v", err)
	}
	data, err = os.ReadFile(latest)
	if err != nil {
		t.Fatalf("Expected latest.log to resolve after repoint, got %v", err)
	}
	if string(data) != "second\n" {
		t.Errorf("Expected latest.log to follow the newest run, got %q", string(data))
	}
}

func TestLogTeeWriterWritesFileAndConsole(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "run.log")
	var console strings.Builder

	tee, err := NewLogTeeWriter(logPath, &console)
	if err != nil {
		t.Fatalf("Expected tee writer creation to succeed, got %v", err)
	}
	if _, err := tee.Write([]byte("INFO: hello\n")); err != nil {
		t.Fatalf("Expected write to succeed, got %v", err)
	}
	if err := tee.Close(); err != nil {
		t.Fatalf("Expected close to succeed, got %v", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Expected log file to exist, got %v", err)
	}
	if string(data) != "INFO: hello\n" {
		t.Errorf("Expected file to hold the line, got %q", string(data))
	}
	if console.String() != "INFO: hello\n" {
		t.Errorf("Expected console to mirror the line, got %q", console.String())
	}
}
