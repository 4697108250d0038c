package library

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
}

func TestScan_MissingFolderIsEmpty(t *testing.T) {
	inv, err := Scan(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("Expected no error for missing folder, got %v", err)
	}
	if len(inv) != 0 {
		t.Errorf("Expected empty inventory, got %d entries", len(inv))
	}
}

func TestScan_IndexesOnlyMP3(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Artist - Song.mp3")
	writeFile(t, dir, "Artist - Song.m4a")
	writeFile(t, dir, ".failed_tracks.json")

	inv, err := Scan(dir)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(inv) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(inv))
	}
	if inv[Normalize("Artist - Song")] != "Artist - Song.mp3" {
		t.Errorf("Unexpected inventory: %v", inv)
	}
}

func TestInventory_HasMatchesFuzzy(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "artist - some song feat other.mp3")

	inv, err := Scan(dir)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	expected := ExpectedFilename([]string{"Artist"}, "Some Song (feat. Other)")
	if !inv.Has(expected) {
		t.Errorf("Expected %q to match existing file", expected)
	}
	if inv.Match(expected) != "artist - some song feat other.mp3" {
		t.Errorf("Unexpected match: %q", inv.Match(expected))
	}
}

func TestInventory_MissingTrack(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Artist - Present.mp3")

	inv, err := Scan(dir)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if inv.Has(ExpectedFilename([]string{"Artist"}, "Absent")) {
		t.Error("Expected absent track to be reported missing")
	}
}
