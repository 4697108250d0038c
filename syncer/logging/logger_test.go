package logging

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func readEvents(t *testing.T, path string) []Event {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e Event
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatalf("Bad event line %q: %v", scanner.Text(), err)
		}
		events = append(events, e)
	}
	return events
}

func TestLogger_WritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.json")
	l, err := NewLogger(path)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	l.Info("run started")
	l.TrackInfo("Music/mix", "Artist - Song.mp3", "downloaded")
	l.TrackError("Music/mix", "Artist - Other.mp3", "fetch failed", errors.New("exit 1"))
	if err := l.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	events := readEvents(t, path)
	if len(events) != 3 {
		t.Fatalf("Expected 3 events, got %d", len(events))
	}
	if events[0].Level != LogLevelInfo || events[0].Message != "run started" {
		t.Errorf("Unexpected first event: %+v", events[0])
	}
	if events[1].Playlist != "Music/mix" || events[1].Track != "Artist - Song.mp3" {
		t.Errorf("Unexpected scoping: %+v", events[1])
	}
	if events[2].Level != LogLevelError || events[2].Error != "exit 1" {
		t.Errorf("Unexpected error event: %+v", events[2])
	}
}

func TestLogger_SafeAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.json")
	l, err := NewLogger(path)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// Must not panic.
	l.Info("after close")
	l.Warn("after close")
}
