package audio

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSearchQuery(t *testing.T) {
	f := NewFetcher(&Config{SearchSuffix: "official audio"})
	got := f.searchQuery("Artist", "Song Title")
	if got != "ytsearch1:Artist - Song Title official audio" {
		t.Errorf("Unexpected query: %q", got)
	}
}

func TestSearchQuery_NoSuffix(t *testing.T) {
	f := NewFetcher(&Config{})
	got := f.searchQuery("Artist", "Song")
	if got != "ytsearch1:Artist - Song" {
		t.Errorf("Unexpected query: %q", got)
	}
}

func TestBuildArgs(t *testing.T) {
	f := NewFetcher(&Config{
		Bitrate:            "320k",
		DurationMaxSeconds: 900,
		CookiesPath:        "cookies.txt",
	})
	args := f.buildArgs("ytsearch1:q", "out.%(ext)s")
	joined := strings.Join(args, " ")

	for _, want := range []string{
		"--audio-format mp3",
		"--audio-quality 320k",
		"--no-playlist",
		"--match-filter duration < 900",
		"--cookies cookies.txt",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("Expected args to contain %q, got %q", want, joined)
		}
	}
	if args[len(args)-1] != "ytsearch1:q" {
		t.Errorf("Query must be the final argument, got %q", args[len(args)-1])
	}
	if strings.Contains(joined, "--cookies-from-browser") {
		t.Error("cookies-from-browser should be absent when unset")
	}
}

func TestBuildArgs_NoDurationCap(t *testing.T) {
	f := NewFetcher(&Config{Bitrate: "320k"})
	joined := strings.Join(f.buildArgs("ytsearch1:q", "out.%(ext)s"), " ")
	if strings.Contains(joined, "--match-filter") {
		t.Error("Expected no duration filter when cap is zero")
	}
}

func TestOutputTemplate(t *testing.T) {
	got := outputTemplate("/music/folder/Artist - Song.mp3")
	if got != "/music/folder/Artist - Song.%(ext)s" {
		t.Errorf("Unexpected template: %q", got)
	}
}

func TestClassifyOutput_Throttle(t *testing.T) {
	outputs := []string{
		"ERROR: HTTP Error 429: Too Many Requests",
		"ERROR: Too Many Requests",
		"error: too many requests",
		"ERROR: RATE LIMIT exceeded by provider",
		"error: rate limit reached",
	}
	for _, output := range outputs {
		err := classifyOutput(output, errors.New("exit 1"))
		if !IsThrottle(err) {
			t.Errorf("Expected throttle classification for %q, got %v", output, err)
		}
	}
}

func TestClassifyOutput_AgeRestriction(t *testing.T) {
	err := classifyOutput("ERROR: Sign in to confirm your age", errors.New("exit 1"))
	if IsThrottle(err) {
		t.Error("Age restriction must not be classified as throttling")
	}
	var de *DownloadError
	if !errors.As(err, &de) {
		t.Errorf("Expected DownloadError, got %T", err)
	}
}

func TestClassifyOutput_Generic(t *testing.T) {
	err := classifyOutput("ERROR: no video formats found", errors.New("exit 1"))
	if IsThrottle(err) {
		t.Error("Generic failure must not be classified as throttling")
	}
}

func TestFindDownloadedFile_AlternateExtension(t *testing.T) {
	dir := t.TempDir()
	expected := filepath.Join(dir, "Artist - Song.mp3")
	actual := filepath.Join(dir, "Artist - Song.m4a")
	if err := os.WriteFile(actual, []byte("x"), 0644); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	if got := findDownloadedFile(expected); got != actual {
		t.Errorf("Expected %q, got %q", actual, got)
	}
}

func TestFindDownloadedFile_Missing(t *testing.T) {
	if got := findDownloadedFile(filepath.Join(t.TempDir(), "nothing.mp3")); got != "" {
		t.Errorf("Expected empty result, got %q", got)
	}
}
