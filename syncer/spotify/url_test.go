package spotify

import "testing"

func TestParsePlaylistID(t *testing.T) {
	cases := []struct {
		input    string
		expected string
	}{
		{"37i9dQZF1DXcBWIGoYBM5M", "37i9dQZF1DXcBWIGoYBM5M"},
		{"https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M", "37i9dQZF1DXcBWIGoYBM5M"},
		{"https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M?si=abc123", "37i9dQZF1DXcBWIGoYBM5M"},
		{"https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M/", "37i9dQZF1DXcBWIGoYBM5M"},
		{"spotify:playlist:37i9dQZF1DXcBWIGoYBM5M", "37i9dQZF1DXcBWIGoYBM5M"},
	}

	for _, c := range cases {
		got, err := ParsePlaylistID(c.input)
		if err != nil {
			t.Errorf("ParsePlaylistID(%q) failed: %v", c.input, err)
			continue
		}
		if got != c.expected {
			t.Errorf("ParsePlaylistID(%q): expected %q, got %q", c.input, c.expected, got)
		}
	}
}

func TestParsePlaylistID_Invalid(t *testing.T) {
	for _, input := range []string{
		"",
		"https://open.spotify.com/album/xyz",
		"spotify:playlist:",
		"not/a/playlist",
	} {
		if _, err := ParsePlaylistID(input); err == nil {
			t.Errorf("Expected error for %q", input)
		}
	}
}

func TestPlaylistURL_RoundTrip(t *testing.T) {
	id, err := ParsePlaylistID(PlaylistURL("abc123"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if id != "abc123" {
		t.Errorf("Expected abc123, got %q", id)
	}
}
