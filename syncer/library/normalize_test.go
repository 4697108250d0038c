package library

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		input    string
		expected string
	}{
		{"Song Title", "songtitle"},
		{"Song Title (feat. Artist)", "songtitlefeatartist"},
		{"song title feat artist", "songtitlefeatartist"},
		{"What's Up?", "whatsup"},
		{"", ""},
		{"123 Go!", "123go"},
	}

	for _, c := range cases {
		got := Normalize(c.input)
		if got != c.expected {
			t.Errorf("Normalize(%q): expected %q, got %q", c.input, c.expected, got)
		}
	}
}

func TestNormalize_PunctuationVariantsMatch(t *testing.T) {
	a := Normalize("Artist - Don't Stop (Live)")
	b := Normalize("artist dont stop live")
	if a != b {
		t.Errorf("Expected equal keys, got %q and %q", a, b)
	}
}

func TestSanitizeFilename(t *testing.T) {
	got := SanitizeFilename(`What's Up? / Side A: "Mix"`)
	if got != "Whats Up  Side A Mix" {
		t.Errorf("Unexpected sanitized name: %q", got)
	}
}

func TestExpectedFilename(t *testing.T) {
	got := ExpectedFilename([]string{"Artist One", "Artist Two"}, "Some Song")
	if got != "Artist One, Artist Two - Some Song.mp3" {
		t.Errorf("Unexpected filename: %q", got)
	}

	got = ExpectedFilename([]string{"AC/DC"}, "T.N.T.")
	if got != "ACDC - T.N.T..mp3" {
		t.Errorf("Unexpected filename: %q", got)
	}
}
