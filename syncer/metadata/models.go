package metadata

import "strings"

// Song carries the fields written into ID3 tags.
type Song struct {
	Title       string
	Artists     []string
	Album       string
	AlbumArtist string
	TrackNumber int
	Date        string
	SpotifyURL  string
	CoverURL    string
}

// ArtistLine returns the artists joined for the TPE1 frame.
func (s *Song) ArtistLine() string {
	return strings.Join(s.Artists, ", ")
}
