package spotify

// TrackDescriptor is the immutable description of a playlist track as
// fetched from the API. Artist order is preserved: the first artist
// drives search queries and filenames.
type TrackDescriptor struct {
	Title       string
	Artists     []string
	Album       string
	AlbumArtist string
	TrackNumber int
	DurationMS  int
	ReleaseDate string
	SpotifyURL  string
	CoverURL    string
}

// PrimaryArtist returns the first artist, or "" for an artistless
// descriptor (which the resolver filters out).
func (t *TrackDescriptor) PrimaryArtist() string {
	if len(t.Artists) == 0 {
		return ""
	}
	return t.Artists[0]
}

// DurationSeconds returns the expected track length in whole seconds.
func (t *TrackDescriptor) DurationSeconds() int {
	return t.DurationMS / 1000
}

// Playlist is a playlist owned by the current user.
type Playlist struct {
	ID     string
	Name   string
	URL    string
	Tracks int
}
