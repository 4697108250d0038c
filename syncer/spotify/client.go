package spotify

import (
	"context"
	"errors"
	"fmt"
	"log"

	spotifyapi "github.com/zmb3/spotify/v2"
)

const (
	playlistPageSize = 50
	trackPageSize    = 100
)

// Client wraps the Spotify API client with rate limiting and error
// classification.
type Client struct {
	api     *spotifyapi.Client
	limiter *RateLimiter
}

// NewClient creates a client wrapper around an authenticated API
// client.
func NewClient(api *spotifyapi.Client, limiter *RateLimiter) *Client {
	return &Client{api: api, limiter: limiter}
}

// CurrentUserPlaylists lists the playlists on the user's account that
// the user owns and has public, in account order.
func (c *Client) CurrentUserPlaylists(ctx context.Context) ([]Playlist, error) {
	if err := c.limiter.WaitIfNeeded(ctx); err != nil {
		return nil, err
	}
	user, err := c.api.CurrentUser(ctx)
	if err != nil {
		return nil, classify("current user", err)
	}

	var playlists []Playlist
	offset := 0
	for {
		if err := c.limiter.WaitIfNeeded(ctx); err != nil {
			return nil, err
		}
		page, err := c.api.CurrentUsersPlaylists(ctx, spotifyapi.Limit(playlistPageSize), spotifyapi.Offset(offset))
		if err != nil {
			return nil, classify("current user playlists", err)
		}

		for _, p := range page.Playlists {
			if p.Owner.ID != user.ID || !p.IsPublic {
				continue
			}
			url := p.ExternalURLs["spotify"]
			if url == "" {
				url = PlaylistURL(string(p.ID))
			}
			playlists = append(playlists, Playlist{
				ID:     string(p.ID),
				Name:   p.Name,
				URL:    url,
				Tracks: int(p.Tracks.Total),
			})
		}

		if len(page.Playlists) < playlistPageSize {
			break
		}
		offset += playlistPageSize
	}

	log.Printf("INFO: playlists_discovered count=%d user=%s", len(playlists), user.ID)
	return playlists, nil
}

// PlaylistName fetches the display name of a playlist.
func (c *Client) PlaylistName(ctx context.Context, id string) (string, error) {
	if err := c.limiter.WaitIfNeeded(ctx); err != nil {
		return "", err
	}
	p, err := c.api.GetPlaylist(ctx, spotifyapi.ID(id))
	if err != nil {
		return "", classify(fmt.Sprintf("playlist %s", id), err)
	}
	return p.Name, nil
}

// PlaylistTracks resolves a playlist into ordered track descriptors.
// Local files, episodes, and tracks with no title or artists are
// skipped.
func (c *Client) PlaylistTracks(ctx context.Context, id string) ([]TrackDescriptor, error) {
	var tracks []TrackDescriptor
	offset := 0
	skipped := 0
	for {
		if err := c.limiter.WaitIfNeeded(ctx); err != nil {
			return nil, err
		}
		page, err := c.api.GetPlaylistItems(ctx, spotifyapi.ID(id), spotifyapi.Limit(trackPageSize), spotifyapi.Offset(offset))
		if err != nil {
			return nil, classify(fmt.Sprintf("playlist %s items", id), err)
		}

		for _, item := range page.Items {
			full := item.Track.Track
			if full == nil || item.IsLocal || full.Name == "" || len(full.Artists) == 0 {
				skipped++
				continue
			}
			tracks = append(tracks, trackToDescriptor(full))
		}

		if len(page.Items) < trackPageSize {
			break
		}
		offset += trackPageSize
	}

	if skipped > 0 {
		log.Printf("WARN: tracks_skipped playlist=%s count=%d reason=local_or_incomplete", id, skipped)
	}
	return tracks, nil
}

func trackToDescriptor(full *spotifyapi.FullTrack) TrackDescriptor {
	artists := make([]string, 0, len(full.Artists))
	for _, a := range full.Artists {
		artists = append(artists, a.Name)
	}

	desc := TrackDescriptor{
		Title:       full.Name,
		Artists:     artists,
		Album:       full.Album.Name,
		TrackNumber: int(full.TrackNumber),
		DurationMS:  int(full.Duration),
		ReleaseDate: full.Album.ReleaseDate,
		SpotifyURL:  full.ExternalURLs["spotify"],
	}
	if len(full.Album.Artists) > 0 {
		desc.AlbumArtist = full.Album.Artists[0].Name
	}
	if len(full.Album.Images) > 0 {
		// Images are ordered largest first.
		desc.CoverURL = full.Album.Images[0].URL
	}
	return desc
}

// classify maps API errors onto the local error taxonomy.
func classify(resource string, err error) error {
	var spErr spotifyapi.Error
	if errors.As(err, &spErr) {
		switch spErr.Status {
		case 401, 403:
			return &AuthError{Message: "request rejected; re-run to sign in again", Original: err}
		case 404:
			return &NotFoundError{Resource: resource, Original: err}
		case 429:
			return &RateLimitError{Original: err}
		}
	}
	return fmt.Errorf("%s: %w", resource, err)
}
