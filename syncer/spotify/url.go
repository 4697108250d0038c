package spotify

import (
	"fmt"
	"strings"
)

// ParsePlaylistID extracts a playlist ID from either a bare ID, an
// open.spotify.com URL (query parameters ignored), or a
// spotify:playlist: URI.
func ParsePlaylistID(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("empty playlist reference")
	}

	if strings.HasPrefix(ref, "spotify:playlist:") {
		id := strings.TrimPrefix(ref, "spotify:playlist:")
		if id == "" {
			return "", fmt.Errorf("invalid playlist URI: %s", ref)
		}
		return id, nil
	}

	if strings.Contains(ref, "open.spotify.com") {
		if i := strings.IndexByte(ref, '?'); i >= 0 {
			ref = ref[:i]
		}
		ref = strings.TrimRight(ref, "/")
		parts := strings.Split(ref, "/")
		for i, part := range parts {
			if part == "playlist" && i+1 < len(parts) {
				return parts[i+1], nil
			}
		}
		return "", fmt.Errorf("not a playlist URL: %s", ref)
	}

	if strings.ContainsAny(ref, "/:") {
		return "", fmt.Errorf("unrecognized playlist reference: %s", ref)
	}
	return ref, nil
}

// PlaylistURL returns the canonical open.spotify.com URL for an ID.
func PlaylistURL(id string) string {
	return "https://open.spotify.com/playlist/" + id
}
