package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// PlaylistEntry binds a local folder to a playlist URL.
type PlaylistEntry struct {
	Folder string
	URL    string
}

// Document is the ordered folder-to-URL mapping persisted as
// playlists.json. Order is preserved across load, merge, and save so
// the file stays diffable and playlists sync in a stable order.
type Document struct {
	entries []PlaylistEntry
}

// DiscoveredPlaylist is a playlist found on the user's account,
// as fed into Merge.
type DiscoveredPlaylist struct {
	ID   string
	Name string
	URL  string
}

// Entries returns the entries in document order.
func (d *Document) Entries() []PlaylistEntry {
	out := make([]PlaylistEntry, len(d.entries))
	copy(out, d.entries)
	return out
}

// Len returns the number of entries.
func (d *Document) Len() int { return len(d.entries) }

// FolderFor returns the folder mapped to a URL, matching on the
// canonical form (query parameters stripped).
func (d *Document) FolderFor(url string) (string, bool) {
	canonical := CanonicalURL(url)
	for _, e := range d.entries {
		if CanonicalURL(e.URL) == canonical {
			return e.Folder, true
		}
	}
	return "", false
}

// hasFolder reports whether a folder path is already taken.
func (d *Document) hasFolder(folder string) bool {
	for _, e := range d.entries {
		if e.Folder == folder {
			return true
		}
	}
	return false
}

// Merge folds discovered playlists into the document. Entries whose
// URL is already mapped keep their folder untouched, so custom folder
// names survive rediscovery. New playlists are appended with a folder
// derived from the playlist name. Nothing is ever removed.
func (d *Document) Merge(exportRoot string, discovered []DiscoveredPlaylist) (added int) {
	for _, p := range discovered {
		if _, ok := d.FolderFor(p.URL); ok {
			continue
		}
		folder := filepath.Join(exportRoot, Slug(p.Name))
		if d.hasFolder(folder) {
			suffix := p.ID
			if len(suffix) > 8 {
				suffix = suffix[:8]
			}
			folder = folder + "-" + suffix
		}
		d.entries = append(d.entries, PlaylistEntry{Folder: folder, URL: p.URL})
		added++
	}
	return added
}

// Add appends a single playlist. It fails if the URL is already
// mapped or the folder path is taken.
func (d *Document) Add(folder, url string) error {
	if existing, ok := d.FolderFor(url); ok {
		return &ConfigError{
			Message: fmt.Sprintf("Playlist already mapped to folder: %s", existing),
		}
	}
	if d.hasFolder(folder) {
		return &ConfigError{
			Message: fmt.Sprintf("Folder already in use: %s", folder),
		}
	}
	d.entries = append(d.entries, PlaylistEntry{Folder: folder, URL: url})
	return nil
}

// LoadDocument reads playlists.json. A missing file yields an empty
// document.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Document{}, nil
		}
		return nil, &ConfigError{
			Message: fmt.Sprintf("Error reading %s: %v", path, err),
		}
	}

	doc := &Document{}
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, &ConfigError{
			Message: fmt.Sprintf("Error parsing %s: %v", path, err),
		}
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, &ConfigError{
			Message: fmt.Sprintf("Error parsing %s: expected a JSON object", path),
		}
	}

	// Walk key/value pairs with the token stream so entry order in
	// the file is preserved.
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, &ConfigError{
				Message: fmt.Sprintf("Error parsing %s: %v", path, err),
			}
		}
		folder, ok := keyTok.(string)
		if !ok {
			return nil, &ConfigError{
				Message: fmt.Sprintf("Error parsing %s: non-string key", path),
			}
		}
		var url string
		if err := dec.Decode(&url); err != nil {
			return nil, &ConfigError{
				Message: fmt.Sprintf("Error parsing %s: value for %q is not a string: %v", path, folder, err),
			}
		}
		doc.entries = append(doc.entries, PlaylistEntry{Folder: folder, URL: url})
	}

	return doc, nil
}

// SaveDocument writes the document back as an indented JSON object,
// keys in document order. The write goes through a temp file and
// rename so a crash cannot truncate the mapping.
func SaveDocument(path string, doc *Document) error {
	var buf bytes.Buffer
	buf.WriteString("{\n")
	for i, e := range doc.entries {
		folder, err := json.Marshal(e.Folder)
		if err != nil {
			return fmt.Errorf("marshal folder %q: %w", e.Folder, err)
		}
		url, err := json.Marshal(e.URL)
		if err != nil {
			return fmt.Errorf("marshal url %q: %w", e.URL, err)
		}
		buf.WriteString("  ")
		buf.Write(folder)
		buf.WriteString(": ")
		buf.Write(url)
		if i < len(doc.entries)-1 {
			buf.WriteString(",")
		}
		buf.WriteString("\n")
	}
	buf.WriteString("}\n")

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}

// CanonicalURL strips query parameters and trailing slashes so the
// share-link form of a playlist URL (with ?si=...) matches the plain
// form.
func CanonicalURL(url string) string {
	if i := strings.IndexByte(url, '?'); i >= 0 {
		url = url[:i]
	}
	return strings.TrimRight(url, "/")
}

// Slug turns a playlist name into a folder-safe name: lowercase,
// letters/digits/hyphens only, spaces collapsed to single hyphens.
// NFKD decomposition first, so accented letters keep their base form
// ("Café" slugs to "cafe") instead of vanishing.
func Slug(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range norm.NFKD.String(strings.ToLower(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		case r == ' ' || r == '-' || r == '_':
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	out := strings.TrimRight(b.String(), "-")
	if out == "" {
		return "unnamed"
	}
	return out
}
