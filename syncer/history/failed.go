package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FailedFilename is the per-folder record of tracks that could not be
// downloaded.
const FailedFilename = ".failed_tracks.json"

// FailedTrack is one download failure. Records are append-only:
// nothing ever prunes them, so the file is a durable history of what
// to chase manually.
type FailedTrack struct {
	Title      string    `json:"title"`
	Artists    []string  `json:"artists"`
	SpotifyURL string    `json:"spotify_url,omitempty"`
	Reason     string    `json:"reason"`
	Timestamp  time.Time `json:"timestamp"`
}

// AppendFailed adds a failure record to <folder>/.failed_tracks.json,
// creating the file and folder as needed.
func AppendFailed(folder string, ft FailedTrack) error {
	if err := os.MkdirAll(folder, 0755); err != nil {
		return fmt.Errorf("create folder %s: %w", folder, err)
	}

	path := filepath.Join(folder, FailedFilename)
	records, err := LoadFailed(folder)
	if err != nil {
		return err
	}

	records = append(records, ft)
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal failed records: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// LoadFailed reads the failure records for a folder. A missing file
// yields an empty slice.
func LoadFailed(folder string) ([]FailedTrack, error) {
	path := filepath.Join(folder, FailedFilename)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var records []FailedTrack
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return records, nil
}
