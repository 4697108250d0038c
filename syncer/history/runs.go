package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// RunRecord summarizes one sync run, written into the run's log
// directory as run.json.
type RunRecord struct {
	ID         string    `json:"id"`
	Command    string    `json:"command"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
	DryRun     bool      `json:"dry_run"`

	PlaylistsTotal   int `json:"playlists_total"`
	PlaylistsFailed  int `json:"playlists_failed"`
	TracksDownloaded int `json:"tracks_downloaded"`
	TracksSkipped    int `json:"tracks_skipped"`
	TracksFailed     int `json:"tracks_failed"`
}

// NewRunRecord starts a record for a run.
func NewRunRecord(command string, dryRun bool) *RunRecord {
	return &RunRecord{
		ID:        uuid.NewString(),
		Command:   command,
		StartedAt: time.Now().UTC(),
		DryRun:    dryRun,
	}
}

// Finish stamps the completion time.
func (r *RunRecord) Finish() {
	r.FinishedAt = time.Now().UTC()
}

// Save writes the record into the run directory.
func (r *RunRecord) Save(runDir string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal run record: %w", err)
	}
	path := filepath.Join(runDir, "run.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
