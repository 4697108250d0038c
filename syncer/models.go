package syncer

// Command selects what a run does.
type Command string

const (
	// CommandSync discovers playlists, merges the mapping, then
	// downloads everything missing.
	CommandSync Command = "sync"
	// CommandDiscover merges the mapping and stops.
	CommandDiscover Command = "discover"
	// CommandDownload skips discovery and downloads from the existing
	// mapping.
	CommandDownload Command = "download"
	// CommandTag re-embeds metadata into already-present files.
	CommandTag Command = "tag"
	// CommandUpgrade re-fetches files below the bitrate threshold.
	CommandUpgrade Command = "upgrade"
)

// Options are the per-run knobs from the command line.
type Options struct {
	Command        Command
	DryRun         bool
	MaxDownloads   int    // 0 = unlimited
	PlaylistFilter string // substring match on the folder path
}

// OutcomeStatus is the per-playlist result.
type OutcomeStatus string

const (
	OutcomeSucceeded OutcomeStatus = "succeeded"
	OutcomeFailed    OutcomeStatus = "failed"
	OutcomeSkipped   OutcomeStatus = "skipped"
)

// Stats counts track-level results within a playlist or a whole run.
type Stats struct {
	Total      int
	Downloaded int
	Skipped    int
	Failed     int
}

func (s *Stats) add(other Stats) {
	s.Total += other.Total
	s.Downloaded += other.Downloaded
	s.Skipped += other.Skipped
	s.Failed += other.Failed
}

// PlaylistOutcome is the result of syncing one playlist folder.
type PlaylistOutcome struct {
	Folder string
	Status OutcomeStatus
	Reason string
	Stats  Stats
}

// Summary aggregates a run.
type Summary struct {
	Playlists  []PlaylistOutcome
	Totals     Stats
	Discovered int // playlists newly added to the mapping
	CapReached bool
}
