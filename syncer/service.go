package syncer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"path/filepath"
	"strings"
	"time"

	"github.com/avolkov/spotsync/syncer/audio"
	"github.com/avolkov/spotsync/syncer/config"
	"github.com/avolkov/spotsync/syncer/library"
	"github.com/avolkov/spotsync/syncer/logging"
	"github.com/avolkov/spotsync/syncer/retry"
	"github.com/avolkov/spotsync/syncer/spotify"
)

// PlaylistResolver is the slice of the Spotify client the service
// needs.
type PlaylistResolver interface {
	CurrentUserPlaylists(ctx context.Context) ([]spotify.Playlist, error)
	PlaylistName(ctx context.Context, id string) (string, error)
	PlaylistTracks(ctx context.Context, id string) ([]spotify.TrackDescriptor, error)
}

// TrackFetcher downloads one track to an output path.
type TrackFetcher interface {
	Fetch(ctx context.Context, primaryArtist, title, outputPath string) (string, error)
}

// TagEmbedder writes metadata into a downloaded file.
type TagEmbedder interface {
	Embed(ctx context.Context, filePath string, song *Song) error
}

// Service runs playlist syncs. All work is strictly sequential: one
// playlist, one track at a time.
type Service struct {
	settings *config.Settings
	resolver PlaylistResolver
	fetcher  TrackFetcher
	embedder TagEmbedder
	throttle *audio.ThrottleState
	events   *logging.Logger

	downloaded int // global count against the cap

	// Indirections for tests.
	sleep         func(ctx context.Context, d time.Duration) error
	randInt       func(n int) int
	probeBitrate  func(ctx context.Context, path string) (int, error)
	probeDuration func(ctx context.Context, path string) (int, error)
}

// NewService wires a service from its parts. events may be nil when
// no structured run log is wanted.
func NewService(settings *config.Settings, resolver PlaylistResolver, fetcher TrackFetcher, embedder TagEmbedder, events *logging.Logger) *Service {
	return &Service{
		settings: settings,
		resolver: resolver,
		fetcher:  fetcher,
		embedder: embedder,
		events:   events,
		throttle: audio.NewThrottleState(
			time.Duration(settings.ThrottleWaitInitialSeconds)*time.Second,
			time.Duration(settings.ThrottleWaitSecondSeconds)*time.Second,
		),
		sleep:         sleepCtx,
		randInt:       rand.Intn,
		probeBitrate:  library.ProbeBitrateKbps,
		probeDuration: library.ProbeDurationSeconds,
	}
}

// Run executes a full run per the options and returns a summary. An
// error is returned only for fatal conditions (auth, missing mapping,
// cancelled context); per-track and per-playlist failures land in the
// summary.
func (s *Service) Run(ctx context.Context, opts Options) (*Summary, error) {
	summary := &Summary{}

	if opts.Command == CommandSync || opts.Command == CommandDiscover {
		added, err := s.discover(ctx)
		if err != nil {
			return summary, err
		}
		summary.Discovered = added
		if opts.Command == CommandDiscover {
			return summary, nil
		}
	}

	doc, err := config.LoadDocument(s.settings.PlaylistsPath)
	if err != nil {
		return summary, err
	}
	if doc.Len() == 0 {
		return summary, &config.ConfigError{
			Message: fmt.Sprintf("No playlists mapped in %s. Run discover first, or add one", s.settings.PlaylistsPath),
		}
	}

	entries := selectEntries(doc.Entries(), opts.PlaylistFilter)
	if len(entries) == 0 {
		return summary, &config.ConfigError{
			Message: fmt.Sprintf("No playlist folder matches %q", opts.PlaylistFilter),
		}
	}

	throttledOut := false
	for i, entry := range entries {
		if throttledOut {
			summary.Playlists = append(summary.Playlists, PlaylistOutcome{
				Folder: entry.Folder,
				Status: OutcomeSkipped,
				Reason: "session throttled",
			})
			continue
		}

		if i > 0 && !opts.DryRun {
			delay := time.Duration(s.settings.PlaylistDelaySeconds) * time.Second
			if err := s.sleep(ctx, delay); err != nil {
				return summary, err
			}
		}

		outcome := s.runPlaylist(ctx, entry, opts)
		summary.Playlists = append(summary.Playlists, outcome)
		summary.Totals.add(outcome.Stats)

		if outcome.Reason == audio.ErrSessionThrottled.Error() {
			throttledOut = true
		}
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}
		if opts.MaxDownloads > 0 && s.downloaded >= opts.MaxDownloads {
			summary.CapReached = true
		}
	}

	return summary, nil
}

// discover lists the user's playlists and merges them into the
// mapping document, preserving custom folder names.
func (s *Service) discover(ctx context.Context) (int, error) {
	doc, err := config.LoadDocument(s.settings.PlaylistsPath)
	if err != nil {
		return 0, err
	}

	playlists, err := s.resolver.CurrentUserPlaylists(ctx)
	if err != nil {
		return 0, err
	}

	discovered := make([]config.DiscoveredPlaylist, 0, len(playlists))
	for _, p := range playlists {
		discovered = append(discovered, config.DiscoveredPlaylist{
			ID:   p.ID,
			Name: p.Name,
			URL:  p.URL,
		})
	}

	added := doc.Merge(s.settings.ExportRoot, discovered)
	if err := config.SaveDocument(s.settings.PlaylistsPath, doc); err != nil {
		return 0, err
	}

	log.Printf("INFO: discover_complete playlists=%d added=%d", len(playlists), added)
	if s.events != nil {
		s.events.Infof("discovery merged %d playlists, %d new", len(playlists), added)
	}
	return added, nil
}

// runPlaylist syncs one playlist with bounded retries around the
// whole playlist operation.
func (s *Service) runPlaylist(ctx context.Context, entry config.PlaylistEntry, opts Options) PlaylistOutcome {
	outcome := PlaylistOutcome{Folder: entry.Folder, Status: OutcomeSucceeded}

	op := func(ctx context.Context) error {
		stats, err := s.syncPlaylist(ctx, entry, opts)
		outcome.Stats = stats
		// A throttled session or a cancelled run must not trigger
		// another round of fetches.
		if errors.Is(err, audio.ErrSessionThrottled) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return retry.Permanent(err)
		}
		return err
	}

	err := retry.Do(ctx, s.settings.PlaylistMaxRetries, s.retryPolicy(), op)
	if err != nil {
		outcome.Status = OutcomeFailed
		outcome.Reason = err.Error()
		log.Printf("ERROR: playlist_failed folder=%s error=%v", entry.Folder, err)
		log.Printf("INFO: playlist_retry_hint folder=%s hint=\"re-run with --playlist %s\"", entry.Folder, entry.Folder)
		if s.events != nil {
			s.events.TrackError(entry.Folder, "", "playlist sync failed", err)
		}
	}
	return outcome
}

// retryPolicy builds the configured delay policy for playlist-level
// retries.
func (s *Service) retryPolicy() retry.Policy {
	base := time.Duration(s.settings.PlaylistRetryDelaySeconds) * time.Second
	if s.settings.RetryBackoff == config.BackoffExponential {
		return retry.Exponential{
			Initial:    base,
			Max:        time.Duration(s.settings.RetryBackoffMaxDelaySecond) * time.Second,
			Multiplier: s.settings.RetryBackoffMultiplier,
			Jitter:     true,
		}
	}
	return retry.Fixed(base)
}

// selectEntries filters the document by folder substring.
func selectEntries(entries []config.PlaylistEntry, filter string) []config.PlaylistEntry {
	if filter == "" {
		return entries
	}
	var out []config.PlaylistEntry
	for _, e := range entries {
		if strings.Contains(e.Folder, filter) {
			out = append(out, e)
		}
	}
	return out
}

// AddPlaylist maps one playlist URL to a folder. With name unset the
// playlist's own name is fetched and slugged.
func (s *Service) AddPlaylist(ctx context.Context, url, name string) (string, error) {
	doc, err := config.LoadDocument(s.settings.PlaylistsPath)
	if err != nil {
		return "", err
	}

	if existing, ok := doc.FolderFor(url); ok {
		return "", &config.ConfigError{
			Message: fmt.Sprintf("Playlist already mapped to folder: %s", existing),
		}
	}

	id, err := spotify.ParsePlaylistID(url)
	if err != nil {
		return "", &config.ConfigError{Message: err.Error()}
	}

	if name == "" {
		name, err = s.resolver.PlaylistName(ctx, id)
		if err != nil {
			return "", err
		}
	}

	folder := filepath.Join(s.settings.ExportRoot, config.Slug(name))
	if err := doc.Add(folder, config.CanonicalURL(url)); err != nil {
		return "", err
	}
	if err := config.SaveDocument(s.settings.PlaylistsPath, doc); err != nil {
		return "", err
	}

	log.Printf("INFO: playlist_added folder=%s url=%s", folder, config.CanonicalURL(url))
	return folder, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
