package syncer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/avolkov/spotsync/syncer/audio"
	"github.com/avolkov/spotsync/syncer/config"
	"github.com/avolkov/spotsync/syncer/history"
	"github.com/avolkov/spotsync/syncer/library"
	"github.com/avolkov/spotsync/syncer/metadata"
	"github.com/avolkov/spotsync/syncer/spotify"
)

// Song is the tag payload handed to the embedder.
type Song = metadata.Song

// syncPlaylist performs one pass over a playlist folder. The returned
// error means the playlist as a whole failed; per-track failures are
// recorded and counted instead.
func (s *Service) syncPlaylist(ctx context.Context, entry config.PlaylistEntry, opts Options) (Stats, error) {
	var stats Stats

	id, err := spotify.ParsePlaylistID(entry.URL)
	if err != nil {
		return stats, fmt.Errorf("playlist %s: %w", entry.Folder, err)
	}

	tracks, err := s.resolver.PlaylistTracks(ctx, id)
	if err != nil {
		return stats, err
	}
	stats.Total = len(tracks)

	inventory, err := library.Scan(entry.Folder)
	if err != nil {
		return stats, err
	}

	switch opts.Command {
	case CommandTag:
		return s.tagPlaylist(ctx, entry, tracks, inventory)
	case CommandUpgrade:
		return s.upgradePlaylist(ctx, entry, tracks, inventory, opts)
	}

	var missing []spotify.TrackDescriptor
	for _, tr := range tracks {
		if inventory.Has(library.ExpectedFilename(tr.Artists, tr.Title)) {
			stats.Skipped++
			continue
		}
		missing = append(missing, tr)
	}

	log.Printf("INFO: playlist_sync_start folder=%s total=%d present=%d missing=%d dry_run=%t",
		entry.Folder, stats.Total, stats.Skipped, len(missing), opts.DryRun)
	if s.events != nil {
		s.events.PlaylistInfo(entry.Folder, fmt.Sprintf("%d tracks, %d missing", stats.Total, len(missing)))
	}

	consecutive := 0
	for idx, tr := range missing {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		if opts.MaxDownloads > 0 && s.downloaded >= opts.MaxDownloads {
			deferred := len(missing) - idx
			stats.Skipped += deferred
			log.Printf("INFO: download_cap_reached folder=%s cap=%d deferred=%d", entry.Folder, opts.MaxDownloads, deferred)
			break
		}

		expected := library.ExpectedFilename(tr.Artists, tr.Title)
		outputPath := filepath.Join(entry.Folder, expected)

		if opts.DryRun {
			log.Printf("INFO: dry_run_would_download folder=%s file=%s", entry.Folder, expected)
			stats.Downloaded++
			s.downloaded++
			continue
		}

		downloadedPath, err := s.fetchWithThrottle(ctx, tr, outputPath)
		if err != nil {
			if errors.Is(err, audio.ErrSessionThrottled) || ctx.Err() != nil {
				return stats, err
			}

			stats.Failed++
			consecutive++
			s.recordFailure(entry.Folder, tr, err)

			if consecutive >= s.settings.AbortAfterFailures {
				return stats, fmt.Errorf("aborting playlist after %d consecutive failures", consecutive)
			}
			if consecutive%s.settings.PauseAfterFailures == 0 {
				pause := time.Duration(s.settings.PauseSeconds) * time.Second
				log.Printf("WARN: consecutive_failure_pause folder=%s failures=%d wait=%s", entry.Folder, consecutive, pause)
				if err := s.sleep(ctx, pause); err != nil {
					return stats, err
				}
			}
			continue
		}

		consecutive = 0
		stats.Downloaded++
		s.downloaded++

		s.checkDuration(ctx, entry.Folder, downloadedPath, tr)
		s.embedTags(ctx, entry.Folder, downloadedPath, tr)
		if s.events != nil {
			s.events.TrackInfo(entry.Folder, expected, "downloaded")
		}

		if idx < len(missing)-1 {
			if err := s.sleep(ctx, s.songDelay()); err != nil {
				return stats, err
			}
		}
	}

	log.Printf("INFO: playlist_sync_complete folder=%s downloaded=%d skipped=%d failed=%d",
		entry.Folder, stats.Downloaded, stats.Skipped, stats.Failed)
	return stats, nil
}

// fetchWithThrottle runs one fetch, escalating the throttle ladder on
// 429-class failures and retrying the same track after the wait.
func (s *Service) fetchWithThrottle(ctx context.Context, tr spotify.TrackDescriptor, outputPath string) (string, error) {
	for {
		path, err := s.fetcher.Fetch(ctx, tr.PrimaryArtist(), tr.Title, outputPath)
		if err == nil {
			return path, nil
		}
		if !audio.IsThrottle(err) {
			return "", err
		}
		if regErr := s.throttle.Register(ctx); regErr != nil {
			return "", regErr
		}
	}
}

// recordFailure appends a failed-track record. Recording is
// best-effort: a write error must not abort the playlist.
func (s *Service) recordFailure(folder string, tr spotify.TrackDescriptor, cause error) {
	ft := history.FailedTrack{
		Title:      tr.Title,
		Artists:    tr.Artists,
		SpotifyURL: tr.SpotifyURL,
		Reason:     cause.Error(),
		Timestamp:  time.Now().UTC(),
	}
	if err := history.AppendFailed(folder, ft); err != nil {
		log.Printf("WARN: failed_record_write_error folder=%s error=%v", folder, err)
	}
	log.Printf("ERROR: track_failed folder=%s track=%q artist=%q error=%v", folder, tr.Title, tr.PrimaryArtist(), cause)
	if s.events != nil {
		s.events.TrackError(folder, tr.Title, "download failed", cause)
	}
}

// checkDuration warns when the fetched file's length deviates from
// the expected track duration. The file is kept either way.
func (s *Service) checkDuration(ctx context.Context, folder, path string, tr spotify.TrackDescriptor) {
	if tr.DurationMS == 0 {
		return
	}
	actual, err := s.probeDuration(ctx, path)
	if err != nil {
		log.Printf("WARN: duration_probe_failed file=%s error=%v", path, err)
		return
	}
	expected := tr.DurationSeconds()
	delta := actual - expected
	if delta < 0 {
		delta = -delta
	}
	if delta > s.settings.DurationWarnDeltaSeconds {
		log.Printf("WARN: duration_mismatch file=%s expected=%ds actual=%ds delta=%ds", path, expected, actual, delta)
		if s.events != nil {
			s.events.TrackWarn(folder, filepath.Base(path), fmt.Sprintf("duration off by %ds", delta))
		}
	}
}

// embedTags writes metadata into a fetched file. Failures are logged
// and the download still counts.
func (s *Service) embedTags(ctx context.Context, folder, path string, tr spotify.TrackDescriptor) {
	song := trackToSong(tr)
	if err := s.embedder.Embed(ctx, path, song); err != nil {
		log.Printf("WARN: metadata_embed_failed folder=%s file=%s error=%v", folder, path, err)
	}
}

func trackToSong(tr spotify.TrackDescriptor) *Song {
	return &Song{
		Title:       tr.Title,
		Artists:     tr.Artists,
		Album:       tr.Album,
		AlbumArtist: tr.AlbumArtist,
		TrackNumber: tr.TrackNumber,
		Date:        tr.ReleaseDate,
		SpotifyURL:  tr.SpotifyURL,
		CoverURL:    tr.CoverURL,
	}
}

func replaceFile(src, dst string) error {
	return os.Rename(src, dst)
}

// songDelay returns a randomized pause between downloads.
func (s *Service) songDelay() time.Duration {
	min := s.settings.SongDelayMinSeconds
	max := s.settings.SongDelayMaxSeconds
	if max <= min {
		return time.Duration(min) * time.Second
	}
	return time.Duration(min+s.randInt(max-min+1)) * time.Second
}

// tagPlaylist re-embeds metadata into files already present. No
// downloads, no failure records.
func (s *Service) tagPlaylist(ctx context.Context, entry config.PlaylistEntry, tracks []spotify.TrackDescriptor, inventory library.Inventory) (Stats, error) {
	stats := Stats{Total: len(tracks)}

	for _, tr := range tracks {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		name := inventory.Match(library.ExpectedFilename(tr.Artists, tr.Title))
		if name == "" {
			stats.Skipped++
			continue
		}
		path := filepath.Join(entry.Folder, name)
		if err := s.embedder.Embed(ctx, path, trackToSong(tr)); err != nil {
			stats.Failed++
			log.Printf("WARN: tag_failed folder=%s file=%s error=%v", entry.Folder, name, err)
			continue
		}
		stats.Downloaded++
	}

	log.Printf("INFO: playlist_tag_complete folder=%s tagged=%d absent=%d failed=%d",
		entry.Folder, stats.Downloaded, stats.Skipped, stats.Failed)
	return stats, nil
}

// upgradePlaylist re-fetches files whose bitrate is below the
// configured threshold. The original file is replaced only after a
// successful fetch.
func (s *Service) upgradePlaylist(ctx context.Context, entry config.PlaylistEntry, tracks []spotify.TrackDescriptor, inventory library.Inventory, opts Options) (Stats, error) {
	stats := Stats{Total: len(tracks)}
	threshold := s.settings.UpgradeBitrateKbps - s.settings.UpgradeBitrateToleranceKbps

	for _, tr := range tracks {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		name := inventory.Match(library.ExpectedFilename(tr.Artists, tr.Title))
		if name == "" {
			stats.Skipped++
			continue
		}
		path := filepath.Join(entry.Folder, name)

		kbps, err := s.probeBitrate(ctx, path)
		if err != nil {
			stats.Failed++
			log.Printf("WARN: bitrate_probe_failed file=%s error=%v", path, err)
			continue
		}
		if kbps >= threshold {
			stats.Skipped++
			continue
		}

		if opts.MaxDownloads > 0 && s.downloaded >= opts.MaxDownloads {
			stats.Skipped++
			continue
		}

		if opts.DryRun {
			log.Printf("INFO: dry_run_would_upgrade folder=%s file=%s bitrate=%dk", entry.Folder, name, kbps)
			stats.Downloaded++
			s.downloaded++
			continue
		}

		stagingPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".upgrade.mp3"
		fetched, err := s.fetchWithThrottle(ctx, tr, stagingPath)
		if err != nil {
			if errors.Is(err, audio.ErrSessionThrottled) || ctx.Err() != nil {
				return stats, err
			}
			stats.Failed++
			s.recordFailure(entry.Folder, tr, err)
			continue
		}

		if err := replaceFile(fetched, path); err != nil {
			stats.Failed++
			log.Printf("ERROR: upgrade_replace_failed file=%s error=%v", path, err)
			continue
		}

		stats.Downloaded++
		s.downloaded++
		s.embedTags(ctx, entry.Folder, path, tr)
		log.Printf("INFO: upgrade_complete folder=%s file=%s old_bitrate=%dk", entry.Folder, name, kbps)

		if err := s.sleep(ctx, s.songDelay()); err != nil {
			return stats, err
		}
	}

	log.Printf("INFO: playlist_upgrade_complete folder=%s upgraded=%d kept=%d failed=%d",
		entry.Folder, stats.Downloaded, stats.Skipped, stats.Failed)
	return stats, nil
}
