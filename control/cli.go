package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/avolkov/spotsync/syncer"
	"github.com/avolkov/spotsync/syncer/audio"
	"github.com/avolkov/spotsync/syncer/config"
	"github.com/avolkov/spotsync/syncer/history"
	"github.com/avolkov/spotsync/syncer/library"
	"github.com/avolkov/spotsync/syncer/logging"
	"github.com/avolkov/spotsync/syncer/metadata"
	"github.com/avolkov/spotsync/syncer/spotify"
)

const (
	defaultConfigPath = "spotsync.yaml"
	defaultEnvPath    = ".env"
	lockFilename      = ".spotsync.lock"
)

type runFlags struct {
	configPath         string
	playlistsPath      string
	playlist           string
	dryRun             bool
	maxDownloads       int
	cookies            string
	cookiesFromBrowser string
	noLogFile          bool
}

func parseRunFlags(name string, args []string) (*runFlags, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	f := &runFlags{}
	fs.StringVar(&f.configPath, "config", defaultConfigPath, "Path to configuration file")
	fs.StringVar(&f.playlistsPath, "playlists", "", "Path to the playlist mapping file (overrides config)")
	fs.StringVar(&f.playlist, "playlist", "", "Only process folders whose path contains this substring")
	fs.BoolVar(&f.dryRun, "dry-run", false, "Report what would be downloaded without writing anything")
	fs.IntVar(&f.maxDownloads, "max-downloads", 0, "Stop downloading after this many tracks (0 = unlimited)")
	fs.StringVar(&f.cookies, "cookies", "", "Path to a cookies file passed to yt-dlp")
	fs.StringVar(&f.cookiesFromBrowser, "cookies-from-browser", "", "Browser to read cookies from, passed to yt-dlp")
	fs.BoolVar(&f.noLogFile, "no-log-file", false, "Log to the console only, skip the run log directory")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return f, nil
}

// runSyncFamily handles the commands that share the run pipeline:
// sync, discover, download, tag and upgrade.
func runSyncFamily(ctx context.Context, command string, args []string) int {
	flags, err := parseRunFlags(command, args)
	if err != nil {
		return 1
	}

	settings, err := config.LoadSettings(flags.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		return 1
	}
	if flags.playlistsPath != "" {
		settings.PlaylistsPath = flags.playlistsPath
	}

	release, err := AcquireLock(lockFilename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	defer release()

	runDir, logPath, cleanup, err := setupRunLog(command, flags.noLogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up run log: %v\n", err)
		return 1
	}
	defer cleanup()

	var events *logging.Logger
	if runDir != "" {
		events, err = logging.NewLogger(filepath.Join(runDir, "events.jsonl"))
		if err != nil {
			log.Printf("WARN: event_log_unavailable error=%v", err)
		}
		defer events.Close()
	}

	service, err := buildService(ctx, command, settings, flags, events)
	if err != nil {
		log.Printf("ERROR: startup_failed error=%v", err)
		return 1
	}

	opts := syncer.Options{
		Command:        syncer.Command(command),
		DryRun:         flags.dryRun,
		MaxDownloads:   flags.maxDownloads,
		PlaylistFilter: flags.playlist,
	}

	record := history.NewRunRecord(command, flags.dryRun)
	log.Printf("INFO: run_start version=%s command=%s dry_run=%t", Version, command, flags.dryRun)

	summary, runErr := service.Run(ctx, opts)
	recordSummary(record, summary)
	if runDir != "" {
		if err := record.Save(runDir); err != nil {
			log.Printf("WARN: run_record_write_failed error=%v", err)
		}
	}

	syncer.LogSummary(summary, opts, logPath)

	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			log.Printf("INFO: run_interrupted")
			return 130
		}
		log.Printf("ERROR: run_failed error=%v", runErr)
		return 1
	}
	// Per-track and per-playlist failures are recorded, not fatal.
	return 0
}

// runAdd maps a single playlist URL to a folder.
func runAdd(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	configPath := fs.String("config", defaultConfigPath, "Path to configuration file")
	playlistsPath := fs.String("playlists", "", "Path to the playlist mapping file (overrides config)")
	url := fs.String("url", "", "Playlist URL, URI or bare ID (required)")
	name := fs.String("name", "", "Folder name to use instead of the playlist's own name")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	if *url == "" {
		fmt.Fprintln(os.Stderr, "Missing required flag: --url")
		fs.Usage()
		return 1
	}

	settings, err := config.LoadSettings(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		return 1
	}
	if *playlistsPath != "" {
		settings.PlaylistsPath = *playlistsPath
	}

	release, err := AcquireLock(lockFilename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	defer release()

	service, err := buildService(ctx, "add", settings, &runFlags{}, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Startup failed: %v\n", err)
		return 1
	}

	folder, err := service.AddPlaylist(ctx, *url, *name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to add playlist: %v\n", err)
		return 1
	}

	fmt.Printf("Mapped playlist to folder: %s\n", folder)
	return 0
}

// buildService wires credentials, the Spotify client, the fetcher and
// the embedder into a sync service. Missing external binaries the
// command depends on are fatal here, before any track is attempted.
func buildService(ctx context.Context, command string, settings *config.Settings, flags *runFlags, events *logging.Logger) (*syncer.Service, error) {
	creds, err := config.LoadCredentials(defaultEnvPath)
	if err != nil {
		return nil, err
	}

	session := spotify.NewSession(creds, settings.TokenCache)
	api, err := session.Client(ctx)
	if err != nil {
		return nil, err
	}

	limiter := spotify.NewRateLimiter(settings.SpotifyRateLimitRequests, settings.SpotifyRateLimitWindow)
	client := spotify.NewClient(api, limiter)

	fetcher := audio.NewFetcher(&audio.Config{
		Bitrate:            settings.Bitrate,
		SearchSuffix:       settings.SearchSuffix,
		DurationMaxSeconds: settings.DurationMaxSeconds,
		CookiesPath:        flags.cookies,
		CookiesFromBrowser: flags.cookiesFromBrowser,
	})
	if err := checkTools(command, fetcher); err != nil {
		return nil, err
	}

	return syncer.NewService(settings, client, fetcher, metadata.NewEmbedder(), events), nil
}

// checkTools verifies the external binaries a command shells out to.
// A run that would fail every track for a missing binary must not
// start: it would pollute every folder's failed-track records.
func checkTools(command string, fetcher *audio.Fetcher) error {
	switch command {
	case "sync", "download", "upgrade":
		if err := fetcher.Available(); err != nil {
			return err
		}
	}
	if command == "upgrade" {
		if err := library.ProbeAvailable(); err != nil {
			return err
		}
	}
	return nil
}

// recordSummary copies run totals into the persisted record.
func recordSummary(record *history.RunRecord, summary *syncer.Summary) {
	record.Finish()
	if summary == nil {
		return
	}
	record.PlaylistsTotal = len(summary.Playlists)
	for _, outcome := range summary.Playlists {
		if outcome.Status == syncer.OutcomeFailed {
			record.PlaylistsFailed++
		}
	}
	record.TracksDownloaded = summary.Totals.Downloaded
	record.TracksSkipped = summary.Totals.Skipped
	record.TracksFailed = summary.Totals.Failed
}
