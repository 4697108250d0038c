package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

var (
	// Version is set at build time via ldflags
	// Example: go build -ldflags="-X main.Version=v1.2.3"
	Version = "dev"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	if command == "version" || command == "--version" || command == "-v" {
		fmt.Printf("spotsync version %s\n", Version)
		os.Exit(0)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	interrupted := make(chan struct{})
	go func() {
		sig := <-sigChan
		fmt.Fprintf(os.Stderr, "Received signal: %v, finishing current track...\n", sig)
		close(interrupted)
		cancel()
	}()

	var code int
	switch command {
	case "sync":
		code = runSyncFamily(ctx, "sync", os.Args[2:])
	case "discover":
		code = runSyncFamily(ctx, "discover", os.Args[2:])
	case "download":
		code = runSyncFamily(ctx, "download", os.Args[2:])
	case "tag":
		code = runSyncFamily(ctx, "tag", os.Args[2:])
	case "upgrade":
		code = runSyncFamily(ctx, "upgrade", os.Args[2:])
	case "add":
		code = runAdd(ctx, os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}

	select {
	case <-interrupted:
		os.Exit(130)
	default:
	}
	os.Exit(code)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `spotsync - Mirror Spotify playlists into local MP3 folders

USAGE:
    spotsync <command> [flags]

COMMANDS:
    sync        Discover playlists, then download everything missing
    discover    Refresh the playlist mapping and stop
    download    Download from the existing mapping, no discovery
    add         Map one playlist URL to a folder
    tag         Re-embed metadata into files already on disk
    upgrade     Re-fetch files below the bitrate threshold
    version     Show version information

FLAGS:
    -h, --help    Show this help message

EXAMPLES:
    spotsync sync
    spotsync sync --dry-run --playlist road-trip
    spotsync download --max-downloads 20
    spotsync add --url https://open.spotify.com/playlist/abc123

For more information, see https://github.com/avolkov/spotsync
`)
}
