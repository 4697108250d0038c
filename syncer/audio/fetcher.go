package audio

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Config holds fetcher settings.
type Config struct {
	Bitrate            string
	SearchSuffix       string
	DurationMaxSeconds int
	CookiesPath        string
	CookiesFromBrowser string
}

// Fetcher downloads tracks through yt-dlp search.
type Fetcher struct {
	config *Config
}

// NewFetcher creates a fetcher.
func NewFetcher(cfg *Config) *Fetcher {
	return &Fetcher{config: cfg}
}

// Available verifies the yt-dlp binary is on PATH.
func (f *Fetcher) Available() error {
	if _, err := exec.LookPath("yt-dlp"); err != nil {
		return &DownloadError{
			Message:  "yt-dlp not found on PATH; install it to download tracks",
			Original: err,
		}
	}
	return nil
}

// Fetch searches for "artist - title <suffix>" and downloads the top
// result as an MP3 at the configured bitrate to outputPath. It
// returns the path of the file actually written.
func (f *Fetcher) Fetch(ctx context.Context, primaryArtist, title, outputPath string) (string, error) {
	outputDir := filepath.Dir(outputPath)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", &DownloadError{
			Message:  fmt.Sprintf("Failed to create output directory: %s", outputDir),
			Original: err,
		}
	}

	query := f.searchQuery(primaryArtist, title)
	args := f.buildArgs(query, outputTemplate(outputPath))

	log.Printf("INFO: fetch_start query=%q output=%s", query, outputPath)
	cmd := exec.CommandContext(ctx, "yt-dlp", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", classifyOutput(string(output), err)
	}

	downloaded := findDownloadedFile(outputPath)
	if downloaded == "" {
		return "", &DownloadError{
			Message: fmt.Sprintf("Downloaded file not found at %s", outputPath),
		}
	}

	log.Printf("INFO: fetch_complete path=%s", downloaded)
	return downloaded, nil
}

// searchQuery builds the yt-dlp search term for a track.
func (f *Fetcher) searchQuery(primaryArtist, title string) string {
	q := fmt.Sprintf("%s - %s", primaryArtist, title)
	if f.config.SearchSuffix != "" {
		q += " " + f.config.SearchSuffix
	}
	return "ytsearch1:" + q
}

// buildArgs assembles the yt-dlp argument list.
func (f *Fetcher) buildArgs(query, template string) []string {
	args := []string{
		"--quiet",
		"--no-warnings",
		"--no-playlist",
		"--extract-audio",
		"--audio-format", "mp3",
		"--audio-quality", f.config.Bitrate,
		"--output", template,
	}
	if f.config.DurationMaxSeconds > 0 {
		args = append(args,
			"--match-filter", fmt.Sprintf("duration < %d", f.config.DurationMaxSeconds),
		)
	}
	if f.config.CookiesPath != "" {
		args = append(args, "--cookies", f.config.CookiesPath)
	}
	if f.config.CookiesFromBrowser != "" {
		args = append(args, "--cookies-from-browser", f.config.CookiesFromBrowser)
	}
	return append(args, query)
}

// outputTemplate strips the extension so yt-dlp appends its own.
func outputTemplate(outputPath string) string {
	base := strings.TrimSuffix(outputPath, filepath.Ext(outputPath))
	return base + ".%(ext)s"
}

// classifyOutput maps yt-dlp failures to the error taxonomy.
// Indicator matching is case-insensitive: yt-dlp's casing varies
// across extractors.
func classifyOutput(output string, err error) error {
	lower := strings.ToLower(output)
	if strings.Contains(lower, "429") ||
		strings.Contains(lower, "rate limit") ||
		strings.Contains(lower, "too many requests") {
		return &ThrottleError{Original: err}
	}
	if strings.Contains(lower, "sign in to confirm your age") ||
		strings.Contains(lower, "age-restricted") {
		return &DownloadError{
			Message:  "age-restricted video; supply cookies to fetch it",
			Original: err,
		}
	}
	return &DownloadError{
		Message:  fmt.Sprintf("yt-dlp failed: %v (output: %s)", err, strings.TrimSpace(output)),
		Original: err,
	}
}

// findDownloadedFile locates the file yt-dlp wrote, tolerating an
// extension it chose itself.
func findDownloadedFile(expectedPath string) string {
	if _, err := os.Stat(expectedPath); err == nil {
		return expectedPath
	}

	basePath := strings.TrimSuffix(expectedPath, filepath.Ext(expectedPath))
	for _, ext := range []string{"mp3", "m4a", "webm", "opus"} {
		candidate := basePath + "." + ext
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	dir := filepath.Dir(expectedPath)
	baseName := filepath.Base(basePath)
	entries, err := os.ReadDir(dir)
	if err == nil {
		for _, entry := range entries {
			if strings.HasPrefix(entry.Name(), baseName) {
				return filepath.Join(dir, entry.Name())
			}
		}
	}

	return ""
}
