package config

import (
	"fmt"
	"strings"
)

// BackoffMode selects the delay policy for playlist-level retries.
type BackoffMode string

const (
	BackoffFixed       BackoffMode = "fixed"
	BackoffExponential BackoffMode = "exponential"
)

// Settings holds sync configuration. Credentials are never part of
// this file; they come from the environment (see LoadCredentials).
type Settings struct {
	// Library layout
	ExportRoot    string `yaml:"export_root"`
	PlaylistsPath string `yaml:"playlists_path"`
	TokenCache    string `yaml:"token_cache_path"`

	// Audio fetching
	Bitrate                  string `yaml:"bitrate"`
	SearchSuffix             string `yaml:"search_suffix"`
	DurationMaxSeconds       int    `yaml:"duration_max_seconds"`
	DurationWarnDeltaSeconds int    `yaml:"duration_warn_delta_seconds"`

	// Pacing between requests
	SongDelayMinSeconds  int `yaml:"song_delay_min_seconds"`
	SongDelayMaxSeconds  int `yaml:"song_delay_max_seconds"`
	PlaylistDelaySeconds int `yaml:"playlist_delay_seconds"`

	// Consecutive failure policy
	PauseAfterFailures int `yaml:"pause_after_failures"`
	PauseSeconds       int `yaml:"pause_seconds"`
	AbortAfterFailures int `yaml:"abort_after_failures"`

	// Provider throttling (HTTP 429) ladder
	ThrottleWaitInitialSeconds int `yaml:"throttle_wait_initial_seconds"`
	ThrottleWaitSecondSeconds  int `yaml:"throttle_wait_second_seconds"`

	// Playlist-level retries
	PlaylistMaxRetries         int         `yaml:"playlist_max_retries"`
	PlaylistRetryDelaySeconds  int         `yaml:"playlist_retry_delay_seconds"`
	RetryBackoff               BackoffMode `yaml:"retry_backoff"`
	RetryBackoffMultiplier     float64     `yaml:"retry_backoff_multiplier"`
	RetryBackoffMaxDelaySecond int         `yaml:"retry_backoff_max_delay_seconds"`

	// Spotify API pacing
	SpotifyRateLimitRequests int     `yaml:"spotify_rate_limit_requests"`
	SpotifyRateLimitWindow   float64 `yaml:"spotify_rate_limit_window"`

	// Upgrade mode
	UpgradeBitrateKbps          int `yaml:"upgrade_bitrate_kbps"`
	UpgradeBitrateToleranceKbps int `yaml:"upgrade_bitrate_tolerance_kbps"`
}

// SetDefaults sets default values for Settings.
func (s *Settings) SetDefaults() {
	if s.ExportRoot == "" {
		s.ExportRoot = "Music"
	}
	if s.PlaylistsPath == "" {
		s.PlaylistsPath = "playlists.json"
	}
	if s.TokenCache == "" {
		s.TokenCache = ".spotify_token.json"
	}
	if s.Bitrate == "" {
		s.Bitrate = "320k"
	}
	if s.SearchSuffix == "" {
		s.SearchSuffix = "official audio"
	}
	if s.DurationMaxSeconds == 0 {
		s.DurationMaxSeconds = 900
	}
	if s.DurationWarnDeltaSeconds == 0 {
		s.DurationWarnDeltaSeconds = 30
	}
	if s.SongDelayMinSeconds == 0 {
		s.SongDelayMinSeconds = 3
	}
	if s.SongDelayMaxSeconds == 0 {
		s.SongDelayMaxSeconds = 8
	}
	if s.PlaylistDelaySeconds == 0 {
		s.PlaylistDelaySeconds = 10
	}
	if s.PauseAfterFailures == 0 {
		s.PauseAfterFailures = 3
	}
	if s.PauseSeconds == 0 {
		s.PauseSeconds = 60
	}
	if s.AbortAfterFailures == 0 {
		s.AbortAfterFailures = 10
	}
	if s.ThrottleWaitInitialSeconds == 0 {
		s.ThrottleWaitInitialSeconds = 60
	}
	if s.ThrottleWaitSecondSeconds == 0 {
		s.ThrottleWaitSecondSeconds = 300
	}
	if s.PlaylistMaxRetries == 0 {
		s.PlaylistMaxRetries = 2
	}
	if s.PlaylistRetryDelaySeconds == 0 {
		s.PlaylistRetryDelaySeconds = 3
	}
	if s.RetryBackoff == "" {
		s.RetryBackoff = BackoffFixed
	}
	if s.RetryBackoffMultiplier == 0 {
		s.RetryBackoffMultiplier = 2.0
	}
	if s.RetryBackoffMaxDelaySecond == 0 {
		s.RetryBackoffMaxDelaySecond = 60
	}
	if s.SpotifyRateLimitRequests == 0 {
		s.SpotifyRateLimitRequests = 10
	}
	if s.SpotifyRateLimitWindow == 0 {
		s.SpotifyRateLimitWindow = 1.0
	}
	if s.UpgradeBitrateKbps == 0 {
		s.UpgradeBitrateKbps = 320
	}
	if s.UpgradeBitrateToleranceKbps == 0 {
		s.UpgradeBitrateToleranceKbps = 16
	}
}

// Validate validates Settings.
func (s *Settings) Validate() error {
	if !strings.HasSuffix(s.Bitrate, "k") {
		return &ConfigError{
			Message: fmt.Sprintf("Invalid bitrate: %s. Expected a value like 320k", s.Bitrate),
		}
	}
	if s.SongDelayMinSeconds > s.SongDelayMaxSeconds {
		return &ConfigError{
			Message: fmt.Sprintf(
				"Invalid song delay range: min %d > max %d",
				s.SongDelayMinSeconds, s.SongDelayMaxSeconds,
			),
		}
	}
	if s.PauseAfterFailures > s.AbortAfterFailures {
		return &ConfigError{
			Message: fmt.Sprintf(
				"pause_after_failures (%d) must not exceed abort_after_failures (%d)",
				s.PauseAfterFailures, s.AbortAfterFailures,
			),
		}
	}
	if s.RetryBackoff != BackoffFixed && s.RetryBackoff != BackoffExponential {
		return &ConfigError{
			Message: fmt.Sprintf("Invalid retry_backoff: %s. Must be one of: fixed, exponential", s.RetryBackoff),
		}
	}
	if s.DurationMaxSeconds < 0 || s.DurationWarnDeltaSeconds < 0 {
		return &ConfigError{
			Message: "Duration limits must not be negative",
		}
	}
	return nil
}
