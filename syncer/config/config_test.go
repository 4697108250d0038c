package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSettings_Defaults(t *testing.T) {
	var s Settings
	s.SetDefaults()

	if s.Bitrate != "320k" {
		t.Errorf("Expected 320k, got %s", s.Bitrate)
	}
	if s.DurationMaxSeconds != 900 {
		t.Errorf("Expected 900, got %d", s.DurationMaxSeconds)
	}
	if s.SongDelayMinSeconds != 3 || s.SongDelayMaxSeconds != 8 {
		t.Errorf("Expected 3-8 song delay, got %d-%d", s.SongDelayMinSeconds, s.SongDelayMaxSeconds)
	}
	if s.PlaylistMaxRetries != 2 {
		t.Errorf("Expected 2 playlist retries, got %d", s.PlaylistMaxRetries)
	}
	if s.RetryBackoff != BackoffFixed {
		t.Errorf("Expected fixed backoff, got %s", s.RetryBackoff)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("Defaults should validate, got %v", err)
	}
}

func TestSettings_ValidateRejectsBadRange(t *testing.T) {
	var s Settings
	s.SetDefaults()
	s.SongDelayMinSeconds = 10
	s.SongDelayMaxSeconds = 5

	err := s.Validate()
	if err == nil {
		t.Fatal("Expected error for inverted delay range")
	}
	if _, ok := err.(*ConfigError); !ok {
		t.Errorf("Expected ConfigError, got %T", err)
	}
}

func TestSettings_ValidateRejectsBadBackoff(t *testing.T) {
	var s Settings
	s.SetDefaults()
	s.RetryBackoff = "fibonacci"

	if err := s.Validate(); err == nil {
		t.Fatal("Expected error for unknown backoff mode")
	}
}

func TestLoadSettings_MissingFileUsesDefaults(t *testing.T) {
	s, err := LoadSettings(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Expected defaults for missing file, got %v", err)
	}
	if s.ExportRoot != "Music" {
		t.Errorf("Expected Music, got %s", s.ExportRoot)
	}
}

func TestLoadSettings_OverridesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	content := "export_root: Library\nbitrate: 256k\nplaylist_delay_seconds: 20\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	s, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.ExportRoot != "Library" {
		t.Errorf("Expected Library, got %s", s.ExportRoot)
	}
	if s.Bitrate != "256k" {
		t.Errorf("Expected 256k, got %s", s.Bitrate)
	}
	if s.PlaylistDelaySeconds != 20 {
		t.Errorf("Expected 20, got %d", s.PlaylistDelaySeconds)
	}
	// Untouched keys keep defaults
	if s.DurationMaxSeconds != 900 {
		t.Errorf("Expected default 900, got %d", s.DurationMaxSeconds)
	}
}

func TestLoadSettings_RejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte("export_root: [unclosed"), 0644); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if _, err := LoadSettings(path); err == nil {
		t.Fatal("Expected error for malformed YAML")
	}
}

func TestLoadCredentials_MissingAreReported(t *testing.T) {
	t.Setenv("SPOTIFY_CLIENT_ID", "")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "")

	_, err := LoadCredentials("")
	if err == nil {
		t.Fatal("Expected error for missing credentials")
	}
}

func TestLoadCredentials_PlaceholdersAreUnset(t *testing.T) {
	t.Setenv("SPOTIFY_CLIENT_ID", "your-client-id")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "real-secret")

	if _, err := LoadCredentials(""); err == nil {
		t.Fatal("Expected placeholder client id to be treated as unset")
	}
}

func TestLoadCredentials_FromEnvFile(t *testing.T) {
	// t.Setenv registers restoration; unset so the .env file applies.
	t.Setenv("SPOTIFY_CLIENT_ID", "")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "")
	os.Unsetenv("SPOTIFY_CLIENT_ID")
	os.Unsetenv("SPOTIFY_CLIENT_SECRET")

	path := filepath.Join(t.TempDir(), ".env")
	content := "SPOTIFY_CLIENT_ID=abc\nSPOTIFY_CLIENT_SECRET=def\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	creds, err := LoadCredentials(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if creds.ClientID != "abc" || creds.ClientSecret != "def" {
		t.Errorf("Unexpected credentials: %+v", creds)
	}
	if creds.RedirectURI != defaultRedirectURI {
		t.Errorf("Expected default redirect URI, got %s", creds.RedirectURI)
	}
}
