package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Credentials holds the Spotify application credentials.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

const defaultRedirectURI = "http://localhost:8080/callback"

// placeholder values shipped in .env.example; treated as unset.
var placeholders = map[string]bool{
	"your-client-id":     true,
	"your-client-secret": true,
	"changeme":           true,
}

// LoadCredentials loads Spotify credentials from a .env file (if
// present) and the process environment. The environment wins over the
// file.
func LoadCredentials(envPath string) (*Credentials, error) {
	if envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				return nil, &ConfigError{
					Message: fmt.Sprintf("Error loading %s: %v", envPath, err),
				}
			}
		}
	}

	creds := &Credentials{
		ClientID:     cleanEnv("SPOTIFY_CLIENT_ID"),
		ClientSecret: cleanEnv("SPOTIFY_CLIENT_SECRET"),
		RedirectURI:  cleanEnv("SPOTIFY_REDIRECT_URI"),
	}
	if creds.RedirectURI == "" {
		creds.RedirectURI = defaultRedirectURI
	}

	missing := []string{}
	if creds.ClientID == "" {
		missing = append(missing, "SPOTIFY_CLIENT_ID")
	}
	if creds.ClientSecret == "" {
		missing = append(missing, "SPOTIFY_CLIENT_SECRET")
	}
	if len(missing) > 0 {
		return nil, &ConfigError{
			Message: fmt.Sprintf(
				"Missing Spotify credentials: %s. Create an app at https://developer.spotify.com/dashboard and set them in .env or the environment",
				strings.Join(missing, " and "),
			),
		}
	}

	return creds, nil
}

func cleanEnv(key string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if placeholders[strings.ToLower(v)] {
		return ""
	}
	return v
}
