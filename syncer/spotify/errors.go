package spotify

import "fmt"

// AuthError represents a Spotify authentication failure. It is fatal:
// the run stops with a remediation hint instead of retrying.
type AuthError struct {
	Message  string
	Original error
}

func (e *AuthError) Error() string {
	if e.Original != nil {
		return fmt.Sprintf("Spotify auth error: %s: %v", e.Message, e.Original)
	}
	return fmt.Sprintf("Spotify auth error: %s", e.Message)
}

func (e *AuthError) Unwrap() error {
	return e.Original
}

// RateLimitError represents a Spotify API rate limit (HTTP 429).
type RateLimitError struct {
	RetryAfter int // Seconds to wait before retrying
	Original   error
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("Spotify API rate limited: retry after %d seconds: %v", e.RetryAfter, e.Original)
	}
	return fmt.Sprintf("Spotify API rate limited: %v", e.Original)
}

func (e *RateLimitError) Unwrap() error {
	return e.Original
}

// NotFoundError is returned for playlists that do not exist or are
// not visible to the authenticated user.
type NotFoundError struct {
	Resource string
	Original error
}

func (e *NotFoundError) Error() string {
	if e.Original != nil {
		return fmt.Sprintf("Spotify resource not found: %s: %v", e.Resource, e.Original)
	}
	return fmt.Sprintf("Spotify resource not found: %s", e.Resource)
}

func (e *NotFoundError) Unwrap() error {
	return e.Original
}
