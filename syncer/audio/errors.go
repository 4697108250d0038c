package audio

import (
	"errors"
	"fmt"
)

// DownloadError represents a failed fetch for a single track.
type DownloadError struct {
	Message  string
	Original error
}

func (e *DownloadError) Error() string {
	if e.Original != nil {
		return fmt.Sprintf("Audio download error: %s: %v", e.Message, e.Original)
	}
	return fmt.Sprintf("Audio download error: %s", e.Message)
}

func (e *DownloadError) Unwrap() error {
	return e.Original
}

// ThrottleError represents provider-side throttling (HTTP 429). The
// orchestrator escalates through the wait ladder instead of recording
// a per-track failure.
type ThrottleError struct {
	Original error
}

func (e *ThrottleError) Error() string {
	return fmt.Sprintf("Provider throttled: %v", e.Original)
}

func (e *ThrottleError) Unwrap() error {
	return e.Original
}

// IsThrottle reports whether an error is provider throttling.
func IsThrottle(err error) bool {
	var te *ThrottleError
	return errors.As(err, &te)
}
