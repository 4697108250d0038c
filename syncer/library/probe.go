package library

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// ProbeAvailable verifies the ffprobe binary is on PATH.
func ProbeAvailable() error {
	if _, err := exec.LookPath("ffprobe"); err != nil {
		return fmt.Errorf("ffprobe not found on PATH; install ffmpeg to probe local files: %w", err)
	}
	return nil
}

// ProbeBitrateKbps returns the audio bitrate of a file in kbit/s
// using ffprobe. Used by upgrade mode to find low-quality files.
func ProbeBitrateKbps(ctx context.Context, path string) (int, error) {
	args := []string{
		"-v", "error",
		"-select_streams", "a:0",
		"-show_entries", "format=bit_rate",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	}
	out, err := exec.CommandContext(ctx, "ffprobe", args...).Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	raw := strings.TrimSpace(string(out))
	bps, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: unexpected bit_rate %q", path, raw)
	}
	return bps / 1000, nil
}

// ProbeDurationSeconds returns the duration of a file in seconds
// using ffprobe. Used to warn about fetches that do not match the
// expected track length.
func ProbeDurationSeconds(ctx context.Context, path string) (int, error) {
	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	}
	out, err := exec.CommandContext(ctx, "ffprobe", args...).Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	raw := strings.TrimSpace(string(out))
	seconds, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: unexpected duration %q", path, raw)
	}
	return int(seconds), nil
}
