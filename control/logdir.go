package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// getLogDir returns SPOTSYNC_LOG_DIR or ".logs" under current dir.
func getLogDir() string {
	if d := os.Getenv("SPOTSYNC_LOG_DIR"); d != "" {
		return d
	}
	return ".logs"
}

// CreateRunDir creates a per-run directory under the log dir
// (.logs/run_<timestamp>_<nanos>/) and returns the run directory path
// and the path to the command's log file inside it. Nanosecond suffix
// avoids collision when multiple runs start in the same second.
func CreateRunDir(command string) (runDir, logPath string, err error) {
	base := getLogDir()
	if err := os.MkdirAll(base, 0755); err != nil {
		return "", "", fmt.Errorf("create log base dir: %w", err)
	}
	now := time.Now()
	ts := strings.ReplaceAll(now.Format(time.RFC3339), ":", "-")
	runDir = filepath.Join(base, "run_"+ts+"_"+strconv.FormatInt(now.UnixNano(), 10))
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", "", fmt.Errorf("create run dir: %w", err)
	}
	logPath = filepath.Join(runDir, command+".log")
	return runDir, logPath, nil
}

// UpdateLatestLink repoints <logdir>/latest.log at the given run's
// log file so the newest log is always one known path away.
func UpdateLatestLink(logPath string) error {
	latest := filepath.Join(getLogDir(), "latest.log")
	if err := os.Remove(latest); err != nil && !os.IsNotExist(err) {
		return err
	}
	target, err := filepath.Rel(getLogDir(), logPath)
	if err != nil {
		target = logPath
	}
	return os.Symlink(target, latest)
}
