package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// LogLevel represents the log level.
type LogLevel string

const (
	LogLevelInfo  LogLevel = "INFO"
	LogLevelWarn  LogLevel = "WARN"
	LogLevelError LogLevel = "ERROR"
)

// Event is one structured entry in the machine-readable run log,
// written alongside the plain-text log in the run directory.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Level     LogLevel  `json:"level"`
	Message   string    `json:"message"`
	Playlist  string    `json:"playlist,omitempty"`
	Track     string    `json:"track,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// Logger appends JSON-lines events to a file.
type Logger struct {
	file *os.File
	mu   sync.Mutex
}

// NewLogger opens (or creates) the events file in append mode.
func NewLogger(path string) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open event log: %w", err)
	}
	return &Logger{file: file}, nil
}

// Close closes the events file.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

func (l *Logger) log(level LogLevel, message, playlist, track string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return
	}

	event := Event{
		Timestamp: time.Now(),
		Level:     level,
		Message:   message,
		Playlist:  playlist,
		Track:     track,
	}
	if err != nil {
		event.Error = err.Error()
	}

	data, marshalErr := json.Marshal(event)
	if marshalErr != nil {
		_, _ = fmt.Fprintf(l.file, "{\"timestamp\":%q,\"level\":%q,\"message\":%q}\n",
			time.Now().Format(time.RFC3339), level, message)
		return
	}
	_, _ = fmt.Fprintln(l.file, string(data))
}

// Info logs an informational event.
func (l *Logger) Info(message string) {
	l.log(LogLevelInfo, message, "", "", nil)
}

// Infof logs a formatted informational event.
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// PlaylistInfo logs an event scoped to a playlist folder.
func (l *Logger) PlaylistInfo(playlist, message string) {
	l.log(LogLevelInfo, message, playlist, "", nil)
}

// TrackInfo logs an event scoped to a track within a playlist.
func (l *Logger) TrackInfo(playlist, track, message string) {
	l.log(LogLevelInfo, message, playlist, track, nil)
}

// Warn logs a warning event.
func (l *Logger) Warn(message string) {
	l.log(LogLevelWarn, message, "", "", nil)
}

// TrackWarn logs a warning scoped to a track.
func (l *Logger) TrackWarn(playlist, track, message string) {
	l.log(LogLevelWarn, message, playlist, track, nil)
}

// Error logs an error event.
func (l *Logger) Error(message string, err error) {
	l.log(LogLevelError, message, "", "", err)
}

// TrackError logs an error scoped to a track.
func (l *Logger) TrackError(playlist, track, message string, err error) {
	l.log(LogLevelError, message, playlist, track, err)
}
