package main

import (
	"io"
	"log"
	"os"
	"sync"
)

// LogTeeWriter writes log output to a file and mirrors it to the
// console so interactive runs stay visible.
type LogTeeWriter struct {
	file    *os.File
	console io.Writer
	mu      sync.Mutex
}

// NewLogTeeWriter creates a writer that appends to logPath and
// mirrors every line to console (if non-nil).
func NewLogTeeWriter(logPath string, console io.Writer) (*LogTeeWriter, error) {
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	return &LogTeeWriter{file: f, console: console}, nil
}

// Write implements io.Writer. A console write error never fails the
// log write.
func (w *LogTeeWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	n, err = w.file.Write(p)
	if w.console != nil {
		w.console.Write(p)
	}
	return n, err
}

// Close closes the underlying file.
func (w *LogTeeWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file != nil {
		err := w.file.Close()
		w.file = nil
		return err
	}
	return nil
}

// RedirectLogToFile redirects the standard log output to the given writer and returns a restore func.
func RedirectLogToFile(w io.Writer) (restore func()) {
	oldFlags := log.Flags()
	oldPrefix := log.Prefix()
	oldOut := log.Writer()
	log.SetOutput(w)
	log.SetFlags(log.LstdFlags)
	log.SetPrefix("")
	return func() {
		log.SetOutput(oldOut)
		log.SetFlags(oldFlags)
		log.SetPrefix(oldPrefix)
	}
}

// setupRunLog prepares the per-run log directory and redirects the
// standard logger into it. With noLogFile set, logging stays on the
// console and no directory is created.
func setupRunLog(command string, noLogFile bool) (runDir, logPath string, cleanup func(), err error) {
	if noLogFile {
		return "", "", func() {}, nil
	}

	runDir, logPath, err = CreateRunDir(command)
	if err != nil {
		return "", "", nil, err
	}

	tee, err := NewLogTeeWriter(logPath, os.Stderr)
	if err != nil {
		return "", "", nil, err
	}
	restore := RedirectLogToFile(tee)

	if err := UpdateLatestLink(logPath); err != nil {
		log.Printf("WARN: latest_log_link_failed error=%v", err)
	}

	cleanup = func() {
		restore()
		tee.Close()
	}
	return runDir, logPath, cleanup, nil
}
