package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
)

// AcquireLock takes an exclusive pid lock so two runs never write the
// same library concurrently. A lock left by a dead process is broken
// and re-acquired. The returned func releases the lock.
func AcquireLock(path string) (release func(), err error) {
	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if err == nil {
			fmt.Fprintf(f, "%d\n", os.Getpid())
			f.Close()
			return func() { os.Remove(path) }, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("create lock file %s: %w", path, err)
		}

		pid, readErr := readLockPid(path)
		if readErr == nil && pidAlive(pid) {
			return nil, fmt.Errorf("another run is in progress (pid %d holds %s)", pid, path)
		}

		// Stale lock from a dead process.
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			return nil, fmt.Errorf("remove stale lock file %s: %w", path, rmErr)
		}
	}
	return nil, fmt.Errorf("could not acquire lock file %s", path)
}

func readLockPid(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

// pidAlive reports whether a process with the given pid exists.
func pidAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := syscall.Kill(pid, 0)
	return err == nil || err == syscall.EPERM
}
