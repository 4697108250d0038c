package library

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Inventory maps normalized filename stems to the actual filenames
// found in a playlist folder.
type Inventory map[string]string

// Scan reads a playlist folder and indexes every .mp3 file by its
// normalized stem. A missing folder yields an empty inventory, not an
// error: the folder is created on first download.
func Scan(dir string) (Inventory, error) {
	inv := make(Inventory)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return inv, nil
		}
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.EqualFold(filepath.Ext(name), ".mp3") {
			continue
		}
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		inv[Normalize(stem)] = name
	}

	return inv, nil
}

// Has reports whether a file matching the expected filename is
// already present, by normalized stem.
func (inv Inventory) Has(expectedFilename string) bool {
	stem := strings.TrimSuffix(expectedFilename, filepath.Ext(expectedFilename))
	_, ok := inv[Normalize(stem)]
	return ok
}

// Match returns the actual filename matching the expected filename,
// or "" if none is present.
func (inv Inventory) Match(expectedFilename string) string {
	stem := strings.TrimSuffix(expectedFilename, filepath.Ext(expectedFilename))
	return inv[Normalize(stem)]
}
