package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

// FindUp walks from start towards the filesystem root and returns the first
// directory for which found returns true. Returns an empty string if none
// matches. Stops searching above the user's home directory.
func FindUp(start string, found func(dir string) bool) (string, error) {
	currentDir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", start, err)
	}

	// A missing home directory only disables the early stop.
	homeDir, _ := os.UserHomeDir()
	var stopDir string
	if homeDir != "" {
		stopDir = filepath.Dir(homeDir)
	}

	for {
		if currentDir == stopDir {
			return "", nil
		}

		if found(currentDir) {
			return currentDir, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", nil
		}
		currentDir = parentDir
	}
}
