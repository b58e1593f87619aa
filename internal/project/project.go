// Package project locates the local application root.
package project

import (
	"fmt"
	"os"
	"path/filepath"
)

// Marker is the file that identifies the application root.
const Marker = "composer.json"

// FindRoot walks up from start until it finds a directory containing the
// marker file and returns that directory.
func FindRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("could not resolve %s: %w", start, err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, Marker)); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no %s found in %s or any parent directory", Marker, start)
		}
		dir = parent
	}
}

// FindRootFromWD is FindRoot anchored at the current working directory.
func FindRootFromWD() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("could not determine working directory: %w", err)
	}
	return FindRoot(wd)
}
