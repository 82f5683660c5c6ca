package utils

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// FindUp looks for name in dir and each of its parents. It returns the path
// of the first regular file found, or "" when the filesystem root is reached.
func FindUp(fs afero.Fs, dir, name string) (string, error) {
	current, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", dir, err)
	}

	for {
		candidate := filepath.Join(current, name)
		info, err := fs.Stat(candidate)
		if err == nil && info.Mode().IsRegular() {
			return candidate, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			return "", nil
		}
		current = parent
	}
}
