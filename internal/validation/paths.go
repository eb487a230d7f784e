package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PrepareFilePath cleans path, makes it absolute and creates its parent
// directory. It refuses paths that name an existing directory.
func PrepareFilePath(path string) (string, error) {
	clean, err := cleanPath(path)
	if err != nil {
		return "", err
	}
	if info, err := os.Stat(clean); err == nil && info.IsDir() {
		return "", fmt.Errorf("%s is a directory", clean)
	}
	if err := os.MkdirAll(filepath.Dir(clean), 0o755); err != nil {
		return "", fmt.Errorf("creating directory: %w", err)
	}
	return clean, nil
}

// PrepareDirPath is PrepareFilePath for paths that are themselves
// directories, such as a bleve index. The directory itself is not created.
func PrepareDirPath(path string) (string, error) {
	clean, err := cleanPath(path)
	if err != nil {
		return "", err
	}
	if info, err := os.Stat(clean); err == nil && !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", clean)
	}
	if err := os.MkdirAll(filepath.Dir(clean), 0o755); err != nil {
		return "", fmt.Errorf("creating directory: %w", err)
	}
	return clean, nil
}

func cleanPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}
	if strings.ContainsRune(path, 0) {
		return "", fmt.Errorf("path contains null bytes")
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, path[2:])
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	return filepath.Clean(abs), nil
}
