// Package filesystem provides path helpers shared by the configuration and
// database layers.
package filesystem

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Common file system errors
var (
	ErrFileNotFound = errors.New("file not found")
	ErrDirNotFound  = errors.New("directory not found")
)

// GetDefaultPath returns a default file path in the executable directory
func GetDefaultPath(filename string) (string, error) {
	exePath, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %w", err)
	}

	exeDir := filepath.Dir(exePath)
	return filepath.Join(exeDir, filename), nil
}

// ResolvePath returns path unchanged when it is absolute or exists relative to the
// working directory. Otherwise the executable directory is tried, and the original
// path is returned with ErrFileNotFound if neither location has the file.
func ResolvePath(path string) (string, error) {
	if filepath.IsAbs(path) {
		if _, err := os.Stat(path); err != nil {
			return path, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return path, nil
	}

	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	if execPath, err := GetDefaultPath(path); err == nil {
		if _, err := os.Stat(execPath); err == nil {
			return execPath, nil
		}
	}

	return path, fmt.Errorf("%w: %s", ErrFileNotFound, path)
}

// EnsureDirectoryExists creates the directory for the given file path if it doesn't exist
func EnsureDirectoryExists(filePath string) error {
	dir := filepath.Dir(filePath)
	if dir == "." {
		return nil // Current directory
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrDirNotFound, dir)
		}
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	return nil
}
