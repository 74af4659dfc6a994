package filesystem

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestEnsureDirectoryExists(t *testing.T) {
	tempDir := t.TempDir()

	tests := []struct {
		name     string
		filePath string
		wantDir  string
	}{
		{
			name:     "current directory",
			filePath: "test.txt",
			wantDir:  "",
		},
		{
			name:     "single directory",
			filePath: filepath.Join(tempDir, "newdir", "test.db"),
			wantDir:  filepath.Join(tempDir, "newdir"),
		},
		{
			name:     "nested directories",
			filePath: filepath.Join(tempDir, "level1", "level2", "level3", "test.db"),
			wantDir:  filepath.Join(tempDir, "level1", "level2", "level3"),
		},
		{
			name:     "directory already exists",
			filePath: filepath.Join(tempDir, "test.db"),
			wantDir:  tempDir,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := EnsureDirectoryExists(tt.filePath); err != nil {
				t.Fatalf("EnsureDirectoryExists(%q) error = %v", tt.filePath, err)
			}

			if tt.wantDir == "" {
				return
			}

			info, err := os.Stat(tt.wantDir)
			if err != nil {
				t.Fatalf("directory %q was not created: %v", tt.wantDir, err)
			}
			if !info.IsDir() {
				t.Errorf("%q is not a directory", tt.wantDir)
			}
		})
	}
}

func TestResolvePath(t *testing.T) {
	tempDir := t.TempDir()

	existing := filepath.Join(tempDir, "config.yaml")
	if err := os.WriteFile(existing, []byte("feeds: []"), 0o644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	t.Run("absolute existing path", func(t *testing.T) {
		path, err := ResolvePath(existing)
		if err != nil {
			t.Fatalf("ResolvePath(%q) error = %v", existing, err)
		}
		if path != existing {
			t.Errorf("ResolvePath(%q) = %q, expected unchanged", existing, path)
		}
	})

	t.Run("absolute missing path", func(t *testing.T) {
		missing := filepath.Join(tempDir, "missing.yaml")
		path, err := ResolvePath(missing)
		if !errors.Is(err, ErrFileNotFound) {
			t.Errorf("ResolvePath(%q) error = %v, expected ErrFileNotFound", missing, err)
		}
		if path != missing {
			t.Errorf("ResolvePath(%q) = %q, expected original path", missing, path)
		}
	})

	t.Run("relative missing path", func(t *testing.T) {
		path, err := ResolvePath("definitely-not-here.yaml")
		if !errors.Is(err, ErrFileNotFound) {
			t.Errorf("ResolvePath() error = %v, expected ErrFileNotFound", err)
		}
		if path != "definitely-not-here.yaml" {
			t.Errorf("ResolvePath() = %q, expected original path", path)
		}
	})
}

func TestGetDefaultPath(t *testing.T) {
	result, err := GetDefaultPath("relay.db")
	if err != nil {
		t.Fatalf("GetDefaultPath() error = %v", err)
	}

	if !filepath.IsAbs(result) {
		t.Errorf("GetDefaultPath() = %q, should be absolute path", result)
	}

	if filepath.Base(result) != "relay.db" {
		t.Errorf("GetDefaultPath() = %q, should end with relay.db", result)
	}
}
