// Package testutil provides golden file testing utilities.
package testutil

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var update = flag.Bool("update", false, "update golden files")

// CompareGolden compares actual with the content of the golden file.
// Run the tests with -update to rewrite the golden file instead.
func CompareGolden(t *testing.T, goldenPath string, actual string) {
	t.Helper()

	if *update {
		updateGoldenFile(t, goldenPath, actual)
		return
	}

	expected := readGoldenFile(t, goldenPath)
	if actual != expected {
		t.Errorf("Golden file mismatch for %s\nExpected:\n%q\nActual:\n%q", goldenPath, expected, actual)
	}
}

// readGoldenFile reads a golden file, normalizing CRLF line endings
func readGoldenFile(t *testing.T, goldenPath string) string {
	t.Helper()

	content, err := os.ReadFile(goldenPath)
	if err != nil {
		t.Fatalf("Failed to read golden file %s: %v", goldenPath, err)
	}
	return strings.ReplaceAll(string(content), "\r\n", "\n")
}

func updateGoldenFile(t *testing.T, goldenPath string, actual string) {
	t.Helper()

	dir := filepath.Dir(goldenPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("Failed to create directory %s: %v", dir, err)
	}

	if err := os.WriteFile(goldenPath, []byte(actual), 0o644); err != nil {
		t.Fatalf("Failed to update golden file %s: %v", goldenPath, err)
	}
	t.Logf("Updated golden file: %s", goldenPath)
}
