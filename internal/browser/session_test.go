package browser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pdfjp/internal/logger"
)

func TestStripHeadlessMarker(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "headless chrome",
			input:    "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) HeadlessChrome/120.0.0.0 Safari/537.36",
			expected: "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		},
		{
			name:     "already normal",
			input:    "Mozilla/5.0 Chrome/120.0.0.0",
			expected: "Mozilla/5.0 Chrome/120.0.0.0",
		},
		{
			name:     "empty",
			input:    "",
			expected: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := stripHeadlessMarker(tc.input); got != tc.expected {
				t.Errorf("stripHeadlessMarker(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestClose_IdempotentAfterPartialSetup(t *testing.T) {
	stagingDir, err := os.MkdirTemp("", "browser_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	// A session whose launch never happened: only the staging directory
	// exists. Close must remove it and be safe to call twice.
	s := &Session{log: logger.Noop(), stagingDir: stagingDir}

	s.Close()
	s.Close()

	if _, err := os.Stat(stagingDir); !os.IsNotExist(err) {
		os.RemoveAll(stagingDir)
		t.Error("staging directory should be removed by Close")
	}
}

func TestStagingDirNaming(t *testing.T) {
	s := &Session{log: logger.Noop(), stagingDir: filepath.Join(os.TempDir(), "pdfjp-abc")}
	if got := s.StagingDir(); !strings.Contains(got, "pdfjp-") {
		t.Errorf("StagingDir() = %q, want a pdfjp- prefixed path", got)
	}
}
