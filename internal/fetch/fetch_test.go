package fetch

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"pdfjp/internal/logger"
	"pdfjp/internal/types"
)

func newTestResolver(t *testing.T, retries int) *Resolver {
	t.Helper()
	tmpDir, err := os.MkdirTemp("", "fetch_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tmpDir) })
	r := NewResolver(tmpDir, 2*time.Second, retries, logger.Noop())
	r.retryDelay = 10 * time.Millisecond
	return r
}

func assertCode(t *testing.T, err error, want types.ErrorCode) {
	t.Helper()
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	appErr, ok := err.(*types.AppError)
	if !ok {
		t.Fatalf("Expected *types.AppError, got %T: %v", err, err)
	}
	if appErr.Code != want {
		t.Errorf("Expected error code %s, got %s", want, appErr.Code)
	}
}

func TestResolve_LocalPDFPassThrough(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "fetch_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	pdfPath := filepath.Join(tmpDir, "report.pdf")
	if err := os.WriteFile(pdfPath, []byte("not checked for local files"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	r := newTestResolver(t, 1)
	resolved, err := r.Resolve(pdfPath)
	if err != nil {
		t.Fatalf("Resolve() returned error: %v", err)
	}
	if resolved != pdfPath {
		t.Errorf("Resolve() = %q, want %q", resolved, pdfPath)
	}
}

func TestResolve_LocalPDFMissing(t *testing.T) {
	r := newTestResolver(t, 1)
	_, err := r.Resolve(filepath.Join(os.TempDir(), "no-such-file.pdf"))
	assertCode(t, err, types.ErrFileNotFound)
}

func TestResolve_InvalidTarget(t *testing.T) {
	r := newTestResolver(t, 1)
	_, err := r.Resolve("notes.txt")
	assertCode(t, err, types.ErrInvalidInput)
}

func TestResolve_RemoteNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		http.NotFound(w, req)
	}))
	defer server.Close()

	r := newTestResolver(t, 3)
	_, err := r.Resolve(server.URL + "/missing.pdf")
	assertCode(t, err, types.ErrFetch)
}

func TestResolve_RemoteServerErrorRetries(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	r := newTestResolver(t, 3)
	_, err := r.Resolve(server.URL + "/paper.pdf")
	assertCode(t, err, types.ErrNetwork)

	if got := attempts.Load(); got != 3 {
		t.Errorf("server saw %d attempts, want 3", got)
	}
}

func TestResolve_RemoteNotFoundDoesNotRetry(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		attempts.Add(1)
		http.NotFound(w, req)
	}))
	defer server.Close()

	r := newTestResolver(t, 3)
	_, err := r.Resolve(server.URL + "/missing.pdf")
	assertCode(t, err, types.ErrFetch)

	if got := attempts.Load(); got != 1 {
		t.Errorf("server saw %d attempts, want 1 (404 is not retryable)", got)
	}
}

func TestResolve_RemoteNonPDFBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte("<html>this is not a pdf</html>"))
	}))
	defer server.Close()

	r := newTestResolver(t, 1)
	_, err := r.Resolve(server.URL + "/paper.pdf")
	assertCode(t, err, types.ErrFetch)
}

func TestFilenameFromURL(t *testing.T) {
	testCases := []struct {
		name     string
		url      string
		expected string
	}{
		{"pdf basename", "https://example.org/papers/report.pdf", "report.pdf"},
		{"no extension", "https://example.org/papers/report", "report.pdf"},
		{"query string ignored", "https://example.org/report.pdf?dl=1", "report.pdf"},
		{"trailing slash", "https://example.org/papers/", "papers.pdf"},
		{"bare host", "https://example.org", "download.pdf"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FilenameFromURL(tc.url); got != tc.expected {
				t.Errorf("FilenameFromURL(%q) = %q, want %q", tc.url, got, tc.expected)
			}
		})
	}
}

func TestDecodePDFText(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain ascii", "Attention Is All You Need", "Attention Is All You Need"},
		{"utf16be with bom", "\xfe\xff\x30\x42", "あ"},
		{"empty", "", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := decodePDFText(tc.input); got != tc.expected {
				t.Errorf("decodePDFText(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}
