// Package fetch resolves the CLI target into a local PDF path. A local
// path passes through after an existence check; a remote URL is downloaded,
// checked for PDF document metadata, and saved next to the working
// directory under the URL's base name.
package fetch

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"golang.org/x/text/encoding/unicode"

	"pdfjp/internal/logger"
	"pdfjp/internal/parser"
	"pdfjp/internal/types"
)

const (
	// BaseRetryDelay is the base delay between retries (multiplied by the
	// attempt number).
	BaseRetryDelay = 2 * time.Second

	userAgent = "pdfjp/1.0"
)

// Resolver turns a CLI target into a local PDF path.
type Resolver struct {
	httpClient *http.Client
	maxRetries int
	retryDelay time.Duration
	workDir    string
	log        logger.Logger
}

// NewResolver creates a Resolver. Remote PDFs are saved into workDir
// (the current directory when empty). timeout bounds a single request and
// maxRetries is the total attempt count.
func NewResolver(workDir string, timeout time.Duration, maxRetries int, log logger.Logger) *Resolver {
	if workDir == "" {
		workDir = "."
	}
	return &Resolver{
		httpClient: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return types.NewAppError(types.ErrNetwork, "too many redirects", nil)
				}
				return nil
			},
		},
		maxRetries: maxRetries,
		retryDelay: BaseRetryDelay,
		workDir:    workDir,
		log:        log,
	}
}

// Resolve classifies the target and yields a local PDF path.
func (r *Resolver) Resolve(target string) (string, error) {
	sourceType, err := parser.ParseInput(r.log, target)
	if err != nil {
		return "", err
	}

	switch sourceType {
	case types.SourceTypeURL:
		return r.fetchRemote(strings.TrimSpace(target))
	case types.SourceTypeLocalPDF:
		localPath := strings.TrimSpace(target)
		if _, err := os.Stat(localPath); err != nil {
			r.log.Error("local PDF not found", err, logger.String("path", localPath))
			return "", types.NewAppError(types.ErrFileNotFound, "PDF file not found", err)
		}
		return localPath, nil
	default:
		return "", types.NewAppError(types.ErrInternal, "unhandled source type", nil)
	}
}

// fetchRemote downloads the PDF at url, verifies it carries document
// metadata, and writes it to the work directory.
func (r *Resolver) fetchRemote(url string) (string, error) {
	r.log.Info("fetching remote PDF", logger.String("url", url))

	body, err := r.getWithRetry(url)
	if err != nil {
		return "", err
	}

	title, err := documentTitle(body)
	if err != nil {
		r.log.Error("failed to read PDF metadata", err, logger.String("url", url))
		return "", err
	}
	r.log.Info("remote PDF metadata", logger.String("title", title))

	if err := os.MkdirAll(r.workDir, 0755); err != nil {
		return "", types.NewAppError(types.ErrInternal, "failed to create work directory", err)
	}

	destPath := filepath.Join(r.workDir, FilenameFromURL(url))
	if err := os.WriteFile(destPath, body, 0644); err != nil {
		return "", types.NewAppError(types.ErrInternal, "failed to save downloaded PDF", err)
	}

	if err := api.ValidateFile(destPath, nil); err != nil {
		os.Remove(destPath)
		r.log.Error("downloaded file failed PDF validation", err, logger.String("url", url))
		return "", types.NewAppError(types.ErrFetch, "downloaded file is not a valid PDF", err)
	}

	r.log.Info("remote PDF saved", logger.String("path", destPath))
	return destPath, nil
}

// getWithRetry performs an HTTP GET with retry logic for transient errors.
func (r *Resolver) getWithRetry(url string) ([]byte, error) {
	var lastErr error

	for attempt := 1; attempt <= r.maxRetries; attempt++ {
		r.log.Debug("fetch attempt", logger.Int("attempt", attempt), logger.String("url", url))
		body, err := r.get(url)
		if err == nil {
			return body, nil
		}

		lastErr = err
		r.log.Warn("fetch attempt failed", logger.Int("attempt", attempt), logger.Err(err))

		if !isRetryable(err) {
			return nil, err
		}

		if attempt < r.maxRetries {
			time.Sleep(r.retryDelay * time.Duration(attempt))
		}
	}

	return nil, types.NewAppErrorWithDetails(
		types.ErrNetwork,
		"fetch failed after multiple retries",
		fmt.Sprintf("attempted %d times", r.maxRetries),
		lastErr,
	)
}

func (r *Resolver) get(url string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, types.NewAppError(types.ErrInternal, "failed to create HTTP request", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, types.NewAppError(types.ErrNetwork, "network request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httpStatusError(resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, types.NewAppError(types.ErrNetwork, "failed to read response body", err)
	}
	return body, nil
}

// httpStatusError creates an appropriate AppError based on the HTTP status code.
func httpStatusError(statusCode int, url string) error {
	switch {
	case statusCode == http.StatusNotFound:
		return types.NewAppErrorWithDetails(types.ErrFetch, "resource not found",
			fmt.Sprintf("URL: %s returned 404", url), nil)
	case statusCode == http.StatusForbidden:
		return types.NewAppErrorWithDetails(types.ErrFetch, "access forbidden",
			fmt.Sprintf("URL: %s returned 403", url), nil)
	case statusCode >= 500:
		return types.NewAppErrorWithDetails(types.ErrNetwork, "server error",
			fmt.Sprintf("URL: %s returned %d", url, statusCode), nil)
	default:
		return types.NewAppErrorWithDetails(types.ErrFetch, "fetch failed",
			fmt.Sprintf("URL: %s returned status %d", url, statusCode), nil)
	}
}

// isRetryable determines if an error should trigger a retry. Network and
// server errors are retryable; everything else is not.
func isRetryable(err error) bool {
	if appErr, ok := err.(*types.AppError); ok {
		return appErr.Code == types.ErrNetwork
	}
	return false
}

// documentTitle parses the PDF in body and returns its metadata title.
// A PDF without an Info dictionary is rejected: responses that are not a
// real PDF (error pages, HTML) fail here before anything touches disk.
func documentTitle(body []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return "", types.NewAppError(types.ErrFetch, "response is not a parseable PDF", err)
	}

	info := reader.Trailer().Key("Info")
	if info.Kind() != pdf.Dict {
		return "", types.NewAppError(types.ErrFetch, "PDF has no document metadata", nil)
	}

	title := info.Key("Title")
	if title.Kind() != pdf.String {
		return "", nil
	}
	return decodePDFText(title.RawString()), nil
}

// decodePDFText converts a PDF text string to UTF-8. PDF text strings are
// either UTF-16BE with a BOM or PDFDocEncoded (treated here as Latin-ish
// bytes, which covers the ASCII titles this tool meets in practice).
func decodePDFText(s string) string {
	if strings.HasPrefix(s, "\xfe\xff") {
		dec := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()
		if decoded, err := dec.String(s); err == nil {
			return decoded
		}
	}
	return s
}

// FilenameFromURL derives the saved file name from the URL's last path
// segment, appending .pdf when missing.
func FilenameFromURL(rawURL string) string {
	base := ""
	if u, err := neturl.Parse(rawURL); err == nil {
		base = path.Base(u.Path)
	}
	if base == "" || base == "." || base == "/" {
		base = "download"
	}
	if !strings.HasSuffix(strings.ToLower(base), ".pdf") {
		base += ".pdf"
	}
	return base
}
