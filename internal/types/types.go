// Package types defines core data types and enums shared across pdfjp.
package types

import (
	"errors"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// TranslatedSuffix is inserted before the file extension of the output path.
const TranslatedSuffix = "_ja"

// SourceType classifies a CLI target.
type SourceType string

const (
	SourceTypeURL      SourceType = "url"
	SourceTypeLocalPDF SourceType = "local_pdf"
)

// Job describes one translation run: where the input PDF lives and where
// the translated artifact must end up.
type Job struct {
	ID              string `json:"id"`
	SourcePath      string `json:"source_path"`
	DestinationPath string `json:"destination_path"`
}

// NewJob derives the destination path from the source path by inserting
// TranslatedSuffix before the extension. The base name is normalized to
// NFC so names that came off a macOS filesystem or a URL compare equal to
// what the remote service writes back.
func NewJob(id, sourcePath string) Job {
	return Job{
		ID:              id,
		SourcePath:      sourcePath,
		DestinationPath: translatedPath(sourcePath),
	}
}

func translatedPath(sourcePath string) string {
	dir := filepath.Dir(sourcePath)
	base := norm.NFC.String(filepath.Base(sourcePath))
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return filepath.Join(dir, stem+TranslatedSuffix+ext)
}

// Phase is a workflow state. Phases advance strictly forward; no phase is
// ever re-entered.
type Phase string

const (
	PhaseIdle                 Phase = "idle"
	PhaseSessionReady         Phase = "session_ready"
	PhasePageLoaded           Phase = "page_loaded"
	PhaseFileSelected         Phase = "file_selected"
	PhaseTranslationRequested Phase = "translation_requested"
	PhaseTranslationReady     Phase = "translation_ready"
	PhaseDownloadTriggered    Phase = "download_triggered"
	PhaseDone                 Phase = "done"
	PhaseFailed               Phase = "failed"
)

// ErrorCode classifies application errors.
type ErrorCode string

const (
	ErrNetwork         ErrorCode = "NETWORK_ERROR"
	ErrFetch           ErrorCode = "FETCH_ERROR"
	ErrInvalidInput    ErrorCode = "INVALID_INPUT"
	ErrFileNotFound    ErrorCode = "FILE_NOT_FOUND"
	ErrBrowser         ErrorCode = "BROWSER_ERROR"
	ErrElementNotFound ErrorCode = "ELEMENT_NOT_FOUND"
	ErrTimeout         ErrorCode = "TIMEOUT"
	ErrConfig          ErrorCode = "CONFIG_ERROR"
	ErrInternal        ErrorCode = "INTERNAL_ERROR"
)

// AppError is the application error type. Code identifies the failure
// class, Details carries diagnosis context (for timeouts, the elapsed
// bound), Cause preserves the underlying error for errors.Is/As.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Cause   error     `json:"-"`
}

// Error implements the error interface for AppError
func (e *AppError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

// Unwrap returns the underlying cause of the error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a new AppError with the given code, message, and optional cause
func NewAppError(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewAppErrorWithDetails creates a new AppError with details
func NewAppErrorWithDetails(code ErrorCode, message, details string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: details,
		Cause:   cause,
	}
}

// CodeOf returns the ErrorCode carried by err or anything it wraps, or
// ErrInternal when no AppError is in the chain.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal
}
