package parser

import (
	"testing"

	"pdfjp/internal/logger"
	"pdfjp/internal/types"
)

func TestParseInput_EmptyInput(t *testing.T) {
	_, err := ParseInput(logger.Noop(), "")
	if err == nil {
		t.Error("Expected error for empty input, got nil")
	}
	appErr, ok := err.(*types.AppError)
	if !ok {
		t.Fatalf("Expected *types.AppError, got %T", err)
	}
	if appErr.Code != types.ErrInvalidInput {
		t.Errorf("Expected error code %s, got %s", types.ErrInvalidInput, appErr.Code)
	}
}

func TestParseInput_WhitespaceOnlyInput(t *testing.T) {
	_, err := ParseInput(logger.Noop(), "   ")
	if err == nil {
		t.Error("Expected error for whitespace-only input, got nil")
	}
}

func TestParseInput_URL(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{"HTTPS URL", "https://example.org/paper.pdf"},
		{"HTTP URL", "http://example.org/paper.pdf"},
		{"URL without pdf extension", "https://example.org/download?id=42"},
		{"URL with uppercase scheme", "HTTPS://example.org/paper.pdf"},
		{"URL with whitespace", "  https://example.org/paper.pdf  "},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sourceType, err := ParseInput(logger.Noop(), tc.input)
			if err != nil {
				t.Errorf("Unexpected error for %s: %v", tc.input, err)
			}
			if sourceType != types.SourceTypeURL {
				t.Errorf("Expected SourceTypeURL for %s, got %s", tc.input, sourceType)
			}
		})
	}
}

func TestParseInput_LocalPDF(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{"bare file name", "report.pdf"},
		{"relative path", "./docs/report.pdf"},
		{"absolute path", "/home/user/report.pdf"},
		{"uppercase extension", "REPORT.PDF"},
		{"with whitespace", "  report.pdf  "},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sourceType, err := ParseInput(logger.Noop(), tc.input)
			if err != nil {
				t.Errorf("Unexpected error for %s: %v", tc.input, err)
			}
			if sourceType != types.SourceTypeLocalPDF {
				t.Errorf("Expected SourceTypeLocalPDF for %s, got %s", tc.input, sourceType)
			}
		})
	}
}

func TestParseInput_Invalid(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{"text file", "notes.txt"},
		{"ftp URL", "ftp://example.org/report.pdf"},
		{"bare word", "report"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseInput(logger.Noop(), tc.input)
			if err == nil {
				t.Errorf("Expected error for %s, got nil", tc.input)
				return
			}
			appErr, ok := err.(*types.AppError)
			if !ok {
				t.Fatalf("Expected *types.AppError, got %T", err)
			}
			if appErr.Code != types.ErrInvalidInput {
				t.Errorf("Expected error code %s, got %s", types.ErrInvalidInput, appErr.Code)
			}
		})
	}
}
