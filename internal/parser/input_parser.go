// Package parser classifies the CLI target for pdfjp.
package parser

import (
	"strings"

	"pdfjp/internal/logger"
	"pdfjp/internal/types"
)

// ParseInput analyzes the target string and determines its type.
//
// Input type rules:
// - Starts with http:// or https:// → URL type
// - Ends with .pdf (case-insensitive) → LocalPDF type
// - Otherwise → error (invalid input)
func ParseInput(log logger.Logger, input string) (types.SourceType, error) {
	log.Debug("parsing input", logger.String("input", input))

	if strings.TrimSpace(input) == "" {
		log.Warn("parse input failed: empty input")
		return "", types.NewAppError(types.ErrInvalidInput, "target cannot be empty", nil)
	}

	input = strings.TrimSpace(input)

	if isURL(input) {
		log.Info("input identified as remote URL", logger.String("input", input))
		return types.SourceTypeURL, nil
	}

	if isLocalPDF(input) {
		log.Info("input identified as local PDF file", logger.String("input", input))
		return types.SourceTypeLocalPDF, nil
	}

	log.Warn("invalid input format", logger.String("input", input))
	return "", types.NewAppErrorWithDetails(types.ErrInvalidInput,
		"target must be a http(s) URL or a .pdf file path", input, nil)
}

// isURL checks if the input is a remote URL.
func isURL(input string) bool {
	lower := strings.ToLower(input)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// isLocalPDF checks if the input is a local PDF file path.
func isLocalPDF(input string) bool {
	return strings.HasSuffix(strings.ToLower(input), ".pdf")
}
