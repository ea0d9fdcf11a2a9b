package document

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/lexorahq/lexora/internal/document/domain"
)

// PlainTextExtractor handles text uploads directly. It is the only
// built-in extractor; richer formats are expected to arrive pre-extracted.
type PlainTextExtractor struct{}

func NewPlainTextExtractor() *PlainTextExtractor {
	return &PlainTextExtractor{}
}

func (e *PlainTextExtractor) Supports(contentType string) bool {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		contentType = strings.TrimSpace(contentType[:idx])
	}
	switch contentType {
	case "text/plain", "text/markdown", "application/octet-stream":
		return true
	}
	return false
}

func (e *PlainTextExtractor) Extract(_ context.Context, _, _ string, data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", domain.ErrUnsupportedType
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", domain.ErrNoText
	}
	return text, nil
}
