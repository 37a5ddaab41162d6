// Package extract provides per-page text extraction from source documents.
//
// Extraction results are reported page by page so callers can tell a
// page that genuinely has no text (a scanned image) apart from a page
// the extractor failed on. Both are skipped downstream, but the
// distinction stays observable.
package extract

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrUnsupportedFormat is returned when no extractor handles the file.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Page is the extraction result for a single page.
type Page struct {
	// Number is the 1-based page number.
	Number int

	// Text is the extracted text, already trimmed. Empty when the page
	// has no extractable text.
	Text string

	// Err is set when extraction failed for this page. Text is empty
	// in that case.
	Err error
}

// Empty reports whether the page yielded no text and no error.
func (p Page) Empty() bool {
	return p.Err == nil && p.Text == ""
}

// Extractor extracts text from a document file, one result per page.
type Extractor interface {
	// Extract returns one Page per physical page in the file.
	// A file-level failure (missing file, unreadable container) is
	// returned as an error; per-page failures are reported inside the
	// page results.
	Extract(path string) ([]Page, error)
}

// ForPath returns an extractor for the given file path based on its
// extension.
func ForPath(path string) (Extractor, error) {
	switch {
	case strings.HasSuffix(strings.ToLower(path), ".pdf"):
		return NewPDFExtractor(), nil
	case strings.HasSuffix(strings.ToLower(path), ".txt"),
		strings.HasSuffix(strings.ToLower(path), ".md"):
		return NewPlainTextExtractor(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// PlainTextExtractor reads a plain text file as a single page.
// Used for .txt and .md résumés and in tests.
type PlainTextExtractor struct{}

// NewPlainTextExtractor creates a plain text extractor.
func NewPlainTextExtractor() *PlainTextExtractor {
	return &PlainTextExtractor{}
}

// Extract reads the whole file as one page.
func (e *PlainTextExtractor) Extract(path string) ([]Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return []Page{{Number: 1, Text: strings.TrimSpace(string(data))}}, nil
}
