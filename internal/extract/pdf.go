package extract

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFExtractor extracts text from PDF files page by page.
type PDFExtractor struct{}

// NewPDFExtractor creates a PDF extractor.
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// Extract returns one Page per PDF page. Pages the PDF library cannot
// decode are reported with Err set rather than failing the whole file.
func (e *PDFExtractor) Extract(path string) ([]Page, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	total := reader.NumPage()
	pages := make([]Page, 0, total)
	for num := 1; num <= total; num++ {
		text, err := extractPage(reader, num)
		if err != nil {
			pages = append(pages, Page{Number: num, Err: err})
			continue
		}
		pages = append(pages, Page{Number: num, Text: strings.TrimSpace(text)})
	}
	return pages, nil
}

// extractPage pulls the plain text of a single page. The PDF library
// panics on some malformed content streams; that surfaces as a per-page
// error, not a crash.
func extractPage(reader *pdf.Reader, num int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("page %d extraction panicked: %v", num, r)
		}
	}()

	page := reader.Page(num)
	if page.V.IsNull() {
		return "", nil
	}
	text, err = page.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("page %d: %w", num, err)
	}
	return text, nil
}
