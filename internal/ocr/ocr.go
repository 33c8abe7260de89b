// Package ocr turns filing PDFs into raw text for the extraction adapter.
package ocr

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lien-cli/internal/config"
)

// Extractor extracts text content from PDF files.
type Extractor interface {
	ExtractText(ctx context.Context, pdfPath string) (string, error)
}

// NewExtractor creates an Extractor based on config.
func NewExtractor(cfg config.OCRConfig) (Extractor, error) {
	switch cfg.Provider {
	case "local", "pdftotext", "":
		p := NewPdfToText(cfg.PdfToTextPath)
		if cfg.TimeoutSecs > 0 {
			p.timeout = time.Duration(cfg.TimeoutSecs) * time.Second
		}
		return p, nil
	default:
		return nil, eris.Errorf("ocr: unknown provider %q", cfg.Provider)
	}
}

// Pages splits extracted text on form feeds, the page separator pdftotext
// emits. Blank pages are dropped.
func Pages(text string) []string {
	var pages []string
	for _, p := range strings.Split(text, "\f") {
		if strings.TrimSpace(p) != "" {
			pages = append(pages, p)
		}
	}
	return pages
}
