package extract

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/invoice-extractor/internal/pdftext"
)

// PDFAdapter exposes a pdftext.Extractor as a TextExtractor.
type PDFAdapter struct {
	e *pdftext.Extractor
}

func NewPDFAdapter(e *pdftext.Extractor, _ *slog.Logger) *PDFAdapter {
	return &PDFAdapter{e: e}
}

func (a *PDFAdapter) Extract(ctx context.Context, path string) (TextExtractionResult, error) {
	r, err := a.e.Extract(ctx, path)
	return TextExtractionResult{
		Text:     r.Text,
		Pages:    r.Pages,
		Method:   r.Method,
		Duration: r.Duration,
		Warnings: r.Warnings,
	}, err
}
