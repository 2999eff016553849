package pdftext

import (
	"context"
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// preflight reads the cross-reference structure with pdfcpu in relaxed mode and returns the
// page count. It catches truncated or non-PDF files with a clearer cause than text decoding.
func preflight(ctx context.Context, path string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	pctx, err := api.ReadContext(f, conf)
	if err != nil {
		return 0, fmt.Errorf("read pdf structure: %w", err)
	}
	if err := pctx.EnsurePageCount(); err != nil {
		return 0, fmt.Errorf("page count: %w", err)
	}
	if pctx.PageCount == 0 {
		return 0, fmt.Errorf("document has no pages")
	}
	return pctx.PageCount, nil
}
