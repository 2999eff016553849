package pdftext

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

func (e *Extractor) extractPdftotext(ctx context.Context, path string) (ExtractionResult, error) {
	res := ExtractionResult{Method: resultPdftotext}

	// pdftotext -enc UTF-8 -eol unix [-l N] <path> -
	args := []string{"-enc", "UTF-8", "-eol", "unix"}
	if e.cfg.MaxPages > 0 {
		args = append(args, "-l", strconv.Itoa(e.cfg.MaxPages))
	}
	args = append(args, path, "-")

	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, args...)
	if err != nil {
		if msg := strings.TrimSpace(string(errb)); msg != "" {
			return res, fmt.Errorf("pdftotext: %w: %s", err, truncate(msg, 512))
		}
		return res, fmt.Errorf("pdftotext: %w", err)
	}

	text := string(out)
	// a form-feed \f terminates every page
	res.Pages = strings.Count(text, "\f")
	if res.Pages == 0 && text != "" {
		res.Pages = 1
	}
	res.Text = strings.ReplaceAll(text, "\f", "\n")
	return res, nil
}
