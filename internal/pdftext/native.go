package pdftext

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

type nativeOutcome struct {
	res ExtractionResult
	err error
}

// extractNative decodes in a goroutine so a decoder that never returns cannot hold the
// caller past ctx's deadline.
func (e *Extractor) extractNative(ctx context.Context, path string) (ExtractionResult, error) {
	done := make(chan nativeOutcome, 1)
	go func() {
		res, err := e.decodeNative(ctx, path)
		done <- nativeOutcome{res: res, err: err}
	}()

	select {
	case out := <-done:
		return out.res, out.err
	case <-ctx.Done():
		return ExtractionResult{Method: resultNative}, fmt.Errorf("native decode: %w", ctx.Err())
	}
}

func (e *Extractor) decodeNative(ctx context.Context, path string) (res ExtractionResult, err error) {
	res.Method = resultNative
	// the decoder panics on some malformed streams
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf decoder panic: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return res, fmt.Errorf("open pdf: %w", err)
	}
	defer func() { _ = f.Close() }()

	total := r.NumPage()
	if e.cfg.MaxPages > 0 && total > e.cfg.MaxPages {
		res.Warnings = append(res.Warnings, fmt.Sprintf("read %d of %d pages", e.cfg.MaxPages, total))
		total = e.cfg.MaxPages
	}

	var b strings.Builder
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			b.WriteString("\n")
			continue
		}
		txt, perr := page.GetPlainText(nil)
		if perr != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("page %d: %v", i, perr))
		}
		b.WriteString(txt)
		b.WriteString("\n")
	}
	res.Text = b.String()
	res.Pages = total
	return res, nil
}
