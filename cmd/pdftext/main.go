package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/pdftext"
)

// pdftext prints the text the extractor sees for one PDF, which is what field patterns
// are matched against.
func main() {
	fs := pflag.NewFlagSet("pdftext", pflag.ContinueOnError)
	method := fs.String("method", common.DefaultMethod, "text extraction method: native, pdftotext or auto")
	bin := fs.String("pdftotext", "pdftotext", "pdftotext binary")
	timeout := fs.Duration("timeout", common.DefaultTimeout, "extraction timeout")
	maxPages := fs.Int("max-pages", 0, "read at most this many pages (0 = all)")
	preflight := fs.Bool("preflight", false, "validate PDF structure first")
	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	logger := common.NewLogger(os.Stderr, slog.LevelInfo)
	slog.SetDefault(logger)

	if fs.NArg() != 1 {
		logger.Error("usage", "cmd", "pdftext [--method native|pdftotext|auto] <file.pdf>")
		os.Exit(2)
	}
	path := fs.Arg(0)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout+5*time.Second)
	defer cancel()

	x := pdftext.NewExtractor(pdftext.Config{
		Method:    *method,
		Pdftotext: *bin,
		Timeout:   *timeout,
		MaxPages:  *maxPages,
		Preflight: *preflight,
	}, logger)

	res, err := x.Extract(ctx, path)
	if err != nil {
		logger.Error("text extraction failed", "path", path, "error", err)
		cancel()
		os.Exit(1)
	}

	logger.Info("text extraction OK",
		"path", path,
		"method", res.Method,
		"pages", res.Pages,
		"bytes", len(res.Text),
		"warnings", res.Warnings,
		"duration_ms", res.Duration.Milliseconds(),
	)
	fmt.Print(res.Text)
}
