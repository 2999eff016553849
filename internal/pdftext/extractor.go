// Package pdftext turns one PDF document into a single text blob.
package pdftext

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/invoice-extractor/constants"
)

// Extraction methods.
const (
	MethodNative    = "native"    // in-process decoding with ledongthuc/pdf
	MethodPdftotext = "pdftotext" // poppler's pdftotext binary
	MethodAuto      = "auto"      // native, then pdftotext when native fails or finds no text
)

// Values reported in ExtractionResult.Method.
const (
	resultNative    = "pdf-native"
	resultPdftotext = "pdf-text"
)

type Config struct {
	Method    string        // native | pdftotext | auto; default native
	Pdftotext string        // binary name or absolute path; if empty -> "pdftotext"
	Timeout   time.Duration // per document; 0 = no limit
	MaxPages  int           // 0 = no limit
	Preflight bool          // validate structure with pdfcpu before decoding
}

type ExtractionResult struct {
	Text     string
	Pages    int
	Method   string // "pdf-native" | "pdf-text"
	Duration time.Duration
	Warnings []string
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Method == "" {
		cfg.Method = MethodNative
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	return &Extractor{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
}

// WithRunner replaces the command runner used by the pdftotext method.
func (e *Extractor) WithRunner(r Runner) *Extractor {
	cp := *e
	cp.runner = r
	return &cp
}

// Extract reads the document at path. Pages are joined so that every page's text is
// followed by one line break. The call returns within cfg.Timeout.
func (e *Extractor) Extract(ctx context.Context, path string) (ExtractionResult, error) {
	start := time.Now()
	if constants.MapExtToFormat(filepath.Ext(path)) == "" {
		return ExtractionResult{}, fmt.Errorf("unsupported extension: %q", filepath.Ext(path))
	}
	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}
	e.logger.Debug("starting text extraction", "path", path, "method", e.cfg.Method)

	var warns []string
	if e.cfg.Preflight {
		pages, err := preflight(ctx, path)
		if err != nil {
			return ExtractionResult{Duration: time.Since(start)}, fmt.Errorf("preflight: %w", err)
		}
		e.logger.Debug("preflight ok", "path", path, "pages", pages)
	}

	var (
		res ExtractionResult
		err error
	)
	switch e.cfg.Method {
	case MethodNative:
		res, err = e.extractNative(ctx, path)
	case MethodPdftotext:
		res, err = e.extractPdftotext(ctx, path)
	case MethodAuto:
		res, err = e.extractNative(ctx, path)
		if (err != nil || strings.TrimSpace(res.Text) == "") && ctx.Err() == nil {
			reason := "empty text"
			if err != nil {
				reason = err.Error()
			}
			warns = append(warns, "native extraction fell back to pdftotext: "+reason)
			e.logger.Debug("falling back to pdftotext", "path", path, "reason", reason)
			res, err = e.extractPdftotext(ctx, path)
		}
	default:
		err = fmt.Errorf("unknown extraction method: %q", e.cfg.Method)
	}
	res.Duration = time.Since(start)
	res.Warnings = append(warns, res.Warnings...)
	if err != nil {
		return res, err
	}
	if strings.TrimSpace(res.Text) == "" {
		// scanned pages carry no text layer; the row will simply have no fields
		res.Warnings = append(res.Warnings, "no extractable text")
	}
	return res, nil
}
