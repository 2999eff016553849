package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/export"
	"github.com/joseph-ayodele/invoice-extractor/internal/extract"
	"github.com/joseph-ayodele/invoice-extractor/internal/ingest"
	"github.com/joseph-ayodele/invoice-extractor/internal/pdftext"
	"github.com/joseph-ayodele/invoice-extractor/internal/pipeline"
	repo "github.com/joseph-ayodele/invoice-extractor/internal/repository"
	"github.com/joseph-ayodele/invoice-extractor/internal/rules"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

const name = "invoice-extractor"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one batch and returns the process exit code. Logs go to stderr, the
// summary to stdout.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := common.NewFlagSet(name)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}

	cfg, err := common.LoadConfig(fs, args)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			common.Usage(stdout, name, fs)
			return exitOK
		}
		fmt.Fprintf(stderr, "Error: %v\n\n", err)
		common.Usage(stderr, name, fs)
		return exitUsage
	}

	logger := common.NewLogger(stderr, cfg.SlogLevel())
	slog.SetDefault(logger)

	rs, err := rules.LoadFile(cfg.Rules.Path, logger)
	if err != nil {
		logger.Error("failed to load rules", "path", cfg.Rules.Path, "error", err)
		return exitFailure
	}
	if cfg.Rules.RequiredField != "" {
		rs = rs.WithRequiredField(cfg.Rules.RequiredField)
		logger.Info("required field overridden", "required_field", cfg.Rules.RequiredField)
	}

	docs, stats, err := ingest.ListDocuments(ctx, cfg.Input.DataPath, ingest.Options{
		Pattern:    cfg.Input.Pattern,
		SkipHidden: cfg.Input.SkipHidden,
	})
	if err != nil {
		logger.Error("failed to list documents", "data_path", cfg.Input.DataPath, "error", err)
		return exitFailure
	}
	logger.Info("discovery complete",
		"data_path", cfg.Input.DataPath,
		"pattern", cfg.Input.Pattern,
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"skipped", stats.Skipped,
		"failed", stats.Failed,
	)

	sink, err := export.NewSink(cfg.Output.Path, logger)
	if err != nil {
		logger.Error("invalid output", "output", cfg.Output.Path, "error", err)
		return exitFailure
	}

	extractor := pdftext.NewExtractor(pdftext.Config{
		Method:    cfg.PDF.Method,
		Pdftotext: cfg.PDF.Pdftotext,
		Timeout:   cfg.PDF.Timeout,
		MaxPages:  cfg.PDF.MaxPages,
		Preflight: cfg.PDF.Preflight,
	}, logger)

	p := pipeline.New(extract.NewPDFAdapter(extractor, logger), rs, sink, pipeline.Config{
		Workers:       cfg.Pipeline.Workers,
		IncludeSource: cfg.Output.IncludeSource,
		RootPath:      cfg.Input.DataPath,
		RulesPath:     cfg.Rules.Path,
	}, logger)

	if cfg.Ledger.DSN != "" {
		db, err := repo.Open(ctx, repo.Config{DSN: cfg.Ledger.DSN, DialTimeout: cfg.Ledger.DialTimeout}, logger)
		if err != nil {
			logger.Error("failed to open ledger", "error", common.LedgerError("open", err))
			return exitFailure
		}
		defer db.Close()
		p = p.WithLedger(repo.NewLedger(db, logger))
	}

	res, err := p.Run(ctx, ingest.Paths(docs))
	if err != nil {
		logger.Error("batch failed", "run_id", res.RunID, "code", common.CodeOf(err), "error", err)
		return exitFailure
	}

	printSummary(stdout, res, sink.Destination())
	return exitOK
}

func printSummary(w io.Writer, res pipeline.Result, output string) {
	fmt.Fprintf(w, "Extraction complete!\n")
	fmt.Fprintf(w, "- Documents found: %d\n", res.Summary.Found)
	fmt.Fprintf(w, "- Documents read: %d\n", res.Summary.Read)
	fmt.Fprintf(w, "- Unreadable: %d\n", res.Summary.Failed)
	fmt.Fprintf(w, "- Rows written: %d\n", res.Summary.Retained)
	fmt.Fprintf(w, "- Rows rejected: %d\n", res.Summary.Rejected)
	fmt.Fprintf(w, "- Output: %s\n", output)
	for _, f := range res.Failures {
		fmt.Fprintf(w, "  skipped %s: %v\n", f.Path, f.Err)
	}
}
