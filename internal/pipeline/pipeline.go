// Package pipeline runs a batch: collect document text, extract and filter rows, persist the table.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/export"
	"github.com/joseph-ayodele/invoice-extractor/internal/extract"
	"github.com/joseph-ayodele/invoice-extractor/internal/rules"
)

type Config struct {
	Workers       int  // documents read concurrently; <= 1 reads sequentially
	IncludeSource bool // prepend a source_file column
	RootPath      string
	RulesPath     string
}

// Pipeline holds only read-only collaborators; a Pipeline may run any number of times.
type Pipeline struct {
	text     extract.TextExtractor
	fields   extract.FieldExtractor
	required string
	sink     export.Sink
	ledger   Ledger
	cfg      Config
	logger   *slog.Logger
}

func New(text extract.TextExtractor, rs *rules.RuleSet, sink export.Sink, cfg Config, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		text:     text,
		fields:   extract.NewRuleExtractor(rs),
		required: rs.RequiredField(),
		sink:     sink,
		cfg:      cfg,
		logger:   logger,
	}
}

// WithLedger returns a copy of p that records runs in l.
func (p *Pipeline) WithLedger(l Ledger) *Pipeline {
	cp := *p
	cp.ledger = l
	return &cp
}

// Run processes paths in order. Unreadable documents are skipped and reported in
// Result.Failures; rows without the required field are dropped. The only errors returned
// are a failed sink write (wrapping common.ErrOutputWrite) and ctx cancellation.
// An empty paths slice still writes an empty table.
func (p *Pipeline) Run(ctx context.Context, paths []string) (Result, error) {
	start := time.Now()
	res := Result{RunID: uuid.NewString()}
	res.Summary.Found = len(paths)
	ctx = common.WithRunID(ctx, res.RunID)
	log := p.logger.With("run_id", res.RunID)

	p.startRun(ctx, log, res.RunID, start)

	// collecting
	res.Phases = append(res.Phases, constants.PhaseCollecting)
	log.Info("pipeline.phase", "phase", constants.PhaseCollecting, "documents", len(paths), "workers", p.cfg.Workers)
	acquired := p.collect(ctx, paths)
	if err := ctx.Err(); err != nil {
		return p.abort(ctx, log, res, start, err)
	}

	// extracting
	res.Phases = append(res.Phases, constants.PhaseExtracting)
	log.Info("pipeline.phase", "phase", constants.PhaseExtracting, "documents", len(acquired))
	kept := make([]extract.Row, 0, len(acquired))
	for _, a := range acquired {
		outcome := DocumentOutcome{
			Path:       a.path,
			Method:     a.text.Method,
			Pages:      a.text.Pages,
			StartedAt:  a.startedAt,
			FinishedAt: a.finishedAt,
		}
		if a.err != nil {
			res.Summary.Failed++
			res.Failures = append(res.Failures, DocumentFailure{Path: a.path, Err: a.err})
			log.Warn("pipeline.document.skipped", "path", a.path, "error", unwrapCause(a.err))
			outcome.Status = constants.JobStatusFailed
			outcome.Err = a.err
			p.recordDocument(ctx, log, res.RunID, outcome)
			continue
		}
		res.Summary.Read++
		for _, w := range a.text.Warnings {
			log.Debug("pipeline.document.warning", "path", a.path, "warning", w)
		}

		row, status := p.extractRow(a)
		outcome.Row, outcome.Status = row, status
		if status == constants.JobStatusRejected {
			// not an error: documents without the identifier are not invoices
			res.Summary.Rejected++
			res.Rejected = append(res.Rejected, a.path)
			log.Debug("pipeline.row.rejected", "path", a.path, "required_field", p.required, "fields", row.Len())
		} else {
			res.Summary.Retained++
			kept = append(kept, row)
			log.Debug("pipeline.row.kept", "path", a.path, "fields", row.Len())
		}
		p.recordDocument(ctx, log, res.RunID, outcome)
	}
	if err := ctx.Err(); err != nil {
		return p.abort(ctx, log, res, start, err)
	}

	// persisting
	res.Phases = append(res.Phases, constants.PhasePersisting)
	res.Table = export.BuildTable(kept, export.TableOptions{IncludeSource: p.cfg.IncludeSource})
	log.Info("pipeline.phase", "phase", constants.PhasePersisting, "rows", res.Table.Len(), "columns", len(res.Table.Columns))
	if err := p.sink.Write(ctx, res.Table); err != nil {
		if !errors.Is(err, common.ErrOutputWrite) {
			err = common.OutputWriteError(p.sink.Destination(), err)
		}
		return p.abort(ctx, log, res, start, err)
	}

	res.Duration = time.Since(start)
	p.finishRun(ctx, log, res, nil)
	log.Info("pipeline.run.ok",
		"documents_found", res.Summary.Found,
		"documents_read", res.Summary.Read,
		"documents_failed", res.Summary.Failed,
		"rows_retained", res.Summary.Retained,
		"rows_rejected", res.Summary.Rejected,
		"output", p.sink.Destination(),
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

func (p *Pipeline) abort(ctx context.Context, log *slog.Logger, res Result, start time.Time, err error) (Result, error) {
	res.Duration = time.Since(start)
	log.Error("pipeline.run.failed", "error", err, "elapsed_ms", res.Duration.Milliseconds())
	p.finishRun(context.WithoutCancel(ctx), log, res, err)
	return res, err
}

func (p *Pipeline) startRun(ctx context.Context, log *slog.Logger, runID string, start time.Time) {
	if p.ledger == nil {
		return
	}
	err := p.ledger.StartRun(ctx, RunInfo{
		ID:          runID,
		RootPath:    p.cfg.RootPath,
		RulesPath:   p.cfg.RulesPath,
		Destination: p.sink.Destination(),
		StartedAt:   start,
	})
	if err != nil {
		log.Warn("pipeline.ledger.failed", "op", "start_run", "error", err)
	}
}

func (p *Pipeline) recordDocument(ctx context.Context, log *slog.Logger, runID string, o DocumentOutcome) {
	if p.ledger == nil {
		return
	}
	if err := p.ledger.RecordDocument(ctx, runID, o); err != nil {
		log.Warn("pipeline.ledger.failed", "op", "record_document", "path", o.Path, "error", err)
	}
}

func (p *Pipeline) finishRun(ctx context.Context, log *slog.Logger, res Result, runErr error) {
	if p.ledger == nil {
		return
	}
	if err := p.ledger.FinishRun(ctx, res.RunID, res.Summary, runErr); err != nil {
		log.Warn("pipeline.ledger.failed", "op", "finish_run", "error", err)
	}
}

// unwrapCause drops the AppError envelope so warnings show the underlying reason.
func unwrapCause(err error) error {
	var appErr *common.AppError
	if errors.As(err, &appErr) && appErr.Cause != nil {
		return appErr.Cause
	}
	return err
}
