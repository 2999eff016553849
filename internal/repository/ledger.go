package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
	"github.com/joseph-ayodele/invoice-extractor/internal/pipeline"
)

// Ledger records pipeline runs in the extract_run and extract_job tables.
type Ledger struct {
	runs RunRepository
	jobs ExtractJobRepository
}

var _ pipeline.Ledger = (*Ledger)(nil)

func NewLedger(db *DB, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{
		runs: NewRunRepository(db, logger),
		jobs: NewExtractJobRepository(db, logger),
	}
}

func (l *Ledger) StartRun(ctx context.Context, run pipeline.RunInfo) error {
	id, err := uuid.Parse(run.ID)
	if err != nil {
		return common.LedgerError("invalid run id", err)
	}
	err = l.runs.Start(ctx, &entity.ExtractRun{
		ID:         id,
		RootPath:   run.RootPath,
		RulesPath:  run.RulesPath,
		OutputPath: run.Destination,
		StartedAt:  run.StartedAt,
	})
	if err != nil {
		return common.LedgerError("start run", err)
	}
	return nil
}

func (l *Ledger) RecordDocument(ctx context.Context, runID string, doc pipeline.DocumentOutcome) error {
	id, err := uuid.Parse(runID)
	if err != nil {
		return common.LedgerError("invalid run id", err)
	}
	job := &entity.ExtractJob{
		RunID:       id,
		SourcePath:  doc.Path,
		Status:      string(doc.Status),
		Pages:       doc.Pages,
		FieldsFound: doc.Row.Len(),
		StartedAt:   doc.StartedAt,
		FinishedAt:  doc.FinishedAt,
	}
	if doc.Method != "" {
		m := doc.Method
		job.Method = &m
	}
	if doc.Row.Len() > 0 {
		b, err := json.Marshal(doc.Row.Values)
		if err != nil {
			return common.LedgerError("encode fields", err)
		}
		job.ExtractedJSON = b
	}
	if doc.Err != nil {
		msg := doc.Err.Error()
		job.ErrorMessage = &msg
	}
	if err := l.jobs.Record(ctx, job); err != nil {
		return common.LedgerError(fmt.Sprintf("record %s", doc.Path), err)
	}
	return nil
}

func (l *Ledger) FinishRun(ctx context.Context, runID string, s pipeline.Summary, runErr error) error {
	id, err := uuid.Parse(runID)
	if err != nil {
		return common.LedgerError("invalid run id", err)
	}
	status := constants.RunStatusSucceeded
	var msg *string
	if runErr != nil {
		status = constants.RunStatusFailed
		m := runErr.Error()
		msg = &m
	}
	counts := entity.RunCounts{
		Found:    s.Found,
		Read:     s.Read,
		Failed:   s.Failed,
		Retained: s.Retained,
		Rejected: s.Rejected,
	}
	if err := l.runs.Finish(ctx, id, status, counts, msg); err != nil {
		return common.LedgerError("finish run", err)
	}
	return nil
}

// Runs exposes the run repository for read access.
func (l *Ledger) Runs() RunRepository { return l.runs }

// Jobs exposes the job repository for read access.
func (l *Ledger) Jobs() ExtractJobRepository { return l.jobs }
