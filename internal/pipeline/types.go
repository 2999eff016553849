package pipeline

import (
	"context"
	"time"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/export"
	"github.com/joseph-ayodele/invoice-extractor/internal/extract"
)

// Summary counts what happened to the documents of one run.
type Summary struct {
	Found    int // documents handed to the run
	Read     int // documents whose text was acquired
	Failed   int // documents skipped because their text could not be read
	Retained int // rows written to the result table
	Rejected int // rows dropped because the required field was missing or blank
}

// DocumentFailure is a document skipped during the collecting phase.
type DocumentFailure struct {
	Path string
	Err  error
}

// DocumentOutcome is the per-document record handed to the Ledger.
type DocumentOutcome struct {
	Path       string
	Status     constants.JobStatus
	Method     string
	Pages      int
	Row        extract.Row
	Err        error
	StartedAt  time.Time
	FinishedAt time.Time
}

// Result is everything a run produced. Table is what was handed to the sink.
type Result struct {
	RunID    string
	Summary  Summary
	Failures []DocumentFailure
	Rejected []string // documents whose row was dropped
	Phases   []constants.Phase
	Table    export.Table
	Duration time.Duration
}

// RunInfo describes a run to the Ledger.
type RunInfo struct {
	ID          string
	RootPath    string
	RulesPath   string
	Destination string
	StartedAt   time.Time
}

// Ledger records runs and their documents. Ledger errors are logged and never fail a run.
type Ledger interface {
	StartRun(ctx context.Context, run RunInfo) error
	RecordDocument(ctx context.Context, runID string, doc DocumentOutcome) error
	FinishRun(ctx context.Context, runID string, summary Summary, runErr error) error
}
