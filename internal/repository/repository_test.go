package repository

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
	"github.com/joseph-ayodele/invoice-extractor/internal/extract"
	"github.com/joseph-ayodele/invoice-extractor/internal/pipeline"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func openMemory(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), Config{DSN: ":memory:"}, testLogger)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return db
}

func TestParseDSN(t *testing.T) {
	cases := []struct {
		dsn     string
		dialect Dialect
		source  string
	}{
		{"postgres://u:p@localhost:5432/ledger", DialectPostgres, "postgres://u:p@localhost:5432/ledger"},
		{"postgresql://localhost/ledger", DialectPostgres, "postgresql://localhost/ledger"},
		{"sqlite://runs.db", DialectSQLite, "runs.db"},
		{"./runs.db", DialectSQLite, "./runs.db"},
		{":memory:", DialectSQLite, ":memory:"},
	}
	for _, tc := range cases {
		t.Run(tc.dsn, func(t *testing.T) {
			d, src, err := ParseDSN(tc.dsn)
			require.NoError(t, err)
			assert.Equal(t, tc.dialect, d)
			assert.Equal(t, tc.source, src)
		})
	}

	_, _, err := ParseDSN("  ")
	assert.Error(t, err)
}

func TestRebind(t *testing.T) {
	pg := &DB{Dialect: DialectPostgres}
	assert.Equal(t, "SELECT * FROM t WHERE a = $1 AND b = $2", pg.rebind("SELECT * FROM t WHERE a = ? AND b = ?"))

	lite := &DB{Dialect: DialectSQLite}
	assert.Equal(t, "SELECT ?", lite.rebind("SELECT ?"))
}

func TestOpen_FileDatabaseIsReusable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	ctx := context.Background()

	db, err := Open(ctx, Config{DSN: "sqlite://" + path}, testLogger)
	require.NoError(t, err)
	runs := NewRunRepository(db, testLogger)
	run := &entity.ExtractRun{RootPath: "/in", RulesPath: "r.yaml", OutputPath: "out.xlsx"}
	require.NoError(t, runs.Start(ctx, run))
	db.Close()

	// reopening must not fail on existing tables
	db, err = Open(ctx, Config{DSN: path}, testLogger)
	require.NoError(t, err)
	defer db.Close()
	got, err := NewRunRepository(db, testLogger).Get(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, "/in", got.RootPath)
}

func TestRunRepository_StartFinishGet(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()
	runs := NewRunRepository(db, testLogger)

	started := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	run := &entity.ExtractRun{RootPath: "/data", RulesPath: "config_file.yaml", OutputPath: "output/output.xlsx", StartedAt: started}
	require.NoError(t, runs.Start(ctx, run))
	assert.NotEqual(t, uuid.Nil, run.ID)

	got, err := runs.Get(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, string(constants.RunStatusRunning), got.Status)
	assert.True(t, started.Equal(got.StartedAt))
	assert.Nil(t, got.FinishedAt)

	counts := entity.RunCounts{Found: 5, Read: 4, Failed: 1, Retained: 3, Rejected: 1}
	require.NoError(t, runs.Finish(ctx, run.ID, constants.RunStatusSucceeded, counts, nil))

	got, err = runs.Get(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, string(constants.RunStatusSucceeded), got.Status)
	assert.Equal(t, counts, got.Counts)
	assert.NotNil(t, got.FinishedAt)
	assert.Nil(t, got.ErrorMessage)
}

func TestRunRepository_NotFound(t *testing.T) {
	db := openMemory(t)
	runs := NewRunRepository(db, testLogger)

	_, err := runs.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrRunNotFound)

	err = runs.Finish(context.Background(), uuid.New(), constants.RunStatusFailed, entity.RunCounts{}, nil)
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestExtractJobRepository_RecordAndList(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()
	runID := uuid.New()
	jobs := NewExtractJobRepository(db, testLogger)

	now := time.Now().UTC()
	method := "pdf-native"
	msg := "document read error"
	require.NoError(t, jobs.Record(ctx, &entity.ExtractJob{
		RunID: runID, SourcePath: "/data/a.pdf", Status: string(constants.JobStatusExtracted),
		Method: &method, Pages: 2, FieldsFound: 1, ExtractedJSON: []byte(`{"invoice_number":"1"}`),
		StartedAt: now, FinishedAt: now,
	}))
	require.NoError(t, jobs.Record(ctx, &entity.ExtractJob{
		RunID: runID, SourcePath: "/data/b.pdf", Status: string(constants.JobStatusFailed),
		ErrorMessage: &msg, StartedAt: now.Add(time.Second), FinishedAt: now.Add(time.Second),
	}))
	require.NoError(t, jobs.Record(ctx, &entity.ExtractJob{
		RunID: uuid.New(), SourcePath: "/other/c.pdf", Status: string(constants.JobStatusRejected),
		StartedAt: now, FinishedAt: now,
	}))

	list, err := jobs.ListByRun(ctx, runID)
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, "/data/a.pdf", list[0].SourcePath)
	require.NotNil(t, list[0].Method)
	assert.Equal(t, "pdf-native", *list[0].Method)
	assert.JSONEq(t, `{"invoice_number":"1"}`, string(list[0].ExtractedJSON))
	assert.Nil(t, list[0].ErrorMessage)

	assert.Equal(t, "/data/b.pdf", list[1].SourcePath)
	assert.Nil(t, list[1].Method)
	assert.Empty(t, list[1].ExtractedJSON)
	require.NotNil(t, list[1].ErrorMessage)
	assert.Equal(t, msg, *list[1].ErrorMessage)
}

func TestLedger_RecordsPipelineRun(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()
	l := NewLedger(db, testLogger)
	runID := uuid.NewString()
	now := time.Now()

	require.NoError(t, l.StartRun(ctx, pipeline.RunInfo{ID: runID, RootPath: "/data", RulesPath: "rules.yaml", Destination: "out.csv", StartedAt: now}))
	require.NoError(t, l.RecordDocument(ctx, runID, pipeline.DocumentOutcome{
		Path:   "/data/a.pdf",
		Status: constants.JobStatusExtracted,
		Method: "pdf-native",
		Pages:  1,
		Row: extract.Row{
			Values: map[string]string{"invoice_number": "INV-9", "total": "10.00"},
			Order:  []string{"invoice_number", "total"},
		},
		StartedAt:  now,
		FinishedAt: now,
	}))
	require.NoError(t, l.RecordDocument(ctx, runID, pipeline.DocumentOutcome{
		Path:       "/data/b.pdf",
		Status:     constants.JobStatusFailed,
		Err:        common.DocumentReadError("/data/b.pdf", errors.New("bad xref")),
		StartedAt:  now.Add(time.Millisecond),
		FinishedAt: now.Add(time.Millisecond),
	}))
	require.NoError(t, l.FinishRun(ctx, runID, pipeline.Summary{Found: 2, Read: 1, Failed: 1, Retained: 1}, nil))

	id := uuid.MustParse(runID)
	run, err := l.Runs().Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, string(constants.RunStatusSucceeded), run.Status)
	assert.Equal(t, "out.csv", run.OutputPath)
	assert.Equal(t, entity.RunCounts{Found: 2, Read: 1, Failed: 1, Retained: 1}, run.Counts)

	jobs, err := l.Jobs().ListByRun(ctx, id)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, 2, jobs[0].FieldsFound)
	var fields map[string]string
	require.NoError(t, json.Unmarshal(jobs[0].ExtractedJSON, &fields))
	assert.Equal(t, "INV-9", fields["invoice_number"])
	require.NotNil(t, jobs[1].ErrorMessage)
	assert.Contains(t, *jobs[1].ErrorMessage, "bad xref")
}

func TestLedger_FailedRun(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()
	l := NewLedger(db, testLogger)
	runID := uuid.NewString()

	require.NoError(t, l.StartRun(ctx, pipeline.RunInfo{ID: runID, StartedAt: time.Now()}))
	require.NoError(t, l.FinishRun(ctx, runID, pipeline.Summary{}, errors.New("disk full")))

	run, err := l.Runs().Get(ctx, uuid.MustParse(runID))
	require.NoError(t, err)
	assert.Equal(t, string(constants.RunStatusFailed), run.Status)
	require.NotNil(t, run.ErrorMessage)
	assert.Equal(t, "disk full", *run.ErrorMessage)
}

func TestLedger_InvalidRunID(t *testing.T) {
	l := NewLedger(openMemory(t), testLogger)
	err := l.FinishRun(context.Background(), "not-a-uuid", pipeline.Summary{}, nil)
	assert.ErrorIs(t, err, common.ErrLedger)
}
