package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

// ErrRunNotFound is returned by Get for an unknown run.
var ErrRunNotFound = errors.New("extract run not found")

type RunRepository interface {
	Start(ctx context.Context, run *entity.ExtractRun) error
	Finish(ctx context.Context, id uuid.UUID, status constants.RunStatus, counts entity.RunCounts, errMsg *string) error
	Get(ctx context.Context, id uuid.UUID) (*entity.ExtractRun, error)
}

type runRepo struct {
	db  *DB
	log *slog.Logger
}

func NewRunRepository(db *DB, log *slog.Logger) RunRepository {
	return &runRepo{db: db, log: log}
}

func (r *runRepo) Start(ctx context.Context, run *entity.ExtractRun) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	run.Status = string(constants.RunStatusRunning)
	_, err := r.db.SQL.ExecContext(ctx, r.db.rebind(`INSERT INTO extract_run
		(id, root_path, rules_path, output_path, status, started_at) VALUES (?, ?, ?, ?, ?, ?)`),
		run.ID.String(), run.RootPath, run.RulesPath, run.OutputPath, run.Status, formatTime(run.StartedAt),
	)
	if err != nil {
		r.log.Error("extract_run start failed", "run_id", run.ID, "err", err)
		return err
	}
	r.log.Info("extract_run started", "run_id", run.ID, "root_path", run.RootPath)
	return nil
}

func (r *runRepo) Finish(ctx context.Context, id uuid.UUID, status constants.RunStatus, counts entity.RunCounts, errMsg *string) error {
	res, err := r.db.SQL.ExecContext(ctx, r.db.rebind(`UPDATE extract_run SET
		status = ?, documents_found = ?, documents_read = ?, documents_failed = ?,
		rows_retained = ?, rows_rejected = ?, error_message = ?, finished_at = ?
		WHERE id = ?`),
		string(status), counts.Found, counts.Read, counts.Failed, counts.Retained, counts.Rejected,
		errMsg, formatTime(time.Now()), id.String(),
	)
	if err != nil {
		r.log.Error("extract_run finish failed", "run_id", id, "err", err)
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	r.log.Info("extract_run finished", "run_id", id, "status", status)
	return nil
}

func (r *runRepo) Get(ctx context.Context, id uuid.UUID) (*entity.ExtractRun, error) {
	var (
		run       entity.ExtractRun
		rawID     string
		errMsg    sql.NullString
		startedAt string
		finished  sql.NullString
	)
	err := r.db.SQL.QueryRowContext(ctx, r.db.rebind(`SELECT
		id, root_path, rules_path, output_path, status,
		documents_found, documents_read, documents_failed, rows_retained, rows_rejected,
		error_message, started_at, finished_at
		FROM extract_run WHERE id = ?`), id.String()).Scan(
		&rawID, &run.RootPath, &run.RulesPath, &run.OutputPath, &run.Status,
		&run.Counts.Found, &run.Counts.Read, &run.Counts.Failed, &run.Counts.Retained, &run.Counts.Rejected,
		&errMsg, &startedAt, &finished,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	if run.ID, err = uuid.Parse(rawID); err != nil {
		return nil, err
	}
	if errMsg.Valid {
		run.ErrorMessage = &errMsg.String
	}
	if run.StartedAt, err = parseTime(startedAt); err != nil {
		return nil, err
	}
	if finished.Valid {
		t, err := parseTime(finished.String)
		if err != nil {
			return nil, err
		}
		run.FinishedAt = &t
	}
	return &run, nil
}
