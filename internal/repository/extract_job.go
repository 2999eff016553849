package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

type ExtractJobRepository interface {
	Record(ctx context.Context, job *entity.ExtractJob) error
	ListByRun(ctx context.Context, runID uuid.UUID) ([]*entity.ExtractJob, error)
}

type extractJobRepo struct {
	db  *DB
	log *slog.Logger
}

func NewExtractJobRepository(db *DB, log *slog.Logger) ExtractJobRepository {
	return &extractJobRepo{db: db, log: log}
}

// Record inserts a finished job. A zero ID is replaced with a new one.
func (r *extractJobRepo) Record(ctx context.Context, job *entity.ExtractJob) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	var extracted *string
	if len(job.ExtractedJSON) > 0 {
		s := string(job.ExtractedJSON)
		extracted = &s
	}
	_, err := r.db.SQL.ExecContext(ctx, r.db.rebind(`INSERT INTO extract_job
		(id, run_id, source_path, status, method, pages, fields_found, extracted_json, error_message, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		job.ID.String(), job.RunID.String(), job.SourcePath, job.Status, job.Method, job.Pages, job.FieldsFound,
		extracted, job.ErrorMessage, formatTime(job.StartedAt), formatTime(job.FinishedAt),
	)
	if err != nil {
		r.log.Error("extract_job insert failed", "run_id", job.RunID, "source_path", job.SourcePath, "err", err)
		return err
	}
	r.log.Debug("extract_job recorded", "job_id", job.ID, "status", job.Status)
	return nil
}

// ListByRun returns the jobs of a run in the order they were recorded.
func (r *extractJobRepo) ListByRun(ctx context.Context, runID uuid.UUID) ([]*entity.ExtractJob, error) {
	rows, err := r.db.SQL.QueryContext(ctx, r.db.rebind(`SELECT
		id, run_id, source_path, status, method, pages, fields_found, extracted_json, error_message, started_at, finished_at
		FROM extract_job WHERE run_id = ? ORDER BY started_at, source_path`), runID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.ExtractJob
	for rows.Next() {
		var (
			job                 entity.ExtractJob
			id, run             string
			method, extracted   sql.NullString
			errMsg              sql.NullString
			startedAt, finished string
		)
		if err := rows.Scan(&id, &run, &job.SourcePath, &job.Status, &method, &job.Pages, &job.FieldsFound,
			&extracted, &errMsg, &startedAt, &finished); err != nil {
			return nil, err
		}
		if job.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("job id: %w", err)
		}
		if job.RunID, err = uuid.Parse(run); err != nil {
			return nil, fmt.Errorf("run id: %w", err)
		}
		if method.Valid {
			job.Method = &method.String
		}
		if extracted.Valid {
			job.ExtractedJSON = []byte(extracted.String)
		}
		if errMsg.Valid {
			job.ErrorMessage = &errMsg.String
		}
		if job.StartedAt, err = parseTime(startedAt); err != nil {
			return nil, err
		}
		if job.FinishedAt, err = parseTime(finished); err != nil {
			return nil, err
		}
		out = append(out, &job)
	}
	return out, rows.Err()
}
