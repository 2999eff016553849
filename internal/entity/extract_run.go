package entity

import (
	"time"

	"github.com/google/uuid"
)

// ExtractRun represents one batch invocation.
type ExtractRun struct {
	ID           uuid.UUID  `json:"id"`
	RootPath     string     `json:"root_path"`
	RulesPath    string     `json:"rules_path"`
	OutputPath   string     `json:"output_path"`
	Status       string     `json:"status"`
	Counts       RunCounts  `json:"counts"`
	ErrorMessage *string    `json:"error_message,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
}

// RunCounts are the per-run document and row totals.
type RunCounts struct {
	Found    int `json:"documents_found"`
	Read     int `json:"documents_read"`
	Failed   int `json:"documents_failed"`
	Retained int `json:"rows_retained"`
	Rejected int `json:"rows_rejected"`
}
