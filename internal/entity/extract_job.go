package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ExtractJob records what happened to one document during a run.
type ExtractJob struct {
	ID            uuid.UUID       `json:"id"`
	RunID         uuid.UUID       `json:"run_id"`
	SourcePath    string          `json:"source_path"`
	Status        string          `json:"status"`
	Method        *string         `json:"method,omitempty"`
	Pages         int             `json:"pages"`
	FieldsFound   int             `json:"fields_found"`
	ExtractedJSON json.RawMessage `json:"extracted_json,omitempty"`
	ErrorMessage  *string         `json:"error_message,omitempty"`
	StartedAt     time.Time       `json:"started_at"`
	FinishedAt    time.Time       `json:"finished_at"`
}
