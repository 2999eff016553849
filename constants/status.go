package constants

// JobStatus is the canonical status for rows in extract_job.
type JobStatus string

// Stable values (store these exact strings in DB).
const (
	JobStatusExtracted JobStatus = "EXTRACTED" // row kept in the result table
	JobStatusRejected  JobStatus = "REJECTED"  // required field missing, row dropped
	JobStatusFailed    JobStatus = "FAILED"    // text could not be read
)

// RunStatus is the canonical status for rows in extract_run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "RUNNING"
	RunStatusSucceeded RunStatus = "SUCCEEDED"
	RunStatusFailed    RunStatus = "FAILED"
)

// Phase names the stages of a batch run, in order.
type Phase string

const (
	PhaseCollecting Phase = "collecting"
	PhaseExtracting Phase = "extracting"
	PhasePersisting Phase = "persisting"
)
