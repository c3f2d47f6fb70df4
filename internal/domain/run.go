package domain

import "time"

// RunStatus is the terminal state recorded for a load run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
)

// Run describes one invocation of the loader for the ingest_runs audit table.
type Run struct {
	ID         string
	ExportPath string
	StartedAt  time.Time
	FinishedAt time.Time
	Records    int64
	Workouts   int64
	Limit      int64
	Status     RunStatus
	Error      string
}
