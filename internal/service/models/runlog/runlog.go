package runlog

import "time"

const (
	StatusRunning = "running"
	StatusDone    = "done"
	StatusFailed  = "failed"
)

// RunLog is one row of the export_runs audit table: a record of a single
// export invocation and its outcome.
type RunLog struct {
	ID         int64
	StartedAt  time.Time
	FinishedAt *time.Time
	WindowFrom time.Time
	WindowTo   time.Time
	FileName   string
	OrderCount int
	Status     string
	Error      string
}
