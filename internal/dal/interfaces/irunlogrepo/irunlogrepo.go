package irunlogrepo

import (
	"context"

	"github.com/openmagecz/roivenue-export/internal/service/models/runlog"
)

// IRunLogRepository is an interface for the export_runs audit repository.
type IRunLogRepository interface {
	Start(ctx context.Context, run runlog.RunLog) (int64, error)
	Finish(ctx context.Context, run runlog.RunLog) error
}
