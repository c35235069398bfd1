package postgresrepo

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/openmagecz/roivenue-export/internal/dal/postgres"
	"github.com/openmagecz/roivenue-export/internal/service/models/runlog"
)

// RunLogRepository persists one export_runs row per invocation.
type RunLogRepository struct {
	client *postgres.Client
}

func NewRunLogRepository(client *postgres.Client) *RunLogRepository {
	return &RunLogRepository{
		client: client,
	}
}

// Start inserts a running row and returns its id.
func (r *RunLogRepository) Start(ctx context.Context, run runlog.RunLog) (int64, error) {
	query, args, err := sq.Insert("export_runs").
		Columns(
			"started_at",
			"window_from",
			"window_to",
			"status",
		).
		Values(
			run.StartedAt,
			run.WindowFrom,
			run.WindowTo,
			runlog.StatusRunning,
		).
		Suffix("RETURNING id").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build run log insert: %w", err)
	}

	var id int64
	if err := r.client.Pool().QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to insert run log: %w", err)
	}

	return id, nil
}

// Finish closes the row with the run's outcome.
func (r *RunLogRepository) Finish(ctx context.Context, run runlog.RunLog) error {
	query, args, err := sq.Update("export_runs").
		Set("finished_at", run.FinishedAt).
		Set("file_name", run.FileName).
		Set("order_count", run.OrderCount).
		Set("status", run.Status).
		Set("error", run.Error).
		Where(sq.Eq{"id": run.ID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build run log update: %w", err)
	}

	if _, err := r.client.Pool().Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update run log: %w", err)
	}

	return nil
}
