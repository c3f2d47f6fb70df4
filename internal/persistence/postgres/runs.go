package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/healthingest/internal/domain"
)

// RunLog records load runs in the ingest_runs audit table.
type RunLog struct {
	pool *pgxpool.Pool
}

// NewRunLog constructs a RunLog.
func NewRunLog(pool *pgxpool.Pool) *RunLog {
	return &RunLog{pool: pool}
}

// Start inserts the run in the running state.
func (l *RunLog) Start(ctx context.Context, run domain.Run) error {
	_, err := l.pool.Exec(ctx,
		`INSERT INTO ingest_runs (run_id, export_path, started_at, record_limit, status)
         VALUES ($1,$2,$3,$4,$5)`,
		run.ID, run.ExportPath, run.StartedAt, run.Limit, domain.RunStatusRunning,
	)
	return err
}

// Finish stores the final counts and status.
func (l *RunLog) Finish(ctx context.Context, run domain.Run) error {
	_, err := l.pool.Exec(ctx,
		`UPDATE ingest_runs
            SET finished_at = $2, records = $3, workouts = $4, status = $5, error = $6
          WHERE run_id = $1`,
		run.ID, run.FinishedAt, run.Records, run.Workouts, run.Status, nullIfEmpty(run.Error),
	)
	return err
}

// Get loads a run by ID; it returns nil when the run does not exist.
func (l *RunLog) Get(ctx context.Context, id string) (*domain.Run, error) {
	rows, err := l.pool.Query(ctx,
		`SELECT run_id::text, export_path, started_at, COALESCE(finished_at, started_at), records, workouts, record_limit, status, COALESCE(error, '')
           FROM ingest_runs WHERE run_id = $1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	var run domain.Run
	if err := rows.Scan(&run.ID, &run.ExportPath, &run.StartedAt, &run.FinishedAt, &run.Records, &run.Workouts, &run.Limit, &run.Status, &run.Error); err != nil {
		return nil, err
	}
	return &run, rows.Err()
}

func nullIfEmpty(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}
