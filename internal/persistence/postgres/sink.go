// Package postgres persists normalized rows into Postgres with insert-or-ignore semantics.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/healthingest/internal/domain"
	"example.com/healthingest/internal/persistence"
)

// maxBindParams is the Postgres wire protocol limit on parameters per statement.
const maxBindParams = 65535

var (
	recordInsert = persistence.Insert{
		Table:       string(domain.TableRecords),
		Columns:     domain.RecordColumns,
		Suffix:      "ON CONFLICT (record_hash) DO NOTHING",
		Placeholder: persistence.Dollar,
	}
	workoutInsert = persistence.Insert{
		Table:       string(domain.TableWorkouts),
		Columns:     domain.WorkoutColumns,
		Suffix:      "ON CONFLICT (workout_hash) DO NOTHING",
		Placeholder: persistence.Dollar,
	}
)

// Sink writes record and workout batches to Postgres. Each batch is committed in
// its own transaction; rows whose hash already exists are skipped by the database.
type Sink struct {
	pool *pgxpool.Pool
}

// NewSink constructs a Sink.
func NewSink(pool *pgxpool.Pool) *Sink {
	return &Sink{pool: pool}
}

// WriteRecords inserts a batch into health_raw.
func (s *Sink) WriteRecords(ctx context.Context, rows []domain.RecordRow) (int, error) {
	if err := writeBatch(ctx, s.pool, recordInsert, rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// WriteWorkouts inserts a batch into workouts.
func (s *Sink) WriteWorkouts(ctx context.Context, rows []domain.WorkoutRow) (int, error) {
	if err := writeBatch(ctx, s.pool, workoutInsert, rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

func writeBatch[T persistence.Valuer](ctx context.Context, pool *pgxpool.Pool, ins persistence.Insert, rows []T) (err error) {
	if len(rows) == 0 {
		return nil
	}

	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	for _, args := range persistence.Chunks(rows, ins.RowsPerStatement(maxBindParams)) {
		n := len(args) / len(ins.Columns)
		if _, err = tx.Exec(ctx, ins.SQL(n), args...); err != nil {
			return fmt.Errorf("insert into %s: %w", ins.Table, err)
		}
	}

	return tx.Commit(ctx)
}

// Truncate empties both target tables.
func (s *Sink) Truncate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "TRUNCATE health_raw, workouts")
	return err
}

// Count returns the number of rows stored in table.
func (s *Sink) Count(ctx context.Context, table domain.Table) (int64, error) {
	if table != domain.TableRecords && table != domain.TableWorkouts {
		return 0, fmt.Errorf("unknown table: %s", table)
	}
	var n int64
	err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+string(table)).Scan(&n)
	return n, err
}
