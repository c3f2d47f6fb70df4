package ingest

import (
	"context"
	"errors"

	"example.com/healthingest/internal/domain"
)

// Sink persists batches idempotently keyed by row hash. Each call is atomic:
// the whole batch becomes visible or none of it does. The returned count is the
// number of rows submitted, not the number actually inserted. Implementations
// must not retain the rows slice after returning.
type Sink interface {
	WriteRecords(ctx context.Context, rows []domain.RecordRow) (int, error)
	WriteWorkouts(ctx context.Context, rows []domain.WorkoutRow) (int, error)
}

// DiscardSink accepts every batch without storing it. Used for dry runs.
type DiscardSink struct{}

// WriteRecords implements Sink.
func (DiscardSink) WriteRecords(_ context.Context, rows []domain.RecordRow) (int, error) {
	return len(rows), nil
}

// WriteWorkouts implements Sink.
func (DiscardSink) WriteWorkouts(_ context.Context, rows []domain.WorkoutRow) (int, error) {
	return len(rows), nil
}

// MultiSink writes each batch to every sink in order and stops at the first error.
type MultiSink []Sink

// WriteRecords implements Sink.
func (m MultiSink) WriteRecords(ctx context.Context, rows []domain.RecordRow) (int, error) {
	if len(m) == 0 {
		return 0, errNoSinks
	}
	for _, s := range m {
		if _, err := s.WriteRecords(ctx, rows); err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}

// WriteWorkouts implements Sink.
func (m MultiSink) WriteWorkouts(ctx context.Context, rows []domain.WorkoutRow) (int, error) {
	if len(m) == 0 {
		return 0, errNoSinks
	}
	for _, s := range m {
		if _, err := s.WriteWorkouts(ctx, rows); err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}

var errNoSinks = errors.New("ingest: multi sink has no targets")
