// Package ingest drives the streaming load: it pulls completed elements, normalizes
// them and flushes row batches to a Sink.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log"
	"time"

	"github.com/dustin/go-humanize"

	"example.com/healthingest/internal/domain"
	"example.com/healthingest/internal/normalize"
	"example.com/healthingest/internal/observability"
)

// Defaults match the batch sizes the loader has always used.
const (
	DefaultRecordBatchSize  = 5000
	DefaultWorkoutBatchSize = 500
	DefaultProgressEvery    = 100000
)

// ErrInvalidBatchSize is returned by Run when a batch size is not positive.
var ErrInvalidBatchSize = errors.New("ingest: batch size must be positive")

// Option configures optional behaviour for the Engine.
type Option func(*Engine)

// WithLogger overrides the logger used for progress and flush reporting.
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithBatchSizes sets the record and workout flush thresholds.
func WithBatchSizes(records, workouts int) Option {
	return func(e *Engine) {
		e.recordBatchSize = records
		e.workoutBatchSize = workouts
	}
}

// WithLimit stops the run after n records. Zero means no limit.
func WithLimit(n int64) Option {
	return func(e *Engine) {
		e.limit = n
	}
}

// WithDryRun normalizes and counts without writing to the configured sink.
func WithDryRun(dryRun bool) Option {
	return func(e *Engine) {
		e.dryRun = dryRun
	}
}

// WithProgressEvery logs progress every n records. Zero disables progress lines.
func WithProgressEvery(n int64) Option {
	return func(e *Engine) {
		e.progressEvery = n
	}
}

// Engine is the single-threaded traversal loop. It owns the pending batches and
// counters for the duration of one Run.
type Engine struct {
	sink             Sink
	logger           *log.Logger
	recordBatchSize  int
	workoutBatchSize int
	limit            int64
	dryRun           bool
	progressEvery    int64
	now              func() time.Time
}

// NewEngine constructs an Engine writing to sink.
func NewEngine(sink Sink, opts ...Option) *Engine {
	e := &Engine{
		sink:             sink,
		logger:           log.New(log.Writer(), "[ingest] ", log.LstdFlags|log.Lshortfile),
		recordBatchSize:  DefaultRecordBatchSize,
		workoutBatchSize: DefaultWorkoutBatchSize,
		progressEvery:    DefaultProgressEvery,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.dryRun || e.sink == nil {
		e.sink = DiscardSink{}
	}
	return e
}

// run holds the state of one traversal.
type run struct {
	*Engine
	stats    *Stats
	records  []domain.RecordRow
	workouts []domain.WorkoutRow
}

// Run consumes elements until the sequence ends, the record limit is reached or
// an error occurs. Partial batches are flushed at end of stream and when the
// limit stops the run. A flush failure aborts immediately.
func (e *Engine) Run(ctx context.Context, elements iter.Seq2[*domain.Element, error]) (*Stats, error) {
	if e.recordBatchSize <= 0 || e.workoutBatchSize <= 0 {
		return nil, ErrInvalidBatchSize
	}

	r := &run{
		Engine:   e,
		stats:    newStats(e.now()),
		records:  make([]domain.RecordRow, 0, e.recordBatchSize),
		workouts: make([]domain.WorkoutRow, 0, e.workoutBatchSize),
	}
	defer func() { r.stats.Finished = e.now() }()

	for el, err := range elements {
		if err != nil {
			// Keep what was already normalized, then surface the read failure.
			return r.stats, errors.Join(fmt.Errorf("read export: %w", err), r.flushAll(ctx))
		}
		if err := ctx.Err(); err != nil {
			return r.stats, err
		}

		switch el.Name {
		case normalize.TagRecord:
			if err := r.handleRecord(ctx, el); err != nil {
				return r.stats, err
			}
		case normalize.TagWorkout:
			if err := r.handleWorkout(ctx, el); err != nil {
				return r.stats, err
			}
		}

		if r.limit > 0 && r.stats.Records >= r.limit {
			r.stats.LimitReached = true
			break
		}
	}

	if err := r.flushAll(ctx); err != nil {
		return r.stats, err
	}
	return r.stats, nil
}

func (r *run) handleRecord(ctx context.Context, el *domain.Element) error {
	row, err := normalize.Record(el)
	if err != nil {
		return err
	}
	observability.RecordNormalized(normalize.TagRecord)

	r.records = append(r.records, row)
	r.stats.Records++
	r.stats.countType(row.RecordType)

	if len(r.records) >= r.recordBatchSize {
		if err := r.flushRecords(ctx); err != nil {
			return err
		}
	}
	if r.progressEvery > 0 && r.stats.Records%r.progressEvery == 0 {
		r.logger.Printf("Records: %s | Workouts: %s | %s rec/s",
			humanize.Comma(r.stats.Records), humanize.Comma(r.stats.Workouts), humanize.Comma(int64(r.stats.Rate())))
	}
	return nil
}

func (r *run) handleWorkout(ctx context.Context, el *domain.Element) error {
	row, err := normalize.Workout(el)
	if err != nil {
		return err
	}
	observability.RecordNormalized(normalize.TagWorkout)

	r.workouts = append(r.workouts, row)
	r.stats.Workouts++

	if len(r.workouts) >= r.workoutBatchSize {
		return r.flushWorkouts(ctx)
	}
	return nil
}

func (r *run) flushAll(ctx context.Context) error {
	if err := r.flushRecords(ctx); err != nil {
		return err
	}
	return r.flushWorkouts(ctx)
}

func (r *run) flushRecords(ctx context.Context) error {
	if len(r.records) == 0 {
		return nil
	}
	start := time.Now()
	n, err := r.sink.WriteRecords(ctx, r.records)
	if err != nil {
		observability.RecordFlushFailure(string(domain.TableRecords))
		return fmt.Errorf("flush %d records: %w", len(r.records), err)
	}
	observability.RecordFlush(string(domain.TableRecords), n, time.Since(start))
	r.stats.RecordsSubmitted += int64(n)
	r.stats.Batches++
	clear(r.records)
	r.records = r.records[:0]
	return nil
}

func (r *run) flushWorkouts(ctx context.Context) error {
	if len(r.workouts) == 0 {
		return nil
	}
	start := time.Now()
	n, err := r.sink.WriteWorkouts(ctx, r.workouts)
	if err != nil {
		observability.RecordFlushFailure(string(domain.TableWorkouts))
		return fmt.Errorf("flush %d workouts: %w", len(r.workouts), err)
	}
	observability.RecordFlush(string(domain.TableWorkouts), n, time.Since(start))
	r.stats.WorkoutsSubmitted += int64(n)
	r.stats.Batches++
	clear(r.workouts)
	r.workouts = r.workouts[:0]
	return nil
}
