// Package memory keeps normalized rows in process memory, deduplicated by hash.
package memory

import (
	"context"
	"sync"

	"example.com/healthingest/internal/domain"
)

// Sink stores rows in maps keyed by hash. It is intended for tests and smoke runs.
type Sink struct {
	mu       sync.RWMutex
	records  map[string]domain.RecordRow
	workouts map[string]domain.WorkoutRow
	order    []string
	inserted map[domain.Table]int64
	batches  map[domain.Table]int
}

// NewSink constructs an empty Sink.
func NewSink() *Sink {
	s := &Sink{}
	s.reset()
	return s
}

func (s *Sink) reset() {
	s.records = make(map[string]domain.RecordRow)
	s.workouts = make(map[string]domain.WorkoutRow)
	s.order = nil
	s.inserted = make(map[domain.Table]int64)
	s.batches = make(map[domain.Table]int)
}

// WriteRecords stores rows whose hash has not been seen before.
func (s *Sink) WriteRecords(_ context.Context, rows []domain.RecordRow) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, row := range rows {
		if _, exists := s.records[row.RecordHash]; exists {
			continue
		}
		s.records[row.RecordHash] = row
		s.order = append(s.order, row.RecordHash)
		s.inserted[domain.TableRecords]++
	}
	s.batches[domain.TableRecords]++
	return len(rows), nil
}

// WriteWorkouts stores rows whose hash has not been seen before.
func (s *Sink) WriteWorkouts(_ context.Context, rows []domain.WorkoutRow) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, row := range rows {
		if _, exists := s.workouts[row.WorkoutHash]; exists {
			continue
		}
		s.workouts[row.WorkoutHash] = row
		s.inserted[domain.TableWorkouts]++
	}
	s.batches[domain.TableWorkouts]++
	return len(rows), nil
}

// Truncate drops every stored row.
func (s *Sink) Truncate(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	return nil
}

// Count returns the number of distinct rows stored in table.
func (s *Sink) Count(_ context.Context, table domain.Table) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch table {
	case domain.TableRecords:
		return int64(len(s.records)), nil
	case domain.TableWorkouts:
		return int64(len(s.workouts)), nil
	}
	return 0, nil
}

// Inserted returns how many rows were actually added to table.
func (s *Sink) Inserted(table domain.Table) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inserted[table]
}

// Batches returns how many write calls table received.
func (s *Sink) Batches(table domain.Table) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.batches[table]
}

// Records returns stored records in first-insert order.
func (s *Sink) Records() []domain.RecordRow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.RecordRow, 0, len(s.order))
	for _, hash := range s.order {
		out = append(out, s.records[hash])
	}
	return out
}

// Workout returns the stored workout with hash, if any.
func (s *Sink) Workout(hash string) (domain.WorkoutRow, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.workouts[hash]
	return w, ok
}
