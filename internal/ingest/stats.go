package ingest

import (
	"sort"
	"time"
)

// UnknownType is the bucket used for records without a type attribute.
const UnknownType = "(none)"

// TypeCount is one entry of the record type frequency table.
type TypeCount struct {
	Type  string
	Count int64
}

// Stats is the run-local tally returned by Engine.Run.
type Stats struct {
	Records           int64
	Workouts          int64
	RecordsSubmitted  int64
	WorkoutsSubmitted int64
	Batches           int64
	LimitReached      bool
	Started           time.Time
	Finished          time.Time

	types map[string]int64
}

func newStats(now time.Time) *Stats {
	return &Stats{Started: now, types: make(map[string]int64)}
}

func (s *Stats) countType(recordType *string) {
	key := UnknownType
	if recordType != nil {
		key = *recordType
	}
	s.types[key]++
}

// Elapsed returns the wall time of the run, never less than a millisecond.
func (s *Stats) Elapsed() time.Duration {
	end := s.Finished
	if end.IsZero() {
		end = time.Now()
	}
	d := end.Sub(s.Started)
	if d < time.Millisecond {
		d = time.Millisecond
	}
	return d
}

// Rate returns records processed per second.
func (s *Stats) Rate() float64 {
	return float64(s.Records) / s.Elapsed().Seconds()
}

// CountFor returns the number of records seen for a type.
func (s *Stats) CountFor(recordType string) int64 {
	return s.types[recordType]
}

// TopTypes returns the n most frequent record types, ties broken by name.
func (s *Stats) TopTypes(n int) []TypeCount {
	out := make([]TypeCount, 0, len(s.types))
	for t, c := range s.types {
		out = append(out, TypeCount{Type: t, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Type < out[j].Type
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
