// Package publish streams normalized rows to Kafka topics keyed by content hash.
package publish

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"example.com/healthingest/internal/domain"
)

type messageWriter interface {
	WriteMessages(context.Context, string, ...kafka.Message) error
}

type schemaRegistrar interface {
	EnsureSchema(context.Context, string, string) (int, error)
}

// Option configures optional behaviour for the KafkaSink.
type Option func(*KafkaSink)

// WithSchemaRegistry frames payloads with the schema ID resolved from registry.
func WithSchemaRegistry(registry schemaRegistrar) Option {
	return func(s *KafkaSink) {
		s.registry = registry
	}
}

// WithTopics overrides the default table-named topics.
func WithTopics(records, workouts string) Option {
	return func(s *KafkaSink) {
		s.topics[domain.TableRecords] = records
		s.topics[domain.TableWorkouts] = workouts
	}
}

// KafkaSink publishes each row as a JSON message keyed by its hash. Deduplication
// is left to log compaction on the key, so republishing a row is harmless.
type KafkaSink struct {
	producer      messageWriter
	registry      schemaRegistrar
	runID         string
	topics        map[domain.Table]string
	schemaIDCache sync.Map
	now           func() time.Time
}

// NewKafkaSink constructs a KafkaSink. runID is attached to every message header.
func NewKafkaSink(producer messageWriter, runID string, opts ...Option) *KafkaSink {
	s := &KafkaSink{
		producer: producer,
		runID:    runID,
		topics: map[domain.Table]string{
			domain.TableRecords:  string(domain.TableRecords),
			domain.TableWorkouts: string(domain.TableWorkouts),
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WriteRecords publishes a batch to the records topic.
func (s *KafkaSink) WriteRecords(ctx context.Context, rows []domain.RecordRow) (int, error) {
	msgs := make([]rowMessage, len(rows))
	for i := range rows {
		msgs[i] = rowMessage{key: rows[i].RecordHash, row: &rows[i]}
	}
	return s.publish(ctx, domain.TableRecords, recordRowSchema, msgs)
}

// WriteWorkouts publishes a batch to the workouts topic.
func (s *KafkaSink) WriteWorkouts(ctx context.Context, rows []domain.WorkoutRow) (int, error) {
	msgs := make([]rowMessage, len(rows))
	for i := range rows {
		msgs[i] = rowMessage{key: rows[i].WorkoutHash, row: &rows[i]}
	}
	return s.publish(ctx, domain.TableWorkouts, workoutRowSchema, msgs)
}

type rowMessage struct {
	key string
	row any
}

func (s *KafkaSink) publish(ctx context.Context, table domain.Table, schema string, rows []rowMessage) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	topic := s.topics[table]

	schemaID, err := s.schemaID(ctx, topic+"-value", schema)
	if err != nil {
		publishFailures.WithLabelValues(topic).Inc()
		return 0, fmt.Errorf("resolve schema for %s: %w", topic, err)
	}

	ts := s.now().UTC()
	headers := []kafka.Header{
		{Key: "table", Value: []byte(table)},
		{Key: "run_id", Value: []byte(s.runID)},
	}

	records := make([]kafka.Message, 0, len(rows))
	for _, r := range rows {
		payload, err := domain.CanonicalJSON(r.row)
		if err != nil {
			return 0, fmt.Errorf("encode %s row %s: %w", table, r.key, err)
		}
		records = append(records, kafka.Message{
			Key:     []byte(r.key),
			Value:   frame(schemaID, payload),
			Headers: headers,
			Time:    ts,
		})
	}

	if err := s.producer.WriteMessages(ctx, topic, records...); err != nil {
		publishFailures.WithLabelValues(topic).Inc()
		return 0, fmt.Errorf("publish to %s: %w", topic, err)
	}
	publishedCounter.WithLabelValues(topic).Add(float64(len(records)))
	return len(rows), nil
}

// schemaID returns -1 when no registry is configured.
func (s *KafkaSink) schemaID(ctx context.Context, subject, schema string) (int, error) {
	if s.registry == nil {
		return -1, nil
	}
	if id, ok := s.schemaIDCache.Load(subject); ok {
		return id.(int), nil
	}
	id, err := s.registry.EnsureSchema(ctx, subject, schema)
	if err != nil {
		return 0, err
	}
	s.schemaIDCache.Store(subject, id)
	return id, nil
}

// frame applies Confluent wire framing (magic byte + big-endian schema ID) when a
// schema ID is known; otherwise the payload is sent as plain JSON.
func frame(schemaID int, payload []byte) []byte {
	if schemaID < 0 {
		return payload
	}
	out := make([]byte, 5+len(payload))
	out[0] = 0
	binary.BigEndian.PutUint32(out[1:5], uint32(schemaID))
	copy(out[5:], payload)
	return out
}
