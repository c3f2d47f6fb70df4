package publish

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// flushLinger bounds how long a synchronous write waits for a partial batch.
// kafka-go defaults to one second, which would stall every short flush.
const flushLinger = 10 * time.Millisecond

// Producer owns one kafka.Writer per topic. Messages are partitioned by key, so
// a row hash always lands on the same partition and compaction can dedupe it.
type Producer struct {
	brokers   []string
	batchSize int

	mu      sync.Mutex
	writers map[string]*kafka.Writer
}

// NewProducer creates a Producer whose writers send up to batchSize messages per
// request. A non-positive batchSize falls back to the kafka-go default.
func NewProducer(brokers []string, batchSize int) *Producer {
	return &Producer{
		brokers:   brokers,
		batchSize: batchSize,
		writers:   make(map[string]*kafka.Writer),
	}
}

// WriteMessages blocks until every message is acknowledged by all in-sync replicas.
func (p *Producer) WriteMessages(ctx context.Context, topic string, msgs ...kafka.Message) error {
	w, err := p.writer(topic)
	if err != nil {
		return err
	}
	return w.WriteMessages(ctx, msgs...)
}

func (p *Producer) writer(topic string) (*kafka.Writer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.writers == nil {
		return nil, errProducerClosed
	}
	if w, ok := p.writers[topic]; ok {
		return w, nil
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(p.brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		Compression:            kafka.Snappy,
		BatchSize:              p.batchSize,
		BatchTimeout:           flushLinger,
		AllowAutoTopicCreation: true,
	}
	p.writers[topic] = w
	return w, nil
}

var errProducerClosed = errors.New("publish: producer closed")

// Close flushes and releases every writer. The Producer cannot be reused.
func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var err error
	for topic, w := range p.writers {
		if cerr := w.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close writer for %s: %w", topic, cerr))
		}
	}
	p.writers = nil
	return err
}
