// Package observability exposes Prometheus collectors for the ingest pipeline.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	elementsNormalized = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "healthingest",
		Subsystem: "pipeline",
		Name:      "elements_normalized_total",
		Help:      "Number of Record and Workout elements normalized into rows.",
	}, []string{"kind"})

	rowsFlushed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "healthingest",
		Subsystem: "sink",
		Name:      "rows_submitted_total",
		Help:      "Number of rows submitted to the sink, including rows skipped as duplicates.",
	}, []string{"table"})

	flushFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "healthingest",
		Subsystem: "sink",
		Name:      "flush_failures_total",
		Help:      "Number of batch flushes that returned an error.",
	}, []string{"table"})

	flushDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "healthingest",
		Subsystem: "sink",
		Name:      "flush_duration_seconds",
		Help:      "Time spent writing a single batch to the sink.",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
	}, []string{"table"})

	lastFlushGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "healthingest",
		Subsystem: "sink",
		Name:      "last_flush_timestamp_seconds",
		Help:      "Unix timestamp of the most recent successful batch flush.",
	})
)

func init() {
	prometheus.MustRegister(elementsNormalized, rowsFlushed, flushFailures, flushDuration, lastFlushGauge)
}

// RecordNormalized counts one normalized element of the given kind.
func RecordNormalized(kind string) {
	elementsNormalized.WithLabelValues(kind).Inc()
}

// RecordFlush tracks a successful batch flush.
func RecordFlush(table string, rows int, took time.Duration) {
	rowsFlushed.WithLabelValues(table).Add(float64(rows))
	flushDuration.WithLabelValues(table).Observe(took.Seconds())
	lastFlushGauge.Set(float64(time.Now().Unix()))
}

// RecordFlushFailure counts a failed batch flush.
func RecordFlushFailure(table string) {
	flushFailures.WithLabelValues(table).Inc()
}
