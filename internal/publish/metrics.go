package publish

import "github.com/prometheus/client_golang/prometheus"

var (
	publishedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "healthingest",
		Subsystem: "publish",
		Name:      "rows_published_total",
		Help:      "Number of normalized rows written to Kafka, labeled by topic.",
	}, []string{"topic"})

	publishFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "healthingest",
		Subsystem: "publish",
		Name:      "batch_failures_total",
		Help:      "Number of row batches that failed to publish, labeled by topic.",
	}, []string{"topic"})
)

func init() {
	prometheus.MustRegister(publishedCounter, publishFailures)
}
