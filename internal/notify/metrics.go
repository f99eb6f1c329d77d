package notify

import "github.com/prometheus/client_golang/prometheus"

var (
	publishedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "puppytrackr",
		Subsystem: "notify",
		Name:      "events_published_total",
		Help:      "Number of entry events successfully published to Kafka, labeled by topic.",
	}, []string{"topic"})

	publishFailedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "puppytrackr",
		Subsystem: "notify",
		Name:      "events_failed_total",
		Help:      "Number of entry events that failed to publish, labeled by topic.",
	}, []string{"topic"})
)

func init() {
	prometheus.MustRegister(publishedCounter, publishFailedCounter)
}
