package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	entriesPersistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "puppytrackr",
		Subsystem: "persistence",
		Name:      "last_entries_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent entry batch persisted to Postgres.",
	})
	collectionSavedGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "puppytrackr",
		Subsystem: "persistence",
		Name:      "last_collection_saved_timestamp_seconds",
		Help:      "Unix timestamp of the most recent local collection write.",
	})
)

func init() {
	prometheus.MustRegister(entriesPersistGauge, collectionSavedGauge)
}

// RecordEntriesPersisted updates the remote persistence watermark gauge.
func RecordEntriesPersisted(ts time.Time) {
	if ts.IsZero() {
		return
	}
	entriesPersistGauge.Set(float64(ts.Unix()))
}

// RecordCollectionSaved updates the local store watermark gauge.
func RecordCollectionSaved(ts time.Time) {
	if ts.IsZero() {
		return
	}
	collectionSavedGauge.Set(float64(ts.Unix()))
}
