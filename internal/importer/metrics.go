package importer

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/allhaile/puppyTrackr-sub000/internal/domain"
)

var (
	recordsParsedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "puppytrackr",
		Subsystem: "importer",
		Name:      "records_parsed_total",
		Help:      "Number of raw records decoded from import files.",
	})

	entriesNormalizedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "puppytrackr",
		Subsystem: "importer",
		Name:      "entries_normalized_total",
		Help:      "Number of canonical entries produced by normalization.",
	})

	entriesImportedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "puppytrackr",
		Subsystem: "importer",
		Name:      "entries_imported_total",
		Help:      "Number of entries that survived deduplication and were committed.",
	})

	entriesSkippedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "puppytrackr",
		Subsystem: "importer",
		Name:      "entries_skipped_total",
		Help:      "Number of entries dropped as exact or near duplicates.",
	})

	lastImportGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "puppytrackr",
		Subsystem: "importer",
		Name:      "last_import_timestamp_seconds",
		Help:      "Unix timestamp of the most recent committed import.",
	})
)

func init() {
	prometheus.MustRegister(
		recordsParsedCounter,
		entriesNormalizedCounter,
		entriesImportedCounter,
		entriesSkippedCounter,
		lastImportGauge,
	)
}

func recordMergeOutcome(result domain.MergeResult) {
	entriesImportedCounter.Add(float64(result.Imported))
	entriesSkippedCounter.Add(float64(result.Skipped))
	lastImportGauge.Set(float64(time.Now().Unix()))
}
