package importer

import (
	"github.com/allhaile/puppyTrackr-sub000/internal/domain"
)

// maxSampleEntries caps the representative rows included in a preview.
const maxSampleEntries = 10

// previewDateLayout renders range bounds for human review.
const previewDateLayout = "Jan 2, 2006"

// Summarize computes aggregate statistics over a normalized batch without
// mutating it. Samples preserve original order; types that never occur are
// absent from the breakdown. Safe to call repeatedly for a live preview.
func Summarize(entries []domain.ActivityEntry) domain.PreviewSummary {
	summary := domain.PreviewSummary{
		TotalEntries:      len(entries),
		ActivityBreakdown: make(map[domain.ActivityType]int),
	}
	if len(entries) == 0 {
		return summary
	}

	earliest, latest := entries[0].Time, entries[0].Time
	for _, entry := range entries {
		summary.ActivityBreakdown[entry.Type]++
		if entry.Time.Before(earliest) {
			earliest = entry.Time
		}
		if entry.Time.After(latest) {
			latest = entry.Time
		}
	}
	summary.EarliestDate = earliest.Format(previewDateLayout)
	summary.LatestDate = latest.Format(previewDateLayout)

	sampleLen := len(entries)
	if sampleLen > maxSampleEntries {
		sampleLen = maxSampleEntries
	}
	summary.SampleEntries = append([]domain.ActivityEntry(nil), entries[:sampleLen]...)
	return summary
}
