package importer

import (
	"sort"
	"time"

	"github.com/allhaile/puppyTrackr-sub000/internal/domain"
)

// nearWindow bounds how far apart two minute-truncated timestamps can sit and
// still describe the same imported event.
const nearWindow = 60 * time.Second

// Merge combines newly normalized batches with an existing collection.
// Nested batches from per-row producers are flattened first. Surviving
// entries are concatenated with the existing collection and the whole set is
// re-sorted most-recent-first. Re-merging the same batch against its own
// output imports nothing.
func Merge(batches [][]domain.ActivityEntry, existing []domain.ActivityEntry) ([]domain.ActivityEntry, domain.MergeResult) {
	kept, skipped := dedupe(flatten(batches), existing)

	merged := make([]domain.ActivityEntry, 0, len(existing)+len(kept))
	merged = append(merged, existing...)
	merged = append(merged, kept...)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Time.After(merged[j].Time)
	})

	return merged, domain.MergeResult{
		Imported: len(kept),
		Skipped:  skipped,
		Total:    len(merged),
	}
}

// dedupe returns the incoming entries that are neither exact nor near
// duplicates of an existing entry, plus the number dropped.
func dedupe(incoming, existing []domain.ActivityEntry) ([]domain.ActivityEntry, int) {
	kept := make([]domain.ActivityEntry, 0, len(incoming))
	skipped := 0
	for _, candidate := range incoming {
		if isDuplicate(candidate, existing) {
			skipped++
			continue
		}
		kept = append(kept, candidate)
	}
	return kept, skipped
}

// isDuplicate applies both suppression rules against the existing collection.
// Timestamps are truncated to whole minutes to absorb sub-minute jitter
// between independent imports of the same event.
//
// Near-duplicate suppression only triggers when the existing entry carries the
// import-provenance tag: an organically logged entry is never silently
// shadowed by an import.
func isDuplicate(candidate domain.ActivityEntry, existing []domain.ActivityEntry) bool {
	candidateMinute := candidate.Time.Truncate(time.Minute)
	for _, current := range existing {
		if candidate.Type != current.Type || candidate.User != current.User {
			continue
		}
		currentMinute := current.Time.Truncate(time.Minute)

		if candidateMinute.Equal(currentMinute) && candidate.Notes == current.Notes {
			return true
		}
		if current.Imported() && absDuration(candidateMinute.Sub(currentMinute)) <= nearWindow {
			return true
		}
	}
	return false
}

func flatten(batches [][]domain.ActivityEntry) []domain.ActivityEntry {
	total := 0
	for _, batch := range batches {
		total += len(batch)
	}
	out := make([]domain.ActivityEntry, 0, total)
	for _, batch := range batches {
		out = append(out, batch...)
	}
	return out
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
