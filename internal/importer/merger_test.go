package importer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/allhaile/puppyTrackr-sub000/internal/domain"
)

func importedEntry(id string, at time.Time, entryType domain.ActivityType, user, notes string) domain.ActivityEntry {
	return domain.ActivityEntry{
		ID:    domain.ImportIDPrefix + id,
		Time:  at,
		User:  user,
		Type:  entryType,
		Types: []domain.ActivityType{entryType},
		Notes: notes,
	}
}

func organicEntry(id string, at time.Time, entryType domain.ActivityType, user, notes string) domain.ActivityEntry {
	return domain.ActivityEntry{
		ID:    id,
		Time:  at,
		User:  user,
		Type:  entryType,
		Types: []domain.ActivityType{entryType},
		Notes: notes,
	}
}

func TestMergeIntoEmptyCollection(t *testing.T) {
	base := time.Date(2025, time.August, 1, 9, 0, 0, 0, time.Local)
	batch := []domain.ActivityEntry{
		importedEntry("a", base, domain.TypePotty, "Dana", "walk"),
		importedEntry("b", base.Add(2*time.Hour), domain.TypeMeal, "Alex", "lunch"),
	}

	merged, result := Merge([][]domain.ActivityEntry{batch}, nil)
	require.Equal(t, domain.MergeResult{Imported: 2, Skipped: 0, Total: 2}, result)
	require.Len(t, merged, 2)
	// Most recent first.
	require.Equal(t, "imported_b", merged[0].ID)
	require.Equal(t, "imported_a", merged[1].ID)
}

func TestMergeIsIdempotent(t *testing.T) {
	base := time.Date(2025, time.August, 1, 9, 0, 0, 0, time.Local)
	batch := []domain.ActivityEntry{
		importedEntry("a", base, domain.TypePotty, "Dana", "walk"),
		importedEntry("b", base.Add(time.Hour), domain.TypeMeal, "Alex", "lunch"),
		importedEntry("c", base.Add(2*time.Hour), domain.TypeSleep, "Dana", ""),
	}

	first, firstResult := Merge([][]domain.ActivityEntry{batch}, nil)
	require.Equal(t, 3, firstResult.Imported)

	second, secondResult := Merge([][]domain.ActivityEntry{batch}, first)
	require.Equal(t, 0, secondResult.Imported)
	require.Equal(t, 3, secondResult.Skipped)
	require.Equal(t, 3, secondResult.Total)
	require.Len(t, second, 3)
}

func TestMergeExactDuplicateAbsorbsSubMinuteJitter(t *testing.T) {
	existing := []domain.ActivityEntry{
		organicEntry("e1", time.Date(2025, time.August, 1, 9, 0, 12, 0, time.Local), domain.TypePotty, "Dana", "walk"),
	}
	batch := []domain.ActivityEntry{
		importedEntry("a", time.Date(2025, time.August, 1, 9, 0, 48, 0, time.Local), domain.TypePotty, "Dana", "walk"),
	}

	_, result := Merge([][]domain.ActivityEntry{batch}, existing)
	require.Equal(t, 0, result.Imported)
	require.Equal(t, 1, result.Skipped)
}

func TestMergeExactDuplicateRequiresMatchingFields(t *testing.T) {
	at := time.Date(2025, time.August, 1, 9, 0, 0, 0, time.Local)
	existing := []domain.ActivityEntry{
		organicEntry("e1", at, domain.TypePotty, "Dana", "walk"),
	}

	cases := []domain.ActivityEntry{
		importedEntry("a", at, domain.TypeMeal, "Dana", "walk"),   // different type
		importedEntry("b", at, domain.TypePotty, "Alex", "walk"),  // different user
		importedEntry("c", at, domain.TypePotty, "Dana", "other"), // different notes
	}
	for _, candidate := range cases {
		_, result := Merge([][]domain.ActivityEntry{{candidate}}, existing)
		require.Equal(t, 1, result.Imported, "candidate %s should not be suppressed", candidate.ID)
	}
}

func TestMergeNearDuplicateOnlyAgainstImportedEntries(t *testing.T) {
	at := time.Date(2025, time.August, 1, 9, 0, 0, 0, time.Local)
	candidate := importedEntry("a", at.Add(90*time.Second), domain.TypePotty, "Dana", "re-export wording")

	importedExisting := []domain.ActivityEntry{
		importedEntry("prior", at, domain.TypePotty, "Dana", "original wording"),
	}
	_, result := Merge([][]domain.ActivityEntry{{candidate}}, importedExisting)
	require.Equal(t, 0, result.Imported, "near duplicate of an imported entry should be skipped")
	require.Equal(t, 1, result.Skipped)

	organicExisting := []domain.ActivityEntry{
		organicEntry("prior", at, domain.TypePotty, "Dana", "original wording"),
	}
	_, result = Merge([][]domain.ActivityEntry{{candidate}}, organicExisting)
	require.Equal(t, 1, result.Imported, "organic entries must never shadow an import")
}

func TestMergeNearDuplicateWindowBoundary(t *testing.T) {
	at := time.Date(2025, time.August, 1, 9, 0, 0, 0, time.Local)
	existing := []domain.ActivityEntry{
		importedEntry("prior", at, domain.TypePotty, "Dana", "x"),
	}

	// 9:01 truncates 60s away: still inside the window.
	inside := importedEntry("a", at.Add(time.Minute), domain.TypePotty, "Dana", "y")
	_, result := Merge([][]domain.ActivityEntry{{inside}}, existing)
	require.Equal(t, 0, result.Imported)

	// 9:02 truncates 120s away: outside.
	outside := importedEntry("b", at.Add(2*time.Minute), domain.TypePotty, "Dana", "y")
	_, result = Merge([][]domain.ActivityEntry{{outside}}, existing)
	require.Equal(t, 1, result.Imported)
}

func TestMergeFlattensBatchesAndSorts(t *testing.T) {
	base := time.Date(2025, time.August, 1, 9, 0, 0, 0, time.Local)
	existing := []domain.ActivityEntry{
		organicEntry("old", base.Add(-24*time.Hour), domain.TypeNote, "Dana", ""),
	}
	batches := [][]domain.ActivityEntry{
		{importedEntry("a", base, domain.TypePotty, "Dana", "")},
		{importedEntry("b", base.Add(time.Hour), domain.TypeMeal, "Alex", "")},
	}

	merged, result := Merge(batches, existing)
	require.Equal(t, 2, result.Imported)
	require.Equal(t, 3, result.Total)
	require.Equal(t, "imported_b", merged[0].ID)
	require.Equal(t, "imported_a", merged[1].ID)
	require.Equal(t, "old", merged[2].ID)
}
