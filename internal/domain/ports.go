package domain

import (
	"context"
	"time"
)

// Cursor models the pagination token for time-descending entry listings.
type Cursor struct {
	Time time.Time
	ID   string
}

// EntryRepository captures remote persistence operations for activity entries.
// A nil cursor with limit <= 0 lists the pet's full collection.
type EntryRepository interface {
	InsertMany(ctx context.Context, petID, userID string, entries []ActivityEntry) error
	ListByPet(ctx context.Context, petID string, cursor *Cursor, limit int) ([]ActivityEntry, *Cursor, error)
}

// CollectionStore is the local collection collaborator: the full entry list for
// a household is stored as one value under a single logical key.
type CollectionStore interface {
	Load(ctx context.Context, key string) ([]ActivityEntry, error)
	Save(ctx context.Context, key string, entries []ActivityEntry) error
}
