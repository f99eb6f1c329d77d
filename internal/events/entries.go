// Package events defines the payloads published after entry mutations.
package events

import "time"

// EntriesImported is emitted after an import batch is committed to the remote
// store, so household dashboards and other consumers refresh.
type EntriesImported struct {
	PetID      string    `json:"pet_id"`
	UserID     string    `json:"user_id"`
	Imported   int       `json:"imported"`
	Skipped    int       `json:"skipped"`
	Total      int       `json:"total"`
	SourceFile string    `json:"source_file,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// CollectionUpdated is broadcast to local subscribers after a household's
// entry collection is rewritten.
type CollectionUpdated struct {
	Key        string    `json:"key"`
	Total      int       `json:"total"`
	OccurredAt time.Time `json:"occurred_at"`
}
