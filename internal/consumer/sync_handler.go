package consumer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/allhaile/puppyTrackr-sub000/internal/domain"
	"github.com/allhaile/puppyTrackr-sub000/internal/events"
)

// CollectionKey names the local collection mirror for a pet.
func CollectionKey(petID string) string {
	return "entries:" + petID
}

// SyncHandler refreshes the local collection mirror whenever an import lands
// in the remote store, so household consumers subscribed to the local store
// see new entries without polling Postgres themselves.
type SyncHandler struct {
	repo  domain.EntryRepository
	store domain.CollectionStore
}

// NewSyncHandler constructs a handler bridging the remote and local stores.
func NewSyncHandler(repo domain.EntryRepository, store domain.CollectionStore) *SyncHandler {
	return &SyncHandler{repo: repo, store: store}
}

// Handle reacts to entries.imported by mirroring the pet's full collection
// into the local store. Unknown event types are ignored.
func (h *SyncHandler) Handle(ctx context.Context, msg Message) error {
	if msg.EventType != "entries.imported" {
		return nil
	}

	var event events.EntriesImported
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		return fmt.Errorf("decode entries.imported payload: %w", err)
	}

	entries, _, err := h.repo.ListByPet(ctx, event.PetID, nil, 0)
	if err != nil {
		return fmt.Errorf("list entries for pet %q: %w", event.PetID, err)
	}
	return h.store.Save(ctx, CollectionKey(event.PetID), entries)
}
