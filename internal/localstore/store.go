// Package localstore persists household entry collections in a local SQLite
// database. It mirrors the app's local-storage collaborator: the full entry
// list lives as one JSON array under a single key, and subscribers to the same
// key are notified after each successful write.
package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/allhaile/puppyTrackr-sub000/internal/domain"
	"github.com/allhaile/puppyTrackr-sub000/internal/events"
	"github.com/allhaile/puppyTrackr-sub000/internal/observability"
)

const schema = `CREATE TABLE IF NOT EXISTS collections (
	key        TEXT PRIMARY KEY,
	payload    BLOB NOT NULL,
	updated_at TEXT NOT NULL
)`

// Open opens (or creates) the SQLite database at path, enables WAL journal
// mode, and ensures the collections table exists.
func Open(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Store implements domain.CollectionStore over SQLite. Writes are full-array
// replacements; concurrent writers race last-writer-wins, which matches the
// documented local-storage semantics.
type Store struct {
	db  *sql.DB
	hub *Hub
}

// NewStore constructs a Store. hub may be nil when no one subscribes.
func NewStore(db *sql.DB, hub *Hub) *Store {
	return &Store{db: db, hub: hub}
}

// Load returns the collection stored under key, or nil when absent.
func (s *Store) Load(ctx context.Context, key string) ([]domain.ActivityEntry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT payload FROM collections WHERE key = ?`, key)

	var payload []byte
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	var entries []domain.ActivityEntry
	if err := json.Unmarshal(payload, &entries); err != nil {
		return nil, fmt.Errorf("corrupt collection %q: %w", key, err)
	}
	return entries, nil
}

// Save replaces the collection stored under key and notifies subscribers.
func (s *Store) Save(ctx context.Context, key string, entries []domain.ActivityEntry) error {
	payload, err := json.Marshal(entries)
	if err != nil {
		return err
	}

	const upsert = `INSERT INTO collections (key, payload, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`

	now := time.Now().UTC()
	if _, err := s.db.ExecContext(ctx, upsert, key, payload, now.Format(time.RFC3339Nano)); err != nil {
		return err
	}

	observability.RecordCollectionSaved(now)
	if s.hub != nil {
		s.hub.Publish(events.CollectionUpdated{Key: key, Total: len(entries), OccurredAt: now})
	}
	return nil
}
