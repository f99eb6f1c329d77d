// Package postgres provides the remote entry store backed by PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/allhaile/puppyTrackr-sub000/internal/domain"
	"github.com/allhaile/puppyTrackr-sub000/internal/observability"
)

// Repository provides Postgres-backed persistence for activity entries.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const entryColumns = `entry_id, pet_id, user_id, entry_type, entry_types, occurred_at, logged_by, notes, details, mood, energy, has_treat`

// InsertMany persists a deduplicated import batch in a single transaction:
// either every entry lands or none does, so a failed commit leaves the store
// unchanged and the caller can retry with the same batch.
func (r *Repository) InsertMany(ctx context.Context, petID, userID string, entries []domain.ActivityEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	const stmt = `INSERT INTO entries (` + entryColumns + `, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`

	now := time.Now().UTC()
	for _, entry := range entries {
		_, err = tx.Exec(ctx, stmt,
			entry.ID,
			petID,
			userID,
			string(entry.Type),
			encodeTypes(entry.Types),
			entry.Time,
			entry.User,
			nullIfEmpty(entry.Notes),
			nullIfEmpty(entry.Details),
			nullIfEmpty(entry.Mood),
			nullIfEmpty(entry.Energy),
			entry.HasTreat,
			now,
		)
		if err != nil {
			return err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return err
	}
	observability.RecordEntriesPersisted(now)
	return nil
}

// ListByPet returns entries for a pet ordered by occurrence time descending.
// A nil cursor with limit <= 0 returns the full collection.
func (r *Repository) ListByPet(ctx context.Context, petID string, cursor *domain.Cursor, limit int) ([]domain.ActivityEntry, *domain.Cursor, error) {
	args := []interface{}{petID}
	query := `SELECT ` + entryColumns + ` FROM entries WHERE pet_id=$1`

	if cursor != nil {
		query += ` AND (occurred_at, entry_id) < ($2, $3)`
		args = append(args, cursor.Time, cursor.ID)
	}
	query += ` ORDER BY occurred_at DESC, entry_id DESC`
	if limit > 0 {
		args = append(args, limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	entries := make([]domain.ActivityEntry, 0)
	for rows.Next() {
		entry, scanErr := scanEntry(rows)
		if scanErr != nil {
			return nil, nil, scanErr
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	var next *domain.Cursor
	if limit > 0 && len(entries) == limit {
		last := entries[len(entries)-1]
		next = &domain.Cursor{Time: last.Time, ID: last.ID}
	}
	return entries, next, nil
}

// Get retrieves a single entry by ID, or nil when absent.
func (r *Repository) Get(ctx context.Context, petID, entryID string) (*domain.ActivityEntry, error) {
	const query = `SELECT ` + entryColumns + ` FROM entries WHERE pet_id=$1 AND entry_id=$2`

	row := r.pool.QueryRow(ctx, query, petID, entryID)
	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row rowScanner) (domain.ActivityEntry, error) {
	var (
		entry            domain.ActivityEntry
		petID, userID    string
		entryType, types string
		notes, details   *string
		mood, energy     *string
	)
	if err := row.Scan(&entry.ID, &petID, &userID, &entryType, &types, &entry.Time, &entry.User, &notes, &details, &mood, &energy, &entry.HasTreat); err != nil {
		return domain.ActivityEntry{}, err
	}
	entry.Type = domain.ActivityType(entryType)
	entry.Types = decodeTypes(types)
	entry.Notes = deref(notes)
	entry.Details = deref(details)
	entry.Mood = deref(mood)
	entry.Energy = deref(energy)
	return entry, nil
}

// encodeTypes stores the ordered type set comma-joined; the primary type is
// always the first element.
func encodeTypes(types []domain.ActivityType) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = string(t)
	}
	return strings.Join(parts, ",")
}

func decodeTypes(encoded string) []domain.ActivityType {
	if encoded == "" {
		return nil
	}
	parts := strings.Split(encoded, ",")
	out := make([]domain.ActivityType, 0, len(parts))
	for _, p := range parts {
		out = append(out, domain.ActivityType(p))
	}
	return out
}

func nullIfEmpty(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
