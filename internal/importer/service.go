package importer

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/allhaile/puppyTrackr-sub000/internal/domain"
	"github.com/allhaile/puppyTrackr-sub000/internal/events"
)

// Notifier publishes an event after a successful remote commit.
type Notifier interface {
	EntriesImported(ctx context.Context, event events.EntriesImported) error
}

// Service wires the pipeline to the local and remote persistence
// collaborators. Parsing and normalization stay pure; all I/O happens in the
// commit methods.
type Service struct {
	normalizer *Normalizer
	repo       domain.EntryRepository
	store      domain.CollectionStore
	notifier   Notifier
	logger     *log.Logger
}

// Option configures optional behaviour for the Service.
type Option func(*Service)

// WithNotifier attaches an event notifier for remote commits.
func WithNotifier(notifier Notifier) Option {
	return func(s *Service) { s.notifier = notifier }
}

// WithLogger overrides the logger used for non-fatal reporting.
func WithLogger(logger *log.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithClock fixes the normalization clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.normalizer = NewNormalizerWithClock(now) }
}

// NewService constructs a Service. repo and store may be nil when the caller
// only uses the corresponding commit path.
func NewService(repo domain.EntryRepository, store domain.CollectionStore, opts ...Option) *Service {
	s := &Service{
		normalizer: NewNormalizer(),
		repo:       repo,
		store:      store,
		logger:     log.New(log.Writer(), "[importer] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ImportFile runs parse + normalize + preview over raw file content. Format
// errors fail the whole call; row-level issues are absorbed by per-field
// fallbacks, so a parseable file always yields one entry per surviving row.
func (s *Service) ImportFile(content []byte, fileName, defaultUser string) (*domain.ImportResult, error) {
	records, err := ParseFile(content, fileName)
	if err != nil {
		return nil, err
	}
	recordsParsedCounter.Add(float64(len(records)))

	entries := make([]domain.ActivityEntry, 0, len(records))
	for _, record := range records {
		entries = append(entries, s.normalizer.NormalizeRecord(record, defaultUser)...)
	}
	entriesNormalizedCounter.Add(float64(len(entries)))

	rawRecords := make([]domain.RawRecord, 0, len(records))
	for _, record := range records {
		rawRecords = append(rawRecords, *record)
	}

	return &domain.ImportResult{
		Entries:    entries,
		Preview:    Summarize(entries),
		RawRecords: rawRecords,
	}, nil
}

// CommitLocal merges entries into the household collection held by the local
// store. The read-modify-write is not atomic across concurrent writers; the
// accepted outcome is last-writer-wins, and callers needing stronger
// guarantees serialize imports themselves.
func (s *Service) CommitLocal(ctx context.Context, key string, entries []domain.ActivityEntry) (domain.MergeResult, error) {
	existing, err := s.store.Load(ctx, key)
	if err != nil {
		return domain.MergeResult{}, fmt.Errorf("load collection %q: %w", key, err)
	}

	merged, result := Merge([][]domain.ActivityEntry{entries}, existing)
	if err := s.store.Save(ctx, key, merged); err != nil {
		return domain.MergeResult{}, fmt.Errorf("save collection %q: %w", key, err)
	}

	recordMergeOutcome(result)
	return result, nil
}

// CommitRemote deduplicates entries against the pet's remote collection and
// inserts the survivors in one batch. Notification failures are logged, never
// surfaced: the merge already succeeded and consumers will catch up on the
// next poll.
func (s *Service) CommitRemote(ctx context.Context, petID, userID string, entries []domain.ActivityEntry) (domain.MergeResult, error) {
	existing, _, err := s.repo.ListByPet(ctx, petID, nil, 0)
	if err != nil {
		return domain.MergeResult{}, fmt.Errorf("list entries for pet %q: %w", petID, err)
	}

	kept, skipped := dedupe(entries, existing)
	if len(kept) > 0 {
		if err := s.repo.InsertMany(ctx, petID, userID, kept); err != nil {
			return domain.MergeResult{}, fmt.Errorf("insert entries for pet %q: %w", petID, err)
		}
	}

	result := domain.MergeResult{
		Imported: len(kept),
		Skipped:  skipped,
		Total:    len(existing) + len(kept),
	}
	recordMergeOutcome(result)

	if s.notifier != nil {
		event := events.EntriesImported{
			PetID:      petID,
			UserID:     userID,
			Imported:   result.Imported,
			Skipped:    result.Skipped,
			Total:      result.Total,
			OccurredAt: time.Now().UTC(),
		}
		if err := s.notifier.EntriesImported(ctx, event); err != nil {
			s.logger.Printf("entries.imported notification failed (pet=%s): %v", petID, err)
		}
	}

	return result, nil
}
