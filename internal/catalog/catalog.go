// Package catalog owns the loaded marker records for the lifetime of a
// session. It is the single write path for the visited/bookmarked flags:
// every change goes through SetStatus, which persists write-through before
// mutating the in-memory record, so the store never lags the catalog.
package catalog

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/pamana/markers/internal/dataset"
	"github.com/pamana/markers/internal/model"
	"github.com/pamana/markers/internal/queue"
	"github.com/pamana/markers/internal/storage"
)

// Store holds the records in dataset order plus an id index. It is not
// safe for concurrent use; all access happens on the session loop.
type Store struct {
	records []*model.MarkerRecord
	byID    map[string]*model.MarkerRecord
	regions []string

	statuses storage.Store
	changed  *queue.Dedup[string]

	logger zerolog.Logger
}

// New builds a catalog over the given records and restores each record's
// persisted status from the store.
func New(records []*model.MarkerRecord, statuses storage.Store, logger zerolog.Logger) (*Store, error) {
	s := &Store{
		records:  records,
		byID:     make(map[string]*model.MarkerRecord, len(records)),
		regions:  dataset.Regions(records),
		statuses: statuses,
		changed:  queue.NewDedup[string](),
		logger:   logger.With().Str("component", "catalog").Logger(),
	}

	restored := 0
	for _, rec := range records {
		s.byID[rec.ID] = rec

		status, ok, err := statuses.Load(rec.ID)
		if err != nil {
			return nil, fmt.Errorf("error restoring status for %s: %w", rec.ID, err)
		}
		if ok {
			rec.Visited = status.Visited
			rec.Bookmarked = status.Bookmarked
			restored++
		}
	}

	s.logger.Info().
		Int("records", len(records)).
		Int("restoredStatuses", restored).
		Msg("Catalog loaded")
	return s, nil
}

// Get returns the record for id. Callers only pass ids obtained from the
// catalog itself, so an unknown id is a programming error.
func (s *Store) Get(id string) *model.MarkerRecord {
	rec, ok := s.byID[id]
	if !ok {
		panic(fmt.Sprintf("catalog: unknown record id %q", id))
	}
	return rec
}

// Has reports whether the catalog contains id.
func (s *Store) Has(id string) bool {
	_, ok := s.byID[id]
	return ok
}

// All returns the records in dataset order. Callers must not reorder the
// returned slice.
func (s *Store) All() []*model.MarkerRecord {
	return s.records
}

func (s *Store) Len() int {
	return len(s.records)
}

// Regions returns the sorted distinct region names present in the dataset.
func (s *Store) Regions() []string {
	return s.regions
}

// SetStatus updates a record's flags, persisting before the in-memory
// write. Nil means "leave this flag alone". The record is queued as
// recently changed only when a flag actually flipped.
func (s *Store) SetStatus(id string, visited, bookmarked *bool) error {
	rec := s.Get(id)

	next := rec.Status()
	if visited != nil {
		next.Visited = *visited
	}
	if bookmarked != nil {
		next.Bookmarked = *bookmarked
	}
	if next == rec.Status() {
		return nil
	}

	if err := s.statuses.Save(id, next); err != nil {
		return fmt.Errorf("error saving status for %s: %w", id, err)
	}

	rec.Visited = next.Visited
	rec.Bookmarked = next.Bookmarked
	s.changed.Push(id)

	s.logger.Debug().
		Str("id", id).
		Str("status", next.Encode()).
		Msg("Status updated")
	return nil
}

// RecentlyChanged drains the ids whose status changed since the last call,
// oldest first.
func (s *Store) RecentlyChanged() []string {
	return s.changed.Drain()
}

// HasRecentChanges reports whether any status changed since the last drain.
func (s *Store) HasRecentChanges() bool {
	return !s.changed.Empty()
}

// InvalidateDistances clears every cached distance. Called when the user's
// position changes so the filter engine recomputes lazily.
func (s *Store) InvalidateDistances() {
	for _, rec := range s.records {
		rec.Distance = nil
	}
}
