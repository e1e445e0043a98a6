// Package memorystorage implements the storage.Store interface with plain
// maps. Nothing survives the process; it backs tests and the default demo
// configuration.
package memorystorage

import (
	"sync"

	"github.com/pamana/markers/internal/model"
)

// Store is the in-memory backend.
type Store struct {
	mu       sync.Mutex
	statuses map[string]model.Status
	prefs    map[string]string
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		statuses: make(map[string]model.Status),
		prefs:    make(map[string]string),
	}
}

// Load returns the stored status for a record id.
func (s *Store) Load(id string) (model.Status, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	status, ok := s.statuses[id]
	return status, ok, nil
}

// Save stores a record's status.
func (s *Store) Save(id string, status model.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[id] = status
	return nil
}

// LoadPreference returns a stored preference value.
func (s *Store) LoadPreference(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.prefs[key]
	return value, ok, nil
}

// SavePreference stores a preference value.
func (s *Store) SavePreference(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs[key] = value
	return nil
}

// DeletePreference removes a preference.
func (s *Store) DeletePreference(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.prefs, key)
	return nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}
