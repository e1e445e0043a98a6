// Package storage defines the persistence boundary for per-record status
// flags and session preferences. In-memory visited/bookmarked state and the
// store are equal immediately after every Save.
package storage

import "github.com/pamana/markers/internal/model"

// Preference keys persisted across app restarts.
const (
	PrefVisitedFilter    = "visited-filter"
	PrefBookmarkedFilter = "bookmarked-filter"
	PrefRegionFilter     = "region-filter"
	PrefDistanceFilter   = "distance-filter"
	PrefFirstOpen        = "first-open"
)

// Store is the interface all persistence backends must satisfy.
type Store interface {
	// Load returns the persisted status for a record id, with ok=false
	// when the record has never been toggled.
	Load(id string) (status model.Status, ok bool, err error)

	// Save writes a record's status through to the backend.
	Save(id string, status model.Status) error

	// LoadPreference returns a persisted preference value, with ok=false
	// when the key is absent.
	LoadPreference(key string) (value string, ok bool, err error)

	// SavePreference writes a preference value.
	SavePreference(key, value string) error

	// DeletePreference removes a preference; deleting an absent key is
	// not an error.
	DeletePreference(key string) error

	Close() error
}
