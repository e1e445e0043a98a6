// Package gormstore implements the storage.Store interface on top of a GORM
// database handle. The SQLite and Postgres backends wrap it via composition;
// only connection setup differs between them.
package gormstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pamana/markers/internal/model"
)

// MarkerStatus is one persisted visited/bookmarked pair, stored in the
// two-character wire format so rows stay human-inspectable.
type MarkerStatus struct {
	ID        string `gorm:"primaryKey;size:63"`
	Status    string `gorm:"size:2"`
	UpdatedAt time.Time
}

func (*MarkerStatus) TableName() string {
	return "marker_statuses"
}

// Preference is one persisted session preference. Values are stored as JSON
// so non-string settings can be added without a migration.
type Preference struct {
	Key       string         `gorm:"primaryKey;size:63"`
	Value     datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time
}

func (*Preference) TableName() string {
	return "preferences"
}

// DatabaseModels lists the tables this store migrates.
var DatabaseModels = []interface{}{
	&MarkerStatus{},
	&Preference{},
}

// Backend is the shared GORM-backed store.
type Backend struct {
	db *gorm.DB
}

// New wraps an open GORM handle.
func New(db *gorm.DB) *Backend {
	return &Backend{db: db}
}

// Init migrates the schema.
func (b *Backend) Init() error {
	if err := b.db.AutoMigrate(DatabaseModels...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Load returns the persisted status for a record id.
func (b *Backend) Load(id string) (model.Status, bool, error) {
	var row MarkerStatus
	err := b.db.First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Status{}, false, nil
	}
	if err != nil {
		return model.Status{}, false, fmt.Errorf("failed to load status %s: %w", id, err)
	}
	return model.DecodeStatus(row.Status), true, nil
}

// Save upserts a record's status.
func (b *Backend) Save(id string, status model.Status) error {
	row := MarkerStatus{ID: id, Status: status.Encode(), UpdatedAt: time.Now()}
	err := b.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to save status %s: %w", id, err)
	}
	return nil
}

// LoadPreference returns a persisted preference value.
func (b *Backend) LoadPreference(key string) (string, bool, error) {
	var row Preference
	err := b.db.First(&row, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to load preference %s: %w", key, err)
	}
	var value string
	if err := json.Unmarshal(row.Value, &value); err != nil {
		return "", false, fmt.Errorf("corrupt preference %s: %w", key, err)
	}
	return value, true, nil
}

// SavePreference upserts a preference value.
func (b *Backend) SavePreference(key, value string) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode preference %s: %w", key, err)
	}
	row := Preference{Key: key, Value: raw, UpdatedAt: time.Now()}
	err = b.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to save preference %s: %w", key, err)
	}
	return nil
}

// DeletePreference removes a preference row.
func (b *Backend) DeletePreference(key string) error {
	err := b.db.Delete(&Preference{}, "key = ?", key).Error
	if err != nil {
		return fmt.Errorf("failed to delete preference %s: %w", key, err)
	}
	return nil
}

// Close releases the underlying connection.
func (b *Backend) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
