// Package sqlitestorage implements the storage.Store interface using a
// local SQLite file (or an in-memory database when no path is given). It
// wraps the GORM backend via composition; the only SQLite-specific concerns
// are connection setup and PRAGMA tuning.
package sqlitestorage

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pamana/markers/internal/storage/gormstore"
)

// Store wraps the GORM backend for SQLite-specific behavior.
type Store struct {
	*gormstore.Backend
}

// New opens (or creates) the SQLite status database and migrates its
// schema. An empty path uses an in-memory database.
func New(path string) (*Store, error) {
	dsn := path
	if dsn == "" {
		dsn = "file::memory:?cache=shared"
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite DB: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
		"PRAGMA temp_store = MEMORY;",
	}
	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			return nil, fmt.Errorf("error setting PRAGMA: %w", err)
		}
	}

	s := &Store{Backend: gormstore.New(db)}
	if err := s.Init(); err != nil {
		return nil, err
	}
	return s, nil
}
