package storage

import (
	"fmt"

	"github.com/pamana/markers/internal/config"
	memorystorage "github.com/pamana/markers/internal/storage/memory"
	postgresstorage "github.com/pamana/markers/internal/storage/postgres"
	sqlitestorage "github.com/pamana/markers/internal/storage/sqlite"
)

// NewStore creates a status store based on configuration.
func NewStore(cfg config.StorageConfig) (Store, error) {
	switch cfg.Type {
	case "postgres":
		return postgresstorage.New(cfg.Postgres)
	case "sqlite":
		return sqlitestorage.New(cfg.SQLite.Path)
	case "memory":
		return memorystorage.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
