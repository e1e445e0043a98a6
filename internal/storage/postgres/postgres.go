// Package postgresstorage implements the storage.Store interface against a
// Postgres database, for installs that share one status database between
// devices. Wraps the GORM backend via composition.
package postgresstorage

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pamana/markers/internal/config"
	"github.com/pamana/markers/internal/storage/gormstore"
)

// Store wraps the GORM backend for Postgres-specific behavior.
type Store struct {
	*gormstore.Backend
}

// New connects to Postgres and migrates the schema.
func New(cfg config.PostgresConfig) (*Store, error) {
	dsn := fmt.Sprintf(`host=%s port=%s user=%s password=%s dbname=%s sslmode=disable`,
		cfg.Host,
		cfg.Port,
		cfg.Username,
		cfg.Password,
		cfg.Database,
	)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql interface: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to validate connection: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)

	s := &Store{Backend: gormstore.New(db)}
	if err := s.Init(); err != nil {
		return nil, err
	}
	return s, nil
}
