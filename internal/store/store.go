// Package store provides the durable keyed record store backing Satchel.
// It is a GORM layer over the pure-Go SQLite driver; every collection is
// keyed by a stable identifier and all writes are upserts.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/satchelhq/satchel/internal/models"
)

// ErrStorageUnavailable indicates the underlying medium could not be
// opened or written. Reads should degrade to empty results; writes must
// surface this to the caller rather than silently dropping the action.
var ErrStorageUnavailable = errors.New("storage unavailable")

// Store wraps the GORM database connection with Satchel-specific operations.
type Store struct {
	*gorm.DB
	path string
}

// Config holds database configuration options.
type Config struct {
	Path        string
	Debug       bool
	MaxIdleConn int
	MaxOpenConn int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(path string) Config {
	return Config{
		Path:        path,
		Debug:       false,
		MaxIdleConn: 1,
		MaxOpenConn: 1,
	}
}

// Open opens the database and runs migrations. Schema upgrades are
// additive only: AutoMigrate adds collections and indexes but existing
// keyed data is never rewritten.
func Open(cfg Config) (*Store, error) {
	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create store directory: %w: %w", ErrStorageUnavailable, err)
	}

	logLevel := logger.Silent
	if cfg.Debug {
		logLevel = logger.Info
	}

	// DELETE journal mode for simpler transaction handling (WAL mode has
	// visibility issues with the pure-Go SQLite driver).
	dsn := fmt.Sprintf("%s?_pragma=journal_mode(DELETE)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)", cfg.Path)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logLevel),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w: %w", ErrStorageUnavailable, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConn)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConn)
	sqlDB.SetConnMaxLifetime(time.Hour)

	wrapped := &Store{DB: db, path: cfg.Path}

	if err := wrapped.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	if err := wrapped.seedSyncMeta(); err != nil {
		return nil, fmt.Errorf("seed sync meta: %w", err)
	}

	return wrapped, nil
}

// migrate runs GORM auto-migrations for all record collections.
func (s *Store) migrate() error {
	return s.AutoMigrate(
		&models.Course{},
		&models.Assessment{},
		&models.AssessmentDetail{},
		&models.Message{},
		&models.PendingOperation{},
		&models.CounterpartContact{},
		&models.SyncMeta{},
	)
}

// seedSyncMeta inserts default sync metadata if not present.
func (s *Store) seedSyncMeta() error {
	defaults := []models.SyncMeta{
		{Key: models.SyncMetaLastSync, Value: ""},
		{Key: models.SyncMetaSchemaVersion, Value: "1"},
	}

	for _, meta := range defaults {
		result := s.Where("key = ?", meta.Key).FirstOrCreate(&meta)
		if result.Error != nil {
			return result.Error
		}
	}

	return nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *Store) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Transaction executes a function within a database transaction. The
// callback receives a *Store wrapper that uses the transaction. This is
// the mutual-exclusion boundary for multi-step read-modify-write against
// a single collection.
func (s *Store) Transaction(fc func(tx *Store) error) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		wrappedTx := &Store{DB: tx, path: s.path}
		return fc(wrappedTx)
	})
}

// Stats holds per-collection record counts for diagnostics.
type Stats struct {
	Courses           int64     `json:"courses"`
	Assessments       int64     `json:"assessments"`
	AssessmentDetails int64     `json:"assessment_details"`
	Messages          int64     `json:"messages"`
	PendingOperations int64     `json:"pending_operations"`
	UnsyncedOps       int64     `json:"unsynced_operations"`
	Contacts          int64     `json:"contacts"`
	StoreSizeBytes    int64     `json:"store_size_bytes"`
	CollectedAt       time.Time `json:"collected_at"`
}

// GetStats returns per-collection counts and the database file size.
func (s *Store) GetStats() (*Stats, error) {
	var stats Stats

	counts := []struct {
		model any
		dst   *int64
	}{
		{&models.Course{}, &stats.Courses},
		{&models.Assessment{}, &stats.Assessments},
		{&models.AssessmentDetail{}, &stats.AssessmentDetails},
		{&models.Message{}, &stats.Messages},
		{&models.PendingOperation{}, &stats.PendingOperations},
		{&models.CounterpartContact{}, &stats.Contacts},
	}
	for _, c := range counts {
		if err := s.Model(c.model).Count(c.dst).Error; err != nil {
			return nil, fmt.Errorf("count records: %w", err)
		}
	}

	if err := s.Model(&models.PendingOperation{}).
		Where("synced = ?", false).
		Count(&stats.UnsyncedOps).Error; err != nil {
		return nil, fmt.Errorf("count unsynced operations: %w", err)
	}

	if info, err := os.Stat(s.path); err == nil {
		stats.StoreSizeBytes = info.Size()
	}

	stats.CollectedAt = time.Now()

	return &stats, nil
}

// ClearAll wipes every collection, including sync metadata. Used on
// sign-out. The seeded metadata rows are restored so the store remains
// usable afterward.
func (s *Store) ClearAll() error {
	err := s.Transaction(func(tx *Store) error {
		tables := []any{
			&models.Course{},
			&models.Assessment{},
			&models.AssessmentDetail{},
			&models.Message{},
			&models.PendingOperation{},
			&models.CounterpartContact{},
			&models.SyncMeta{},
		}
		for _, table := range tables {
			if err := tx.Where("1 = 1").Delete(table).Error; err != nil {
				return fmt.Errorf("clear collection: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	return s.seedSyncMeta()
}
