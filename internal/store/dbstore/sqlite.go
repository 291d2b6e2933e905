// Package dbstore provides a SQLite-backed implementation of store.DefaultsStore.
package dbstore

import (
	"errors"
	"fmt"

	"github.com/yiblet/clippocket/internal/store"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// SQLiteStore is a SQLite-backed implementation of store.DefaultsStore
type SQLiteStore struct {
	db     *gorm.DB
	dbPath string
}

// NewSQLiteStore opens (or creates) the defaults database at dbPath and
// migrates its schema.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&DefaultsEntryModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.dbPath
}

// Get retrieves a value by key
func (s *SQLiteStore) Get(key string) ([]byte, error) {
	var model DefaultsEntryModel
	if err := s.db.First(&model, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", store.ErrKeyNotFound, key)
		}
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return model.Value, nil
}

// Set stores a value (upsert)
func (s *SQLiteStore) Set(key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	model := &DefaultsEntryModel{
		Key:   key,
		Value: value,
	}

	// Upsert: update if exists, insert if not
	result := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(model)

	if result.Error != nil {
		return fmt.Errorf("failed to set %s: %w", key, result.Error)
	}

	return nil
}

// Keys returns all stored keys in ascending order
func (s *SQLiteStore) Keys() ([]string, error) {
	var keys []string
	if err := s.db.Model(&DefaultsEntryModel{}).Order("key ASC").Pluck("key", &keys).Error; err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	return keys, nil
}

// Delete removes a key. Missing keys are ignored.
func (s *SQLiteStore) Delete(key string) error {
	if err := s.db.Delete(&DefaultsEntryModel{}, "key = ?", key).Error; err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
