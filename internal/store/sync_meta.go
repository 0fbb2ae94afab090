package store

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/satchelhq/satchel/internal/models"
)

// GetSyncMeta retrieves a sync metadata value.
func (s *Store) GetSyncMeta(key string) (string, error) {
	var meta models.SyncMeta
	err := s.First(&meta, "key = ?", key).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", nil
		}
		return "", err
	}
	return meta.Value, nil
}

// SetSyncMeta sets a sync metadata value.
func (s *Store) SetSyncMeta(key, value string) error {
	meta := models.SyncMeta{Key: key, Value: value}
	return s.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&meta).Error
}

// GetAllSyncMeta retrieves all sync metadata.
func (s *Store) GetAllSyncMeta() (map[string]string, error) {
	var metas []models.SyncMeta
	if err := s.Find(&metas).Error; err != nil {
		return nil, err
	}

	result := make(map[string]string)
	for _, meta := range metas {
		result[meta.Key] = meta.Value
	}
	return result, nil
}
