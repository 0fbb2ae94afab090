package store

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/satchelhq/satchel/internal/models"
)

// UpsertContact creates or replaces the default contact for a course.
func (s *Store) UpsertContact(contact *models.CounterpartContact) error {
	contact.CachedAt = time.Now()
	return s.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "course_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"user_id", "name", "placeholder", "cached_at",
		}),
	}).Create(contact).Error
}

// GetContact retrieves the cached contact for a course, or nil if absent.
func (s *Store) GetContact(courseID string) (*models.CounterpartContact, error) {
	var contact models.CounterpartContact
	err := s.First(&contact, "course_id = ?", courseID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &contact, nil
}
