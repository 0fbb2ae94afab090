package store

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/satchelhq/satchel/internal/models"
)

// UpsertCourse creates or replaces a course by ID.
func (s *Store) UpsertCourse(course *models.Course) error {
	course.CachedAt = time.Now()
	return s.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "summary", "visible", "enrolled_count", "cached_at",
		}),
	}).Create(course).Error
}

// UpsertCourses replaces a batch of courses in one transaction.
func (s *Store) UpsertCourses(courses []models.Course) error {
	return s.Transaction(func(tx *Store) error {
		for i := range courses {
			if err := tx.UpsertCourse(&courses[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetCourse retrieves a course by ID, or nil if absent.
func (s *Store) GetCourse(id string) (*models.Course, error) {
	var course models.Course
	err := s.First(&course, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &course, nil
}

// ListCourses returns all cached courses ordered by name.
func (s *Store) ListCourses() ([]models.Course, error) {
	var courses []models.Course
	err := s.Order("name ASC").Find(&courses).Error
	return courses, err
}

// DeleteCourse removes a course from the cache.
func (s *Store) DeleteCourse(id string) error {
	return s.Delete(&models.Course{}, "id = ?", id).Error
}

// ClearCourses wipes the course collection.
func (s *Store) ClearCourses() error {
	return s.Where("1 = 1").Delete(&models.Course{}).Error
}
