package store

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/satchelhq/satchel/internal/models"
)

// UpsertAssessment creates or replaces an assessment by ID.
func (s *Store) UpsertAssessment(a *models.Assessment) error {
	a.CachedAt = time.Now()
	return s.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"course_id", "name", "intro", "time_limit_minutes", "max_attempts",
			"open_at", "close_at", "visible", "completed", "cached_at",
		}),
	}).Create(a).Error
}

// UpsertAssessments replaces a batch of assessments in one transaction.
func (s *Store) UpsertAssessments(assessments []models.Assessment) error {
	return s.Transaction(func(tx *Store) error {
		for i := range assessments {
			if err := tx.UpsertAssessment(&assessments[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetAssessment retrieves an assessment by ID, or nil if absent.
func (s *Store) GetAssessment(id string) (*models.Assessment, error) {
	var a models.Assessment
	err := s.First(&a, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// GetAssessmentsByCourse returns all cached assessments for a course,
// using the secondary index on course_id.
func (s *Store) GetAssessmentsByCourse(courseID string) ([]models.Assessment, error) {
	var assessments []models.Assessment
	err := s.Where("course_id = ?", courseID).Order("name ASC").Find(&assessments).Error
	return assessments, err
}

// MarkAssessmentCompleted flips the completion flag for an assessment.
func (s *Store) MarkAssessmentCompleted(id string) error {
	return s.Model(&models.Assessment{}).
		Where("id = ?", id).
		Update("completed", true).Error
}

// PutAssessmentDetail stores a complete question set for an assessment.
// Details are only ever written as a complete unit; a detail with no
// questions is rejected rather than stored partially.
func (s *Store) PutAssessmentDetail(id string, questions []models.Question) error {
	if len(questions) == 0 {
		return fmt.Errorf("assessment detail %s: refusing to store empty question set", id)
	}

	detail := models.AssessmentDetail{ID: id, CachedAt: time.Now()}
	if err := detail.SetQuestions(questions); err != nil {
		return err
	}

	return s.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"questions_json", "cached_at"}),
	}).Create(&detail).Error
}

// GetAssessmentDetail retrieves the cached question set for an assessment,
// or nil if it was never fetched.
func (s *Store) GetAssessmentDetail(id string) (*models.AssessmentDetail, error) {
	var detail models.AssessmentDetail
	err := s.First(&detail, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &detail, nil
}
