package models

import "time"

// Assessment represents a quiz within a course.
type Assessment struct {
	ID       string `gorm:"primaryKey;size:64" json:"id"`
	CourseID string `gorm:"size:64;index" json:"course_id"`

	Name  string `gorm:"size:255" json:"name"`
	Intro string `gorm:"type:text" json:"intro"`

	// TimeLimitMinutes is nil when the quiz has no time limit.
	TimeLimitMinutes *int `json:"time_limit_minutes"`
	MaxAttempts      int  `gorm:"default:0" json:"max_attempts"` // 0 = unlimited

	// Raw scheduling fields from the server. Availability is always
	// recomputed from these at read time, never stored.
	OpenAt  *time.Time `json:"open_at"`
	CloseAt *time.Time `json:"close_at"`
	Visible bool       `gorm:"default:true" json:"visible"`

	Completed bool      `gorm:"default:false" json:"completed"`
	CachedAt  time.Time `json:"cached_at"`
}

// TableName specifies the table name for GORM.
func (Assessment) TableName() string {
	return "assessments"
}

// Available reports whether the assessment can be attempted at the given
// time. Derived from the raw open/close window and the visibility flag so
// that a stale cache row still yields a correct answer.
func (a *Assessment) Available(now time.Time) bool {
	if !a.Visible {
		return false
	}
	if a.OpenAt != nil && now.Before(*a.OpenAt) {
		return false
	}
	if a.CloseAt != nil && now.After(*a.CloseAt) {
		return false
	}
	return true
}
