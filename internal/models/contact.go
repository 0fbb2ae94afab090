package models

import "time"

// PlaceholderContactName is used when the default contact for a course
// cannot be resolved from enrollment data.
const PlaceholderContactName = "Course Instructor"

// CounterpartContact is the default human contact for a course, resolved
// from enrollment data. Placeholder is true when resolution failed and the
// fallback name was cached instead.
type CounterpartContact struct {
	CourseID string `gorm:"primaryKey;size:64" json:"course_id"`
	UserID   string `gorm:"size:64" json:"user_id"`
	Name     string `gorm:"size:255" json:"name"`

	Placeholder bool      `gorm:"default:false" json:"placeholder"`
	CachedAt    time.Time `json:"cached_at"`
}

// TableName specifies the table name for GORM.
func (CounterpartContact) TableName() string {
	return "counterpart_contacts"
}
