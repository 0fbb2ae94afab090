// Package models defines the record types Satchel keeps in its local store.
package models

import "time"

// Course represents a course as reported by the remote server.
// Courses are cache entries: the client never mutates them, it only
// replaces them wholesale on refresh.
type Course struct {
	ID            string `gorm:"primaryKey;size:64" json:"id"`
	Name          string `gorm:"size:255" json:"name"`
	Summary       string `gorm:"type:text" json:"summary"`
	Visible       bool   `gorm:"default:true" json:"visible"`
	EnrolledCount int    `gorm:"default:0" json:"enrolled_count"`

	CachedAt time.Time `json:"cached_at"`
}

// TableName specifies the table name for GORM.
func (Course) TableName() string {
	return "courses"
}
