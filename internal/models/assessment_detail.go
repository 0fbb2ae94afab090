package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Question types. Single choice is currently the only variant the remote
// server delivers.
const (
	QuestionTypeSingleChoice = "single_choice"
)

// Option is one selectable answer for a question.
type Option struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Question is a single question inside an assessment.
type Question struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Type    string   `json:"type"`
	Options []Option `json:"options"`
}

// AssessmentDetail holds the complete question set for an assessment,
// keyed by the assessment's own ID. It is fetched lazily when an attempt
// begins and is only ever stored as a complete unit: offline attempts need
// the full question set up front.
type AssessmentDetail struct {
	ID string `gorm:"primaryKey;size:64" json:"id"`

	// QuestionsJSON is the serialized question sequence. Use Questions()
	// and SetQuestions() instead of touching this directly.
	QuestionsJSON string `gorm:"type:text" json:"-"`

	CachedAt time.Time `json:"cached_at"`
}

// TableName specifies the table name for GORM.
func (AssessmentDetail) TableName() string {
	return "assessment_details"
}

// Questions decodes the stored question sequence.
func (d *AssessmentDetail) Questions() ([]Question, error) {
	if d.QuestionsJSON == "" {
		return nil, nil
	}
	var qs []Question
	if err := json.Unmarshal([]byte(d.QuestionsJSON), &qs); err != nil {
		return nil, fmt.Errorf("decode questions for %s: %w", d.ID, err)
	}
	return qs, nil
}

// SetQuestions encodes and stores the question sequence.
func (d *AssessmentDetail) SetQuestions(qs []Question) error {
	data, err := json.Marshal(qs)
	if err != nil {
		return fmt.Errorf("encode questions for %s: %w", d.ID, err)
	}
	d.QuestionsJSON = string(data)
	return nil
}
