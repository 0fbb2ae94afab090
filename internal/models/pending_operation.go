package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Operation kinds recorded in the ledger.
const (
	OpSubmitAttempt = "submit-attempt"
	OpSendMessage   = "send-message"
)

// PendingOperation is the write-ahead ledger entry for an action performed
// while the server was unreachable. Entries are replayed in creation order
// against the remote gateway once connectivity returns; an entry is marked
// synced immediately after its single successful dispatch and is never
// dispatched again.
type PendingOperation struct {
	ID   string `gorm:"primaryKey;size:64" json:"id"`
	Kind string `gorm:"size:32" json:"kind"`

	// Payload holds the full remote-call arguments, serialized.
	Payload string `gorm:"type:text" json:"payload"`

	// TargetKey is the ordering domain for replay: the conversation key for
	// send-message, the assessment ID for submit-attempt. Persisted at
	// enqueue time so grouping survives payload-schema changes.
	TargetKey string `gorm:"size:128;index" json:"target_key"`

	Synced    bool       `gorm:"default:false;index" json:"synced"`
	CreatedAt time.Time  `json:"created_at"`
	SyncedAt  *time.Time `json:"synced_at"`
}

// TableName specifies the table name for GORM.
func (PendingOperation) TableName() string {
	return "pending_operations"
}

// Answer is one selected option for one question.
type Answer struct {
	OptionIndex int    `json:"optionIndex"`
	OptionText  string `json:"optionText"`
}

// AttemptPayload is the payload for a submit-attempt operation.
type AttemptPayload struct {
	AssessmentID string            `json:"assessmentId"`
	Answers      map[string]Answer `json:"answers"`
}

// MessagePayload is the payload for a send-message operation. MessageID
// links the operation back to the optimistic local Message row.
type MessagePayload struct {
	ConversationKey string `json:"conversationKey"`
	Body            string `json:"body"`
	MessageID       string `json:"messageId"`
}

// DecodeAttempt decodes the payload of a submit-attempt operation.
func (op *PendingOperation) DecodeAttempt() (*AttemptPayload, error) {
	if op.Kind != OpSubmitAttempt {
		return nil, fmt.Errorf("operation %s has kind %q, not %q", op.ID, op.Kind, OpSubmitAttempt)
	}
	var p AttemptPayload
	if err := json.Unmarshal([]byte(op.Payload), &p); err != nil {
		return nil, fmt.Errorf("decode attempt payload %s: %w", op.ID, err)
	}
	return &p, nil
}

// DecodeMessage decodes the payload of a send-message operation.
func (op *PendingOperation) DecodeMessage() (*MessagePayload, error) {
	if op.Kind != OpSendMessage {
		return nil, fmt.Errorf("operation %s has kind %q, not %q", op.ID, op.Kind, OpSendMessage)
	}
	var p MessagePayload
	if err := json.Unmarshal([]byte(op.Payload), &p); err != nil {
		return nil, fmt.Errorf("decode message payload %s: %w", op.ID, err)
	}
	return &p, nil
}
