package models

import "time"

// MessageRole identifies who authored a message.
type MessageRole string

const (
	RoleCounterpart MessageRole = "counterpart"
	RoleSelf        MessageRole = "self"
	RoleSystem      MessageRole = "system"
)

// Message is one entry in a conversation. A self message with Synced=false
// is an optimistic local echo of a send that the server has not confirmed;
// it always has a matching unsynced send-message operation in the ledger.
type Message struct {
	ID              string      `gorm:"primaryKey;size:64" json:"id"`
	ConversationKey string      `gorm:"size:128;index" json:"conversation_key"`
	Role            MessageRole `gorm:"size:16" json:"role"`
	Body            string      `gorm:"type:text" json:"body"`
	SentAt          time.Time   `gorm:"index" json:"sent_at"`

	// Synced is meaningful only for Role=self.
	Synced bool `gorm:"default:false" json:"synced"`

	// Temporary marks an ephemeral UI-only notice. The store refuses to
	// persist temporary messages.
	Temporary bool `gorm:"-" json:"temporary,omitempty"`

	StoredAt time.Time `json:"stored_at"`
}

// TableName specifies the table name for GORM.
func (Message) TableName() string {
	return "messages"
}
