package store

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/satchelhq/satchel/internal/models"
)

// PutMessage creates or replaces a message by ID. Temporary messages are
// UI-only notices and are never persisted.
func (s *Store) PutMessage(msg *models.Message) error {
	if msg.Temporary {
		return fmt.Errorf("message %s is temporary and cannot be persisted", msg.ID)
	}
	msg.StoredAt = time.Now()
	return s.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"conversation_key", "role", "body", "sent_at", "synced", "stored_at",
		}),
	}).Create(msg).Error
}

// PutMessages stores a batch of messages in one transaction, skipping
// temporary ones.
func (s *Store) PutMessages(msgs []models.Message) error {
	return s.Transaction(func(tx *Store) error {
		for i := range msgs {
			if msgs[i].Temporary {
				continue
			}
			if err := tx.PutMessage(&msgs[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetMessage retrieves a message by ID, or nil if absent.
func (s *Store) GetMessage(id string) (*models.Message, error) {
	var msg models.Message
	err := s.First(&msg, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &msg, nil
}

// GetMessagesByConversation returns all messages for a conversation in
// timestamp order. Display order is imposed here, at the read site, not by
// storage order.
func (s *Store) GetMessagesByConversation(conversationKey string) ([]models.Message, error) {
	var msgs []models.Message
	err := s.Where("conversation_key = ?", conversationKey).
		Order("sent_at ASC").
		Find(&msgs).Error
	return msgs, err
}

// MarkMessageSynced flips a self message to synced after the server has
// confirmed its delivery.
func (s *Store) MarkMessageSynced(id string) error {
	return s.Model(&models.Message{}).
		Where("id = ?", id).
		Update("synced", true).Error
}
