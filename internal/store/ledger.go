package store

import (
	"time"

	"gorm.io/gorm"

	"github.com/satchelhq/satchel/internal/models"
)

// AppendOperation durably records a pending operation. This is the
// durability boundary: once AppendOperation returns nil the user's action
// survives restarts until it is confirmed by the server.
func (s *Store) AppendOperation(op *models.PendingOperation) error {
	if op.CreatedAt.IsZero() {
		op.CreatedAt = time.Now()
	}
	return s.Create(op).Error
}

// GetOperation retrieves a ledger entry by ID, or nil if absent.
func (s *Store) GetOperation(id string) (*models.PendingOperation, error) {
	var op models.PendingOperation
	err := s.First(&op, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &op, nil
}

// ListUnsyncedOperations returns all unconfirmed ledger entries in
// creation order, using the secondary index on the synced flag. Creation
// order is the replay order: it preserves the user's real-time ordering of
// actions within a conversation.
func (s *Store) ListUnsyncedOperations() ([]models.PendingOperation, error) {
	var ops []models.PendingOperation
	err := s.Where("synced = ?", false).
		Order("created_at ASC").
		Find(&ops).Error
	return ops, err
}

// ListOperationsByTarget returns ledger entries for one target key in
// creation order.
func (s *Store) ListOperationsByTarget(targetKey string) ([]models.PendingOperation, error) {
	var ops []models.PendingOperation
	err := s.Where("target_key = ?", targetKey).
		Order("created_at ASC").
		Find(&ops).Error
	return ops, err
}

// MarkOperationSynced records a confirmed dispatch. Called immediately
// after the remote call returns success, before any other work, to keep
// the crash window between remote success and local confirmation as
// narrow as possible.
func (s *Store) MarkOperationSynced(id string, syncedAt time.Time) error {
	return s.Model(&models.PendingOperation{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"synced":    true,
			"synced_at": syncedAt,
		}).Error
}

// DeleteOperation removes a ledger entry.
func (s *Store) DeleteOperation(id string) error {
	return s.Delete(&models.PendingOperation{}, "id = ?", id).Error
}
