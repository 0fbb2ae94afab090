package store

import (
	"fmt"
	"time"

	"github.com/satchelhq/satchel/internal/models"
)

// EvictionResult reports how many records an eviction pass removed.
type EvictionResult struct {
	Operations int64
	Messages   int64
}

// EvictOlderThan removes synced ledger entries confirmed before the cutoff
// and messages stored before the cutoff. Courses, assessments, details and
// contacts are exempt: they are small, re-fetchable, and needed for the
// next online refresh regardless of age. Unsynced ledger entries are never
// evicted.
func (s *Store) EvictOlderThan(cutoff time.Time) (*EvictionResult, error) {
	var result EvictionResult

	err := s.Transaction(func(tx *Store) error {
		ops := tx.Where("synced = ? AND synced_at < ?", true, cutoff).
			Delete(&models.PendingOperation{})
		if ops.Error != nil {
			return fmt.Errorf("evict operations: %w", ops.Error)
		}
		result.Operations = ops.RowsAffected

		msgs := tx.Where("stored_at < ?", cutoff).
			Delete(&models.Message{})
		if msgs.Error != nil {
			return fmt.Errorf("evict messages: %w", msgs.Error)
		}
		result.Messages = msgs.RowsAffected

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}
