package reconcile

import (
	"sort"

	"github.com/satchelhq/satchel/internal/models"
)

// MergeMessages combines local and remote history for one conversation:
// union by ID, exact duplicates dropped, sorted by timestamp ascending.
// A local message absent from the remote set is kept, since it may still
// be in flight. When both sides carry the same ID the remote copy wins.
func MergeMessages(local, remote []models.Message) []models.Message {
	byID := make(map[string]models.Message, len(local)+len(remote))
	for _, msg := range local {
		byID[msg.ID] = msg
	}
	for _, msg := range remote {
		byID[msg.ID] = msg
	}

	merged := make([]models.Message, 0, len(byID))
	for _, msg := range byID {
		merged = append(merged, msg)
	}

	sort.Slice(merged, func(i, j int) bool {
		if merged[i].SentAt.Equal(merged[j].SentAt) {
			return merged[i].ID < merged[j].ID
		}
		return merged[i].SentAt.Before(merged[j].SentAt)
	})
	return merged
}
