package models

import "time"

// SyncMeta keys.
const (
	SyncMetaLastSync      = "last_sync"
	SyncMetaSchemaVersion = "schema_version"
	SyncMetaToken         = "token"
	SyncMetaUserID        = "user_id"
	SyncMetaUserName      = "user_name"
)

// SyncMeta is a key/value row for sync bookkeeping and the stored identity.
type SyncMeta struct {
	Key       string    `gorm:"primaryKey;size:64" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (SyncMeta) TableName() string {
	return "sync_meta"
}
