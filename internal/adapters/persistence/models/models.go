package models

import (
	"time"

	"gorm.io/gorm"
)

// SessionEntry represents session_entries table.
// One row per persisted client key (authToken, currentUser, ...).
type SessionEntry struct {
	EntryKey   string    `gorm:"column:entry_key;primaryKey;size:64" json:"key"`
	EntryValue string    `gorm:"column:entry_value;type:text" json:"value"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (SessionEntry) TableName() string {
	return "session_entries"
}

// AutoMigrate creates the session table if it does not exist
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&SessionEntry{})
}
