package entity

import "time"

// SessionSnapshot stores one encoded session under a key
type SessionSnapshot struct {
	Key       string    `gorm:"primaryKey;size:100"`
	Codec     string    `gorm:"size:20;not null"`
	Payload   []byte    `gorm:"type:bytea;not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for SessionSnapshot
func (SessionSnapshot) TableName() string {
	return "session_snapshots"
}
