package storage

import "time"

// GroupConfig is the announcement configured for a group chat
type GroupConfig struct {
	GroupID   int64 `gorm:"primaryKey;autoIncrement:false"`
	Title     string
	Content   string
	Kind      string `gorm:"size:32"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
