package models

import "time"

// CompletionRecord marks one completed run-through of a collection by
// a user. Records are deleted before their collection so no orphan
// rows remain.
type CompletionRecord struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	CollectionID uint       `gorm:"not null;index" json:"collection_id"`
	Collection   Collection `gorm:"foreignKey:CollectionID" json:"-"`
	UserID       uint       `gorm:"not null;index" json:"user_id"`
	User         User       `gorm:"foreignKey:UserID" json:"-"`
	CompletedAt  time.Time  `json:"completed_at"`
}
