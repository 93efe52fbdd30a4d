package models

import "gorm.io/gorm"

// Sequence is a named ordered text artifact owned by a user.
type Sequence struct {
	gorm.Model
	Name        string `gorm:"not null;size:255" json:"name"`
	Description string `gorm:"size:5000" json:"description"`
	UserID      uint   `gorm:"not null;index" json:"user_id"`
	User        User   `gorm:"foreignKey:UserID" json:"-"`
}
