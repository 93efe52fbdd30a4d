package models

import "gorm.io/gorm"

// NameList is a named ordered list of strings owned by a user.
type NameList struct {
	gorm.Model
	Name   string     `gorm:"not null;size:255" json:"name"`
	Names  StringList `gorm:"type:json;not null" json:"names"`
	UserID uint       `gorm:"not null;index" json:"user_id"`
	User   User       `gorm:"foreignKey:UserID" json:"-"`
}
