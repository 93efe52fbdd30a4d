package models

import "gorm.io/gorm"

// Item belongs to exactly one Collection and is removed with it by the
// foreign-key cascade.
type Item struct {
	gorm.Model
	Name         string `gorm:"not null;size:255" json:"name"`
	Count        *int   `gorm:"default:null" json:"count,omitempty"`
	CollectionID uint   `gorm:"not null;index" json:"collection_id"`
}
