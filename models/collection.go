package models

import "gorm.io/gorm"

const (
	StatusPrivate = "private"
	StatusPublic  = "public"
)

// Collection represents a named, ownable set of items with a
// visibility status. CreatorUsername and CreatorDisplayName are
// denormalized from the owning user so that public listings do not
// need a join.
type Collection struct {
	gorm.Model
	Name               string `gorm:"not null;size:255" json:"name"`
	Description        string `gorm:"size:5000" json:"description"`
	Category           string `gorm:"size:100" json:"category"`
	Status             string `gorm:"not null;default:private;size:20" json:"status"`
	UserID             uint   `gorm:"not null;index" json:"user_id"`
	User               User   `gorm:"foreignKey:UserID" json:"-"`
	CreatorUsername    string `gorm:"size:100" json:"creator_username"`
	CreatorDisplayName string `gorm:"size:255" json:"creator_display_name"`

	Items []Item `gorm:"foreignKey:CollectionID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}
