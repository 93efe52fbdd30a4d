package models

import "gorm.io/gorm"

// Feedback is a free-text message submitted from the frontend,
// optionally with image attachments and an authenticated user.
type Feedback struct {
	gorm.Model
	Message    string     `gorm:"not null" json:"message"`
	PageURL    string     `gorm:"size:2000" json:"page_url"`
	ImagePaths StringList `gorm:"type:json" json:"image_paths"`
	UserID     *uint      `gorm:"index" json:"user_id"`
}
