package models

import "gorm.io/gorm"

const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
)

// User represents a user in the system. Auth0ID is empty for users
// registered through the local username/password flow, and
// HashedPassword is empty for users provisioned from Auth0 tokens.
type User struct {
	gorm.Model
	Auth0ID        string `gorm:"index;size:100" json:"auth0_id,omitempty"`
	Username       string `gorm:"uniqueIndex;not null;size:100" json:"username"`
	Email          string `gorm:"size:255" json:"email,omitempty"`
	DisplayName    string `gorm:"size:255" json:"display_name"`
	Role           string `gorm:"not null;default:student;size:20" json:"role"`
	HashedPassword string `gorm:"size:255" json:"-"`
}

// ValidRole reports whether role is one of the accepted role values.
func ValidRole(role string) bool {
	return role == RoleStudent || role == RoleTeacher
}
