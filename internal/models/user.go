package models

import (
	"time"
)

// User is an operator allowed to sign in
type User struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Username          string    `gorm:"size:60;uniqueIndex;not null" json:"username"`
	EncryptedPassword string    `gorm:"column:encrypted_password;not null" json:"-"`
	Status            string    `gorm:"size:20;not null;default:active" json:"status"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// User status constants
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// IsActive returns true if user status is active
func (u *User) IsActive() bool {
	return u.Status == StatusActive
}

// UserResponse is the public view of a user
type UserResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username}
}
