package models

import "time"

// User is an account owner. Everything else in the system (clients,
// projects, invoices) hangs off a user id.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Email    string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password string `gorm:"size:255;not null" json:"-"` // bcrypt hash
	Role     string `gorm:"size:20;not null;default:'user'" json:"role"`
}

// Ownable is implemented by resources that belong to a single user.
// Every read/update/delete on an Ownable must be filtered by user id.
type Ownable interface {
	GetUserID() uint
}
