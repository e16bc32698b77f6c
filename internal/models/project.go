package models

import "time"

// ProjectStatus represents the workflow state of a project.
type ProjectStatus string

const (
	ProjectStatusTodo       ProjectStatus = "todo"
	ProjectStatusInProgress ProjectStatus = "in_progress"
	ProjectStatusCompleted  ProjectStatus = "completed"
)

// ValidProjectStatus reports whether s belongs to the closed status set.
func ValidProjectStatus(s ProjectStatus) bool {
	switch s {
	case ProjectStatusTodo, ProjectStatusInProgress, ProjectStatusCompleted:
		return true
	}
	return false
}

// Project is a unit of work done for a client. No transition rules are
// enforced on Status.
// Implements the Ownable interface for ownership-based authorization.
type Project struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// UserID is the owner of this project (for multi-tenant isolation)
	UserID uint `gorm:"index;not null" json:"user_id"`
	User   User `gorm:"foreignKey:UserID" json:"-"`

	Title       string        `gorm:"size:255;not null" json:"title"`
	Description string        `gorm:"type:text" json:"description,omitempty"`
	Status      ProjectStatus `gorm:"size:20;not null;default:'todo'" json:"status"`

	ClientID uint    `gorm:"index;not null" json:"client_id"`
	Client   *Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`
}

// GetUserID implements the Ownable interface for authorization.
func (p *Project) GetUserID() uint {
	return p.UserID
}
