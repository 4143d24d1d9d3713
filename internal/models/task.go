package models

import (
	"time"
)

// Task represents a todo item owned by a single user
type Task struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID       string     `gorm:"index;not null;default:''" json:"user_id"` // empty for orphaned tasks
	Title        string     `gorm:"not null" json:"title"`
	Description  *string    `json:"description"`
	Due          *time.Time `json:"due"`
	SubtaskCount int        `gorm:"default:0" json:"subtask_count"`
	ListName     *string    `gorm:"index" json:"list_name"`
	TagColor     *string    `json:"tag_color"` // #RRGGBB
	Completed    bool       `gorm:"default:false" json:"completed"`
	CompletedAt  *time.Time `json:"completed_at"`
}

// Orphaned reports whether the task was created without an active session
func (t Task) Orphaned() bool {
	return t.UserID == ""
}

// ShortID returns the id prefix shown in listings
func (t Task) ShortID() string {
	if len(t.ID) > 8 {
		return t.ID[:8]
	}
	return t.ID
}

// ListSummary is a per-list task count
type ListSummary struct {
	Name  string `json:"name"`
	Total int64  `json:"total"`
	Open  int64  `json:"open"`
}
