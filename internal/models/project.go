package models

import (
	"time"
)

type Project struct {
	ID          uint64     `gorm:"primarykey" json:"id"`
	UserID      uint64     `gorm:"not null;index:idx_projects_user_id" json:"user_id"`
	Name        string     `gorm:"type:varchar(255);not null" json:"name"`
	Description string     `gorm:"type:text" json:"description"`
	IsDeleted   bool       `gorm:"not null;default:false" json:"-"`
	DeletedAt   *time.Time `json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// TaskCount is the number of non-deleted tasks in the project. It is
	// populated by a subquery when listing projects and never persisted.
	TaskCount int64 `gorm:"->;-:migration" json:"task_count"`

	// Relations
	User  User   `gorm:"foreignKey:UserID" json:"-"`
	Tasks []Task `gorm:"foreignKey:ProjectID" json:"-"`
}
