package models

import (
	"time"
)

// Task event types. Fine-grained, task-centric field transitions.
const (
	EventTaskCreated     = "TASK_CREATED"
	EventTaskDeleted     = "TASK_DELETED"
	EventStatusChanged   = "STATUS_CHANGED"
	EventPriorityChanged = "PRIORITY_CHANGED"
)

// TaskEvent is an append-only record of a single task field transition.
// Independent of UserActivity; both may be written for the same change.
type TaskEvent struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	TaskID    uint64    `gorm:"not null;index:idx_task_events_task_id" json:"task_id"`
	Type      string    `gorm:"type:varchar(50);not null" json:"type"`
	OldValue  string    `gorm:"type:varchar(255)" json:"old_value"`
	NewValue  string    `gorm:"type:varchar(255)" json:"new_value"`
	CreatedAt time.Time `json:"created_at"`
}
