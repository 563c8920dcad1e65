package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// User activity actions. Coarse-grained, user-centric audit tags.
const (
	ActionSignup           = "SIGNUP"
	ActionLogin            = "LOGIN"
	ActionProjectsView     = "PROJECTS_VIEW"
	ActionProjectCreate    = "PROJECT_CREATE"
	ActionProjectUpdate    = "PROJECT_UPDATE"
	ActionProjectDelete    = "PROJECT_DELETE"
	ActionProjectTasksView = "PROJECT_TASKS_VIEW"
	ActionTaskCreate       = "TASK_CREATE"
	ActionTaskUpdate       = "TASK_UPDATE"
	ActionTaskDelete       = "TASK_DELETE"
)

// Metadata is a freeform key/value bag stored as a JSON column. Known keys
// depend on the action (project_id, task_id, name, changes); unknown keys are
// preserved for forward compatibility.
type Metadata map[string]interface{}

func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *Metadata) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported metadata column type %T", value)
	}

	return json.Unmarshal(data, m)
}

// UserActivity is an append-only audit row recording a user-level action.
// Rows are only ever inserted, never updated or deleted.
type UserActivity struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	UserID    uint64    `gorm:"not null;index:idx_user_activities_user_id" json:"user_id"`
	Action    string    `gorm:"type:varchar(50);not null" json:"action"`
	Metadata  Metadata  `gorm:"type:json" json:"metadata"`
	IPAddress string    `gorm:"type:varchar(64)" json:"ip_address"`
	UserAgent string    `gorm:"type:varchar(255)" json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
}
