package repository

import (
	"github.com/taskflow-dev/taskflow-api/internal/models"
	"gorm.io/gorm"
)

// GormActivityRepository is a GORM implementation of ActivityRepository
type GormActivityRepository struct {
	db *gorm.DB
}

// NewActivityRepository creates a new ActivityRepository
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &GormActivityRepository{db: db}
}

// CreateUserActivity appends a user activity row
func (r *GormActivityRepository) CreateUserActivity(activity *models.UserActivity) error {
	return r.db.Create(activity).Error
}

// CreateTaskEvent appends a task event row
func (r *GormActivityRepository) CreateTaskEvent(event *models.TaskEvent) error {
	return r.db.Create(event).Error
}
