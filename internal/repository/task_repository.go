package repository

import (
	"time"

	"github.com/taskflow-dev/taskflow-api/internal/database"
	"github.com/taskflow-dev/taskflow-api/internal/models"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindOwned finds a non-deleted task owned by the user
func (r *GormTaskRepository) FindOwned(id, userID uint64) (*models.Task, error) {
	var task models.Task
	err := r.db.
		Scopes(database.Active, database.OwnedBy(userID)).
		First(&task, id).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// ListByProject lists non-deleted tasks ordered by ascending position,
// ties broken by newest creation time.
func (r *GormTaskRepository) ListByProject(projectID uint64) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.
		Scopes(database.Active).
		Where("project_id = ?", projectID).
		Order("position ASC, created_at DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// MaxPosition returns the highest position in a project. Soft-deleted tasks
// are included on purpose: reusing a deleted task's slot would break the
// sparse ordering for rows created before the deletion.
func (r *GormTaskRepository) MaxPosition(projectID uint64) (int64, error) {
	var maxPosition int64
	err := r.db.Model(&models.Task{}).
		Where("project_id = ?", projectID).
		Select("COALESCE(MAX(position), 0)").
		Scan(&maxPosition).Error
	if err != nil {
		return 0, err
	}
	return maxPosition, nil
}

// Update persists a modified task
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Save(task).Error
}

// SoftDelete marks an owned, non-deleted task as deleted. Returns
// gorm.ErrRecordNotFound when no matching row exists.
func (r *GormTaskRepository) SoftDelete(id, userID uint64, now time.Time) error {
	result := r.db.Model(&models.Task{}).
		Where("id = ?", id).
		Scopes(database.Active, database.OwnedBy(userID)).
		Updates(map[string]interface{}{
			"is_deleted": true,
			"deleted_at": now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
