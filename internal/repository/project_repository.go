package repository

import (
	"time"

	"github.com/taskflow-dev/taskflow-api/internal/database"
	"github.com/taskflow-dev/taskflow-api/internal/models"
	"gorm.io/gorm"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// Create creates a new project
func (r *GormProjectRepository) Create(project *models.Project) error {
	return r.db.Create(project).Error
}

// FindOwned finds a non-deleted project owned by the user
func (r *GormProjectRepository) FindOwned(id, userID uint64) (*models.Project, error) {
	var project models.Project
	err := r.db.
		Scopes(database.Active, database.OwnedBy(userID)).
		First(&project, id).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// ListByOwner lists non-deleted projects owned by the user, newest first,
// each annotated with its count of non-deleted tasks.
func (r *GormProjectRepository) ListByOwner(userID uint64) ([]models.Project, error) {
	var projects []models.Project
	err := r.db.Model(&models.Project{}).
		Select("projects.*, (?) AS task_count",
			r.db.Model(&models.Task{}).
				Select("COUNT(*)").
				Where("tasks.project_id = projects.id AND tasks.is_deleted = ?", false),
		).
		Scopes(database.Active, database.OwnedBy(userID)).
		Order("created_at DESC").
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

// UpdateOwned overwrites name/description of an owned, non-deleted project.
// Returns gorm.ErrRecordNotFound when no matching row exists, so absent and
// unowned projects are indistinguishable to the caller.
func (r *GormProjectRepository) UpdateOwned(id, userID uint64, name, description string) error {
	result := r.db.Model(&models.Project{}).
		Where("id = ?", id).
		Scopes(database.Active, database.OwnedBy(userID)).
		Updates(map[string]interface{}{
			"name":        name,
			"description": description,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SoftDeleteCascade marks a project and all of its non-deleted tasks as
// deleted inside one transaction. If the project row is missing (absent,
// unowned, or already deleted) nothing is changed.
func (r *GormProjectRepository) SoftDeleteCascade(id, userID uint64, now time.Time) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Project{}).
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

		return tx.Model(&models.Task{}).
			Where("project_id = ?", id).
			Scopes(database.Active).
			Updates(map[string]interface{}{
				"is_deleted": true,
				"deleted_at": now,
			}).Error
	})
}
