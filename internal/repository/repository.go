package repository

import (
	"time"

	"github.com/taskflow-dev/taskflow-api/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a non-deleted user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a non-deleted user by normalized email
	FindByEmail(email string) (*models.User, error)
}

// ProjectRepository defines the interface for project data access.
// All reads and mutations are scoped to the owning user and exclude
// soft-deleted rows; an ownership miss surfaces as gorm.ErrRecordNotFound.
type ProjectRepository interface {
	// Create creates a new project
	Create(project *models.Project) error

	// FindOwned finds a non-deleted project owned by the user
	FindOwned(id, userID uint64) (*models.Project, error)

	// ListByOwner lists non-deleted projects owned by the user, newest
	// first, each annotated with its live non-deleted task count
	ListByOwner(userID uint64) ([]models.Project, error)

	// UpdateOwned overwrites name/description of an owned project
	UpdateOwned(id, userID uint64, name, description string) error

	// SoftDeleteCascade marks an owned project and all of its non-deleted
	// tasks as deleted within a single transaction
	SoftDeleteCascade(id, userID uint64, now time.Time) error
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindOwned finds a non-deleted task owned by the user
	FindOwned(id, userID uint64) (*models.Task, error)

	// ListByProject lists non-deleted tasks of a project ordered by
	// ascending position, ties broken by newest creation time
	ListByProject(projectID uint64) ([]models.Task, error)

	// MaxPosition returns the highest position in a project, including
	// soft-deleted tasks, or 0 when the project has none
	MaxPosition(projectID uint64) (int64, error)

	// Update persists a modified task
	Update(task *models.Task) error

	// SoftDelete marks an owned non-deleted task as deleted
	SoftDelete(id, userID uint64, now time.Time) error
}

// ActivityRepository defines the interface for the append-only audit trail.
// The activity recorder is the only writer.
type ActivityRepository interface {
	// CreateUserActivity appends a user activity row
	CreateUserActivity(activity *models.UserActivity) error

	// CreateTaskEvent appends a task event row
	CreateTaskEvent(event *models.TaskEvent) error
}
