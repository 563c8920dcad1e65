package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/taskflow-dev/taskflow-api/internal/activity"
	"github.com/taskflow-dev/taskflow-api/internal/models"
	"github.com/taskflow-dev/taskflow-api/internal/repository"
)

var (
	ErrNameRequired    = errors.New("project name is required")
	ErrProjectNotFound = errors.New("project not found")
)

// ProjectService handles project business logic. Every operation is scoped
// to the owning user; a project that is absent, soft-deleted, or owned by
// someone else uniformly surfaces as ErrProjectNotFound.
type ProjectService struct {
	projectRepo repository.ProjectRepository
	recorder    activity.Sink
}

// NewProjectService creates a new ProjectService.
func NewProjectService(projectRepo repository.ProjectRepository, recorder activity.Sink) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		recorder:    recorder,
	}
}

// List returns the user's non-deleted projects, newest first, each annotated
// with its live task count.
func (s *ProjectService) List(userID uint64, meta RequestMeta) ([]models.Project, error) {
	projects, err := s.projectRepo.ListByOwner(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	s.recorder.UserActivity(activity.UserActivityEntry{
		UserID:    userID,
		Action:    models.ActionProjectsView,
		IPAddress: meta.ClientIP,
		UserAgent: meta.UserAgent,
	})

	return projects, nil
}

// CreateProjectInput represents input for creating a project.
type CreateProjectInput struct {
	UserID      uint64
	Name        string
	Description string
	Meta        RequestMeta
}

// Create creates a new project owned by the user.
func (s *ProjectService) Create(input CreateProjectInput) (*models.Project, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	project := &models.Project{
		UserID:      input.UserID,
		Name:        name,
		Description: input.Description,
	}

	if err := s.projectRepo.Create(project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	s.recorder.UserActivity(activity.UserActivityEntry{
		UserID: input.UserID,
		Action: models.ActionProjectCreate,
		Metadata: models.Metadata{
			"project_id": project.ID,
			"name":       project.Name,
		},
		IPAddress: input.Meta.ClientIP,
		UserAgent: input.Meta.UserAgent,
	})

	return project, nil
}

// UpdateProjectInput represents input for updating a project.
type UpdateProjectInput struct {
	UserID      uint64
	ProjectID   uint64
	Name        string
	Description string
	Meta        RequestMeta
}

// Update overwrites the name and description of an owned project.
func (s *ProjectService) Update(input UpdateProjectInput) (*models.Project, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	err := s.projectRepo.UpdateOwned(input.ProjectID, input.UserID, name, input.Description)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	project, err := s.projectRepo.FindOwned(input.ProjectID, input.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload project: %w", err)
	}

	s.recorder.UserActivity(activity.UserActivityEntry{
		UserID: input.UserID,
		Action: models.ActionProjectUpdate,
		Metadata: models.Metadata{
			"project_id": project.ID,
			"name":       project.Name,
		},
		IPAddress: input.Meta.ClientIP,
		UserAgent: input.Meta.UserAgent,
	})

	return project, nil
}

// SoftDelete marks an owned project and all of its non-deleted tasks as
// deleted in a single transaction. Deleting an already-deleted project
// reports ErrProjectNotFound rather than cascading twice.
func (s *ProjectService) SoftDelete(userID, projectID uint64, meta RequestMeta) error {
	project, err := s.projectRepo.FindOwned(projectID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to find project: %w", err)
	}

	if err := s.projectRepo.SoftDeleteCascade(projectID, userID, time.Now()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to delete project: %w", err)
	}

	s.recorder.UserActivity(activity.UserActivityEntry{
		UserID: userID,
		Action: models.ActionProjectDelete,
		Metadata: models.Metadata{
			"project_id": projectID,
			"name":       project.Name,
		},
		IPAddress: meta.ClientIP,
		UserAgent: meta.UserAgent,
	})

	return nil
}
