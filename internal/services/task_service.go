package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/taskflow-dev/taskflow-api/internal/activity"
	"github.com/taskflow-dev/taskflow-api/internal/constants"
	"github.com/taskflow-dev/taskflow-api/internal/models"
	"github.com/taskflow-dev/taskflow-api/internal/repository"
)

var (
	ErrTitleRequired   = errors.New("task title is required")
	ErrInvalidPriority = errors.New("invalid task priority")
	ErrInvalidStatus   = errors.New("invalid task status")
	ErrTaskNotFound    = errors.New("task not found")
)

// TaskService handles task business logic. Like projects, tasks that are
// absent, soft-deleted, or owned by another user surface as ErrTaskNotFound.
type TaskService struct {
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
	recorder    activity.Sink
}

// NewTaskService creates a new TaskService.
func NewTaskService(taskRepo repository.TaskRepository, projectRepo repository.ProjectRepository, recorder activity.Sink) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		recorder:    recorder,
	}
}

// List returns the non-deleted tasks of an owned project, ordered by
// ascending position with newest-first tie-breaking.
func (s *TaskService) List(userID, projectID uint64, meta RequestMeta) ([]models.Task, error) {
	if err := s.ensureProjectOwned(projectID, userID); err != nil {
		return nil, err
	}

	tasks, err := s.taskRepo.ListByProject(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	s.recorder.UserActivity(activity.UserActivityEntry{
		UserID:    userID,
		Action:    models.ActionProjectTasksView,
		Metadata:  models.Metadata{"project_id": projectID},
		IPAddress: meta.ClientIP,
		UserAgent: meta.UserAgent,
	})

	return tasks, nil
}

// CreateTaskInput represents input for creating a task.
type CreateTaskInput struct {
	UserID      uint64
	ProjectID   uint64
	Title       string
	Description string
	Priority    models.TaskPriority
	Status      models.TaskStatus
	DueDate     *time.Time
	Meta        RequestMeta
}

// Create creates a task at the end of the project's ordering. The new
// position is the current maximum plus the position step, leaving gaps for
// later insertion between neighbours.
func (s *TaskService) Create(input CreateTaskInput) (*models.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrTitleRequired
	}
	if !input.Priority.Valid() {
		return nil, ErrInvalidPriority
	}
	if input.Status == "" {
		input.Status = models.TaskStatusPending
	}
	if !input.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	if err := s.ensureProjectOwned(input.ProjectID, input.UserID); err != nil {
		return nil, err
	}

	maxPosition, err := s.taskRepo.MaxPosition(input.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute task position: %w", err)
	}

	task := &models.Task{
		ProjectID:   input.ProjectID,
		UserID:      input.UserID,
		Title:       input.Title,
		Description: input.Description,
		Priority:    input.Priority,
		Status:      input.Status,
		DueDate:     input.DueDate,
		Position:    maxPosition + constants.PositionStep,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.recorder.UserActivity(activity.UserActivityEntry{
		UserID: input.UserID,
		Action: models.ActionTaskCreate,
		Metadata: models.Metadata{
			"project_id": task.ProjectID,
			"task_id":    task.ID,
		},
		IPAddress: input.Meta.ClientIP,
		UserAgent: input.Meta.UserAgent,
	})
	s.recorder.TaskEvent(activity.TaskEventEntry{
		TaskID:   task.ID,
		Type:     models.EventTaskCreated,
		NewValue: task.Title,
	})

	return task, nil
}

// UpdateTaskInput represents a partial update; nil fields are untouched.
type UpdateTaskInput struct {
	Title        *string
	Description  *string
	Priority     *models.TaskPriority
	Status       *models.TaskStatus
	DueDate      *time.Time
	ClearDueDate bool
	Meta         RequestMeta
}

// Update applies a partial field set to an owned task. Status and priority
// transitions each emit a task event with the old and new values; every
// update emits one activity entry carrying the full change map.
func (s *TaskService) Update(userID, taskID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.taskRepo.FindOwned(taskID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	changes := models.Metadata{}
	var events []activity.TaskEventEntry

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, ErrTitleRequired
		}
		if *input.Title != task.Title {
			changes["title"] = *input.Title
			task.Title = *input.Title
		}
	}
	if input.Description != nil && *input.Description != task.Description {
		changes["description"] = *input.Description
		task.Description = *input.Description
	}
	if input.Priority != nil {
		if !input.Priority.Valid() {
			return nil, ErrInvalidPriority
		}
		if *input.Priority != task.Priority {
			changes["priority"] = string(*input.Priority)
			events = append(events, activity.TaskEventEntry{
				TaskID:   task.ID,
				Type:     models.EventPriorityChanged,
				OldValue: string(task.Priority),
				NewValue: string(*input.Priority),
			})
			task.Priority = *input.Priority
		}
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, ErrInvalidStatus
		}
		if *input.Status != task.Status {
			changes["status"] = string(*input.Status)
			events = append(events, activity.TaskEventEntry{
				TaskID:   task.ID,
				Type:     models.EventStatusChanged,
				OldValue: string(task.Status),
				NewValue: string(*input.Status),
			})
			task.Status = *input.Status
		}
	}
	if input.ClearDueDate {
		if task.DueDate != nil {
			changes["due_date"] = nil
			task.DueDate = nil
		}
	} else if input.DueDate != nil {
		changes["due_date"] = input.DueDate.Format(time.RFC3339)
		task.DueDate = input.DueDate
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	for _, event := range events {
		s.recorder.TaskEvent(event)
	}
	s.recorder.UserActivity(activity.UserActivityEntry{
		UserID: userID,
		Action: models.ActionTaskUpdate,
		Metadata: models.Metadata{
			"task_id": task.ID,
			"changes": changes,
		},
		IPAddress: input.Meta.ClientIP,
		UserAgent: input.Meta.UserAgent,
	})

	return task, nil
}

// SoftDelete marks an owned task as deleted. Re-deleting an already-deleted
// task reports ErrTaskNotFound.
func (s *TaskService) SoftDelete(userID, taskID uint64, meta RequestMeta) error {
	task, err := s.taskRepo.FindOwned(taskID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}

	if err := s.taskRepo.SoftDelete(taskID, userID, time.Now()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.recorder.TaskEvent(activity.TaskEventEntry{
		TaskID:   taskID,
		Type:     models.EventTaskDeleted,
		OldValue: task.Title,
	})
	s.recorder.UserActivity(activity.UserActivityEntry{
		UserID: userID,
		Action: models.ActionTaskDelete,
		Metadata: models.Metadata{
			"task_id": taskID,
			"title":   task.Title,
		},
		IPAddress: meta.ClientIP,
		UserAgent: meta.UserAgent,
	})

	return nil
}

// ensureProjectOwned verifies that the user owns a non-deleted project.
func (s *TaskService) ensureProjectOwned(projectID, userID uint64) error {
	if _, err := s.projectRepo.FindOwned(projectID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to find project: %w", err)
	}
	return nil
}
