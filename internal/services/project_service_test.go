package services

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/taskflow-dev/taskflow-api/internal/activity"
	"github.com/taskflow-dev/taskflow-api/internal/models"
	"github.com/taskflow-dev/taskflow-api/internal/repository"
)

type projectEnv struct {
	db       *gorm.DB
	service  *ProjectService
	recorder *activity.Recorder
}

func setupProjectEnv(t *testing.T) projectEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Task{},
		&models.UserActivity{},
		&models.TaskEvent{},
	))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	recorder := activity.NewRecorder(repository.NewActivityRepository(db))
	t.Cleanup(recorder.Close)

	service := NewProjectService(repository.NewProjectRepository(db), recorder)

	return projectEnv{
		db:       db,
		service:  service,
		recorder: recorder,
	}
}

func (env projectEnv) createUser(t *testing.T, email string) *models.User {
	t.Helper()
	user := &models.User{Email: email, PasswordHash: "hashedpassword"}
	require.NoError(t, env.db.Create(user).Error)
	return user
}

func (env projectEnv) createTask(t *testing.T, projectID, userID uint64, title string) *models.Task {
	t.Helper()
	task := &models.Task{
		ProjectID: projectID,
		UserID:    userID,
		Title:     title,
		Priority:  models.TaskPriorityMedium,
		Status:    models.TaskStatusPending,
	}
	require.NoError(t, env.db.Create(task).Error)
	return task
}

func TestProjectService_CreateValidation(t *testing.T) {
	env := setupProjectEnv(t)
	user := env.createUser(t, "alice@example.com")

	_, err := env.service.Create(CreateProjectInput{UserID: user.ID, Name: "   "})
	require.ErrorIs(t, err, ErrNameRequired)

	project, err := env.service.Create(CreateProjectInput{UserID: user.ID, Name: "  Launch  ", Description: "Q3 launch"})
	require.NoError(t, err)
	require.Equal(t, "Launch", project.Name)
	require.False(t, project.IsDeleted)
}

func TestProjectService_ListCountsAndOrdering(t *testing.T) {
	env := setupProjectEnv(t)
	user := env.createUser(t, "alice@example.com")

	first, err := env.service.Create(CreateProjectInput{UserID: user.ID, Name: "First"})
	require.NoError(t, err)
	second, err := env.service.Create(CreateProjectInput{UserID: user.ID, Name: "Second"})
	require.NoError(t, err)

	env.createTask(t, first.ID, user.ID, "Write doc")
	deleted := env.createTask(t, first.ID, user.ID, "Old chore")
	require.NoError(t, env.db.Model(deleted).Updates(map[string]interface{}{"is_deleted": true}).Error)

	projects, err := env.service.List(user.ID, RequestMeta{})
	require.NoError(t, err)
	require.Len(t, projects, 2)

	// Newest first; deleted tasks excluded from the count
	require.Equal(t, second.ID, projects[0].ID)
	require.Equal(t, int64(0), projects[0].TaskCount)
	require.Equal(t, first.ID, projects[1].ID)
	require.Equal(t, int64(1), projects[1].TaskCount)
}

func TestProjectService_OwnershipIsolation(t *testing.T) {
	env := setupProjectEnv(t)
	alice := env.createUser(t, "alice@example.com")
	bob := env.createUser(t, "bob@example.com")

	project, err := env.service.Create(CreateProjectInput{UserID: alice.ID, Name: "Launch"})
	require.NoError(t, err)

	// Bob sees alice's project as if it never existed
	_, err = env.service.Update(UpdateProjectInput{UserID: bob.ID, ProjectID: project.ID, Name: "Hijacked"})
	require.ErrorIs(t, err, ErrProjectNotFound)

	err = env.service.SoftDelete(bob.ID, project.ID, RequestMeta{})
	require.ErrorIs(t, err, ErrProjectNotFound)

	// So does a project that genuinely never existed
	_, err = env.service.Update(UpdateProjectInput{UserID: bob.ID, ProjectID: 424242, Name: "Ghost"})
	require.ErrorIs(t, err, ErrProjectNotFound)
}

func TestProjectService_Update(t *testing.T) {
	env := setupProjectEnv(t)
	user := env.createUser(t, "alice@example.com")

	project, err := env.service.Create(CreateProjectInput{UserID: user.ID, Name: "Launch"})
	require.NoError(t, err)

	updated, err := env.service.Update(UpdateProjectInput{
		UserID:      user.ID,
		ProjectID:   project.ID,
		Name:        "Launch v2",
		Description: "reworked",
	})
	require.NoError(t, err)
	require.Equal(t, "Launch v2", updated.Name)
	require.Equal(t, "reworked", updated.Description)
}

func TestProjectService_SoftDeleteCascades(t *testing.T) {
	env := setupProjectEnv(t)
	user := env.createUser(t, "alice@example.com")

	project, err := env.service.Create(CreateProjectInput{UserID: user.ID, Name: "Launch"})
	require.NoError(t, err)
	env.createTask(t, project.ID, user.ID, "Write doc")
	env.createTask(t, project.ID, user.ID, "Review")

	require.NoError(t, env.service.SoftDelete(user.ID, project.ID, RequestMeta{}))

	var reloaded models.Project
	require.NoError(t, env.db.First(&reloaded, project.ID).Error)
	require.True(t, reloaded.IsDeleted)
	require.NotNil(t, reloaded.DeletedAt)

	var tasks []models.Task
	require.NoError(t, env.db.Where("project_id = ?", project.ID).Find(&tasks).Error)
	require.Len(t, tasks, 2)
	for _, task := range tasks {
		require.True(t, task.IsDeleted)
		require.NotNil(t, task.DeletedAt)
	}

	// The deleted project disappears from listings
	projects, err := env.service.List(user.ID, RequestMeta{})
	require.NoError(t, err)
	require.Empty(t, projects)
}

func TestProjectService_SoftDeleteIdempotence(t *testing.T) {
	env := setupProjectEnv(t)
	user := env.createUser(t, "alice@example.com")

	project, err := env.service.Create(CreateProjectInput{UserID: user.ID, Name: "Launch"})
	require.NoError(t, err)

	require.NoError(t, env.service.SoftDelete(user.ID, project.ID, RequestMeta{}))

	// A second delete finds nothing: the active scope excludes the row
	err = env.service.SoftDelete(user.ID, project.ID, RequestMeta{})
	require.ErrorIs(t, err, ErrProjectNotFound)
}

func TestProjectService_DeleteRecordsPreDeleteName(t *testing.T) {
	env := setupProjectEnv(t)
	user := env.createUser(t, "alice@example.com")

	project, err := env.service.Create(CreateProjectInput{UserID: user.ID, Name: "Launch"})
	require.NoError(t, err)
	require.NoError(t, env.service.SoftDelete(user.ID, project.ID, RequestMeta{}))

	env.recorder.Flush()

	var entry models.UserActivity
	require.NoError(t, env.db.
		Where("user_id = ? AND action = ?", user.ID, models.ActionProjectDelete).
		First(&entry).Error)
	require.Equal(t, "Launch", entry.Metadata["name"])
}
