package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/taskflow-dev/taskflow-api/internal/activity"
	"github.com/taskflow-dev/taskflow-api/internal/constants"
	"github.com/taskflow-dev/taskflow-api/internal/dto"
	"github.com/taskflow-dev/taskflow-api/internal/models"
	"github.com/taskflow-dev/taskflow-api/internal/repository"
	"github.com/taskflow-dev/taskflow-api/internal/services"
)

// TaskHandlerTestSuite defines the test suite for TaskHandler
type TaskHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	handler *TaskHandler
	service *services.TaskService
}

// SetupTest runs before each test
func (suite *TaskHandlerTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Task{},
		&models.UserActivity{},
		&models.TaskEvent{},
	)
	suite.Require().NoError(err)

	suite.service = services.NewTaskService(
		repository.NewTaskRepository(suite.db),
		repository.NewProjectRepository(suite.db),
		activity.NewNopSink(),
	)
	suite.handler = NewTaskHandler(suite.service)

	gin.SetMode(gin.TestMode)
}

// TearDownTest runs after each test
func (suite *TaskHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *TaskHandlerTestSuite) createTestUser(email string) *models.User {
	user := &models.User{
		Email:        email,
		PasswordHash: "hashedpassword",
	}
	suite.db.Create(user)
	return user
}

func (suite *TaskHandlerTestSuite) createTestProject(name string, userID uint64) *models.Project {
	project := &models.Project{
		Name:   name,
		UserID: userID,
	}
	suite.db.Create(project)
	return project
}

func (suite *TaskHandlerTestSuite) createTestTask(title string, projectID, userID uint64) *models.Task {
	task := &models.Task{
		Title:     title,
		ProjectID: projectID,
		UserID:    userID,
		Priority:  models.TaskPriorityMedium,
		Status:    models.TaskStatusPending,
		Position:  constants.PositionStep,
	}
	suite.db.Create(task)
	return task
}

// createAuthContext builds a context carrying the authenticated user ID,
// as RequireAuth would after resolving the session.
func (suite *TaskHandlerTestSuite) createAuthContext(method, url string, body []byte, userID uint64) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set(constants.ContextKeyUserID, userID)

	return c, w
}

func (suite *TaskHandlerTestSuite) setIDParam(c *gin.Context, id uint64) {
	c.Params = gin.Params{{Key: "id", Value: strconv.FormatUint(id, 10)}}
}

func (suite *TaskHandlerTestSuite) TestListTasks_Success() {
	user := suite.createTestUser("alice@example.com")
	project := suite.createTestProject("Launch", user.ID)
	suite.createTestTask("Write doc", project.ID, user.ID)

	c, w := suite.createAuthContext("GET", "/api/projects/1/tasks", nil, user.ID)
	suite.setIDParam(c, project.ID)

	suite.handler.ListTasks(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var tasks []dto.TaskDTO
	assert.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &tasks))
	assert.Len(suite.T(), tasks, 1)
	assert.Equal(suite.T(), "Write doc", tasks[0].Title)
}

func (suite *TaskHandlerTestSuite) TestListTasks_ProjectOwnedByOther() {
	alice := suite.createTestUser("alice@example.com")
	bob := suite.createTestUser("bob@example.com")
	project := suite.createTestProject("Launch", alice.ID)

	c, w := suite.createAuthContext("GET", "/api/projects/1/tasks", nil, bob.ID)
	suite.setIDParam(c, project.ID)

	suite.handler.ListTasks(c)

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *TaskHandlerTestSuite) TestCreateTask_Success() {
	user := suite.createTestUser("alice@example.com")
	project := suite.createTestProject("Launch", user.ID)

	body, _ := json.Marshal(map[string]interface{}{
		"title":    "Write doc",
		"priority": "MEDIUM",
	})

	c, w := suite.createAuthContext("POST", "/api/projects/1/tasks", body, user.ID)
	suite.setIDParam(c, project.ID)

	suite.handler.CreateTask(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	var task dto.TaskDTO
	assert.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &task))
	assert.Equal(suite.T(), int64(constants.PositionStep), task.Position)
	assert.Equal(suite.T(), models.TaskStatusPending, task.Status)
}

func (suite *TaskHandlerTestSuite) TestCreateTask_InvalidPriority() {
	user := suite.createTestUser("alice@example.com")
	project := suite.createTestProject("Launch", user.ID)

	body, _ := json.Marshal(map[string]interface{}{
		"title":    "Write doc",
		"priority": "URGENT",
	})

	c, w := suite.createAuthContext("POST", "/api/projects/1/tasks", body, user.ID)
	suite.setIDParam(c, project.ID)

	suite.handler.CreateTask(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *TaskHandlerTestSuite) TestUpdateTask_OwnedByOtherLooksMissing() {
	alice := suite.createTestUser("alice@example.com")
	bob := suite.createTestUser("bob@example.com")
	project := suite.createTestProject("Launch", alice.ID)
	task := suite.createTestTask("Write doc", project.ID, alice.ID)

	body, _ := json.Marshal(map[string]interface{}{
		"status": "COMPLETED",
	})

	c, w := suite.createAuthContext("PATCH", "/api/tasks/1", body, bob.ID)
	suite.setIDParam(c, task.ID)

	suite.handler.UpdateTask(c)

	// 404, never 403: bob must not learn that the task exists
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *TaskHandlerTestSuite) TestUpdateTask_Status() {
	user := suite.createTestUser("alice@example.com")
	project := suite.createTestProject("Launch", user.ID)
	task := suite.createTestTask("Write doc", project.ID, user.ID)

	body, _ := json.Marshal(map[string]interface{}{
		"status": "COMPLETED",
	})

	c, w := suite.createAuthContext("PATCH", "/api/tasks/1", body, user.ID)
	suite.setIDParam(c, task.ID)

	suite.handler.UpdateTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var updated dto.TaskDTO
	assert.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(suite.T(), models.TaskStatusCompleted, updated.Status)
}

func (suite *TaskHandlerTestSuite) TestDeleteTask_Idempotence() {
	user := suite.createTestUser("alice@example.com")
	project := suite.createTestProject("Launch", user.ID)
	task := suite.createTestTask("Write doc", project.ID, user.ID)

	c, w := suite.createAuthContext("DELETE", "/api/tasks/1", nil, user.ID)
	suite.setIDParam(c, task.ID)
	suite.handler.DeleteTask(c)
	assert.Equal(suite.T(), http.StatusNoContent, w.Code)

	// Re-deleting reports not found
	c, w = suite.createAuthContext("DELETE", "/api/tasks/1", nil, user.ID)
	suite.setIDParam(c, task.ID)
	suite.handler.DeleteTask(c)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}
