package database

import (
	"fmt"

	"github.com/taskflow-dev/taskflow-api/internal/models"
	"gorm.io/gorm"
)

// AddIndexes creates the performance-critical indexes declared on the models.
// AutoMigrate builds these on fresh schemas; this covers databases migrated
// before an index was declared.
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		model interface{}
		name  string
	}{
		// Ownership-scoped lookups
		{&models.Project{}, "idx_projects_user_id"},
		{&models.Task{}, "idx_tasks_project_id"},
		{&models.Task{}, "idx_tasks_user_id"},

		// Audit trail reads
		{&models.UserActivity{}, "idx_user_activities_user_id"},
		{&models.TaskEvent{}, "idx_task_events_task_id"},
	}

	for _, idx := range indexes {
		if db.Migrator().HasIndex(idx.model, idx.name) {
			continue
		}
		if err := db.Migrator().CreateIndex(idx.model, idx.name); err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	return nil
}
