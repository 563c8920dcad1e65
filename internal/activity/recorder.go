// Package activity provides the best-effort audit trail. Entries are queued
// and written by a background worker; a write failure or a full queue never
// propagates to the operation that produced the entry.
package activity

import (
	"time"

	"go.uber.org/zap"

	"github.com/taskflow-dev/taskflow-api/internal/logger"
	"github.com/taskflow-dev/taskflow-api/internal/models"
	"github.com/taskflow-dev/taskflow-api/internal/repository"
)

const defaultQueueSize = 256

// UserActivityEntry describes a coarse-grained user action to record.
type UserActivityEntry struct {
	UserID    uint64
	Action    string
	Metadata  models.Metadata
	IPAddress string
	UserAgent string
}

// TaskEventEntry describes a single task field transition to record.
type TaskEventEntry struct {
	TaskID   uint64
	Type     string
	OldValue string
	NewValue string
}

// Sink accepts audit entries. Implementations must never fail the caller:
// both methods return nothing and must not block on storage.
type Sink interface {
	UserActivity(entry UserActivityEntry)
	TaskEvent(entry TaskEventEntry)
}

type job struct {
	activity *models.UserActivity
	event    *models.TaskEvent
	flush    chan struct{}
}

// Recorder is the queue-backed Sink used in production. A single worker
// goroutine drains the queue and appends rows through the repository, so the
// caller observes its own operation's result before (or even without, on
// failure) the audit row existing.
type Recorder struct {
	repo repository.ActivityRepository
	jobs chan job
	done chan struct{}
}

// NewRecorder creates a Recorder and starts its worker.
func NewRecorder(repo repository.ActivityRepository) *Recorder {
	r := &Recorder{
		repo: repo,
		jobs: make(chan job, defaultQueueSize),
		done: make(chan struct{}),
	}
	go r.run()
	return r
}

func (r *Recorder) run() {
	defer close(r.done)
	for j := range r.jobs {
		switch {
		case j.flush != nil:
			close(j.flush)
		case j.activity != nil:
			if err := r.repo.CreateUserActivity(j.activity); err != nil {
				logger.Warn("failed to record user activity",
					zap.String("action", j.activity.Action),
					zap.Uint64("user_id", j.activity.UserID),
					zap.Error(err))
			}
		case j.event != nil:
			if err := r.repo.CreateTaskEvent(j.event); err != nil {
				logger.Warn("failed to record task event",
					zap.String("type", j.event.Type),
					zap.Uint64("task_id", j.event.TaskID),
					zap.Error(err))
			}
		}
	}
}

// UserActivity queues a user activity entry. Entries without a user ID are
// skipped with a warning. The metadata is enriched with a server-assigned
// timestamp.
func (r *Recorder) UserActivity(entry UserActivityEntry) {
	if entry.UserID == 0 {
		logger.Warn("skipping user activity without user id",
			zap.String("action", entry.Action))
		return
	}

	metadata := models.Metadata{}
	for k, v := range entry.Metadata {
		metadata[k] = v
	}
	metadata["timestamp"] = time.Now().UTC().Format(time.RFC3339)

	r.enqueue(job{activity: &models.UserActivity{
		UserID:    entry.UserID,
		Action:    entry.Action,
		Metadata:  metadata,
		IPAddress: defaultUnknown(entry.IPAddress),
		UserAgent: defaultUnknown(entry.UserAgent),
	}})
}

// TaskEvent queues a task event entry.
func (r *Recorder) TaskEvent(entry TaskEventEntry) {
	if entry.TaskID == 0 {
		logger.Warn("skipping task event without task id",
			zap.String("type", entry.Type))
		return
	}

	r.enqueue(job{event: &models.TaskEvent{
		TaskID:   entry.TaskID,
		Type:     entry.Type,
		OldValue: entry.OldValue,
		NewValue: entry.NewValue,
	}})
}

func (r *Recorder) enqueue(j job) {
	select {
	case r.jobs <- j:
	default:
		logger.Warn("activity queue full, dropping entry")
	}
}

// Flush blocks until every entry queued before the call has been processed.
func (r *Recorder) Flush() {
	flushed := make(chan struct{})
	r.jobs <- job{flush: flushed}
	<-flushed
}

// Close drains the queue and stops the worker. The recorder must not be used
// after Close.
func (r *Recorder) Close() {
	close(r.jobs)
	<-r.done
}

func defaultUnknown(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
