package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the lifecycle state of a tracked task
type TaskStatus string

// Possible task status values
const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusError     TaskStatus = "error"
)

// Common validation errors for Task
var (
	ErrEmptyTaskID       = errors.New("task ID cannot be empty")
	ErrEmptyJobID        = errors.New("task job ID cannot be empty")
	ErrInvalidTaskStatus = errors.New("invalid task status")
)

// Task is the locally tracked unit of work correlating to one remote job
// assessment. Status transitions are monotonic: pending may move to
// completed or error, and neither terminal state is ever reversed except
// by an explicit user-initiated retry.
type Task struct {
	ID           string     `json:"id"`
	Status       TaskStatus `json:"status"`
	SubmittedAt  time.Time  `json:"submittedAt"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
	ErrorMessage string     `json:"error,omitempty"`
	Data         TaskData   `json:"data"`
}

// NewTask creates a new pending Task for the given remote job.
// It generates a new UUID for the task ID and stamps the submission time.
// Returns an error if validation fails.
func NewTask(data TaskData) (*Task, error) {
	task := &Task{
		ID:          uuid.New().String(),
		Status:      TaskStatusPending,
		SubmittedAt: time.Now().UTC(),
		Data:        data,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == "" {
		return ErrEmptyTaskID
	}

	if t.Data.JobID == "" {
		return ErrEmptyJobID
	}

	if !isValidTaskStatus(t.Status) {
		return ErrInvalidTaskStatus
	}

	return nil
}

// MarkCompleted transitions the task to completed and stamps CompletedAt.
// The completion timestamp is set exactly once.
func (t *Task) MarkCompleted(now time.Time) {
	t.Status = TaskStatusCompleted
	if t.CompletedAt == nil {
		ts := now.UTC()
		t.CompletedAt = &ts
	}
}

// MarkFailed transitions the task to the error state with a message.
// A failed task must never be reported assessed.
func (t *Task) MarkFailed(message string) {
	t.Status = TaskStatusError
	t.ErrorMessage = message
	t.Data.Assessed = Bool(false)
	t.Data.Failed = Bool(true)
}

// ResetForRetry returns the task to the pending state after a manual
// retry, clearing the failure markers so it re-enters ambient polling.
func (t *Task) ResetForRetry() {
	t.Status = TaskStatusPending
	t.ErrorMessage = ""
	t.Data.Failed = Bool(false)
	t.Data.FailedReason = nil
	t.Data.Assessed = Bool(false)
}

// Clone returns a deep copy of the task, including its data bag.
func (t *Task) Clone() *Task {
	clone := *t
	if t.CompletedAt != nil {
		ts := *t.CompletedAt
		clone.CompletedAt = &ts
	}
	clone.Data = t.Data.Clone()
	return &clone
}

// isValidTaskStatus checks if the given status is a valid TaskStatus.
func isValidTaskStatus(status TaskStatus) bool {
	switch status {
	case TaskStatusPending, TaskStatusCompleted, TaskStatusError:
		return true
	default:
		return false
	}
}
