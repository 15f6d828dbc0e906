package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jobscout/companion-api/internal/domain"
	"github.com/jobscout/companion-api/internal/store"
	"github.com/jobscout/companion-api/internal/task"
)

// TaskServiceError is a custom error type for task service errors.
type TaskServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for TaskServiceError.
func (e *TaskServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("task service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("task service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *TaskServiceError) Unwrap() error {
	return e.Err
}

// NewTaskServiceError creates a new TaskServiceError.
func NewTaskServiceError(operation, message string, err error) *TaskServiceError {
	return &TaskServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// AppliedMarker records the user's applied/not-applied decision with the
// remote scoring service.
type AppliedMarker interface {
	// MarkApplied flags the job as applied to.
	MarkApplied(ctx context.Context, jobID string) error

	// UnmarkApplied clears the applied flag for the job.
	UnmarkApplied(ctx context.Context, jobID string) error
}

// Retrier drives user-triggered assessment regeneration.
type Retrier interface {
	// RegenerateAndWait re-requests assessment and waits for the result
	// within a bounded window.
	RegenerateAndWait(ctx context.Context, taskID string) (task.RegenOutcome, error)

	// RetryAfterFailure re-requests assessment for a quarantined task
	// and resets it to pending once the request is accepted.
	RetryAfterFailure(ctx context.Context, taskID string) error
}

// TaskService provides task tracking operations.
type TaskService interface {
	// SubmitTask starts tracking a new remote job as a pending task.
	SubmitTask(ctx context.Context, data domain.TaskData) (*domain.Task, error)

	// GetTask retrieves a single tracked task.
	GetTask(ctx context.Context, taskID string) (*domain.Task, error)

	// ListTasks returns all tracked tasks.
	ListTasks(ctx context.Context) ([]*domain.Task, error)

	// SetApplied records the applied decision remotely and then mirrors
	// it on the local task.
	SetApplied(ctx context.Context, taskID string, applied bool) (*domain.Task, error)

	// RegenerateAssessment re-requests assessment for a task and waits
	// for the result.
	RegenerateAssessment(ctx context.Context, taskID string) (task.RegenOutcome, error)

	// RetryTask resets a failed task and re-requests assessment.
	RetryTask(ctx context.Context, taskID string) error

	// ClearTasks removes every tracked task.
	ClearTasks(ctx context.Context) error
}

// taskServiceImpl implements the TaskService interface.
type taskServiceImpl struct {
	taskStore store.TaskStore
	marker    AppliedMarker
	retrier   Retrier
	logger    *slog.Logger
}

// NewTaskService creates a new TaskService over the given collaborators.
func NewTaskService(
	taskStore store.TaskStore,
	marker AppliedMarker,
	retrier Retrier,
	logger *slog.Logger,
) TaskService {
	return &taskServiceImpl{
		taskStore: taskStore,
		marker:    marker,
		retrier:   retrier,
		logger:    logger.With("component", "task_service"),
	}
}

// SubmitTask creates a new pending task for the given job data and
// persists it. The ambient reconciler picks it up on its next cycle.
func (s *taskServiceImpl) SubmitTask(ctx context.Context, data domain.TaskData) (*domain.Task, error) {
	t, err := domain.NewTask(data)
	if err != nil {
		return nil, NewTaskServiceError("submit", "invalid task data", err)
	}

	if err := s.taskStore.SaveTask(ctx, t); err != nil {
		return nil, NewTaskServiceError("submit", "failed to save task", err)
	}

	s.logger.InfoContext(ctx, "task submitted",
		"task_id", t.ID,
		"job_id", t.Data.JobID)
	return t, nil
}

// GetTask retrieves a single task by ID.
func (s *taskServiceImpl) GetTask(ctx context.Context, taskID string) (*domain.Task, error) {
	t, err := s.taskStore.GetTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return t, nil
}

// ListTasks returns all tracked tasks.
func (s *taskServiceImpl) ListTasks(ctx context.Context) ([]*domain.Task, error) {
	tasks, err := s.taskStore.ListTasks(ctx)
	if err != nil {
		return nil, NewTaskServiceError("list", "failed to list tasks", err)
	}
	return tasks, nil
}

// SetApplied records the applied decision with the remote service first;
// only once the remote accepts is the local flag mirrored. The flag is a
// user decision, not remote canonical state, so it is written directly
// rather than run through the snapshot merge.
func (s *taskServiceImpl) SetApplied(ctx context.Context, taskID string, applied bool) (*domain.Task, error) {
	t, err := s.taskStore.GetTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	if t.Data.JobID == "" {
		return nil, NewTaskServiceError("set_applied", "task has no job ID", nil)
	}

	if applied {
		err = s.marker.MarkApplied(ctx, t.Data.JobID)
	} else {
		err = s.marker.UnmarkApplied(ctx, t.Data.JobID)
	}
	if err != nil {
		return nil, NewTaskServiceError("set_applied", "remote rejected applied update", err)
	}

	flag := 0
	if applied {
		flag = 1
	}
	t.Data.JobApplied = domain.Int(flag)

	if err := s.taskStore.SaveTask(ctx, t); err != nil {
		return nil, NewTaskServiceError("set_applied", "failed to save task", err)
	}

	s.logger.InfoContext(ctx, "applied flag updated",
		"task_id", t.ID,
		"job_id", t.Data.JobID,
		"applied", applied)
	return t, nil
}

// RegenerateAssessment re-requests assessment and waits for the result.
func (s *taskServiceImpl) RegenerateAssessment(ctx context.Context, taskID string) (task.RegenOutcome, error) {
	return s.retrier.RegenerateAndWait(ctx, taskID)
}

// RetryTask resets a failed task and re-requests assessment.
func (s *taskServiceImpl) RetryTask(ctx context.Context, taskID string) error {
	return s.retrier.RetryAfterFailure(ctx, taskID)
}

// ClearTasks removes every tracked task.
func (s *taskServiceImpl) ClearTasks(ctx context.Context) error {
	if err := s.taskStore.DeleteAllTasks(ctx); err != nil {
		return NewTaskServiceError("clear", "failed to clear tasks", err)
	}
	s.logger.InfoContext(ctx, "all tasks cleared")
	return nil
}
