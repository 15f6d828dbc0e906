package store

import (
	"context"

	"github.com/jobscout/companion-api/internal/domain"
)

// TaskStore defines the interface for the durable task mapping.
// Every write is a whole-record replace keyed by task ID; there are no
// partial-field updates, so concurrent writers to different tasks never
// conflict.
type TaskStore interface {
	// GetTask retrieves a single task by its ID.
	// Returns ErrTaskNotFound if no task exists with the given ID.
	GetTask(ctx context.Context, id string) (*domain.Task, error)

	// ListTasks retrieves every tracked task.
	ListTasks(ctx context.Context) ([]*domain.Task, error)

	// SaveTask persists a task, inserting or replacing the whole record.
	SaveTask(ctx context.Context, task *domain.Task) error

	// DeleteAllTasks removes every tracked task (explicit bulk clear).
	DeleteAllTasks(ctx context.Context) error
}
