package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jobscout/companion-api/internal/domain"
)

// ChangeKind classifies a task store mutation.
type ChangeKind string

// Possible change kinds.
const (
	// ChangeKindSaved means a task record was inserted or replaced.
	ChangeKindSaved ChangeKind = "saved"

	// ChangeKindCleared means the whole store was wiped by a bulk clear.
	ChangeKindCleared ChangeKind = "cleared"
)

// TaskChangeEvent represents one mutation of the task store. For saves it
// carries the task's latest full record; for a bulk clear Task is nil.
type TaskChangeEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Kind classifies the mutation
	Kind ChangeKind `json:"kind"`

	// TaskID is the affected task's ID; empty for bulk clears
	TaskID string `json:"task_id,omitempty"`

	// Task is the latest full record after the mutation, nil for clears
	Task *domain.Task `json:"task,omitempty"`

	// OccurredAt is the timestamp when the event was created
	OccurredAt time.Time `json:"occurred_at"`
}

// NewTaskChangeEvent creates a change event for a saved task record.
func NewTaskChangeEvent(task *domain.Task) *TaskChangeEvent {
	return &TaskChangeEvent{
		ID:         uuid.New(),
		Kind:       ChangeKindSaved,
		TaskID:     task.ID,
		Task:       task,
		OccurredAt: time.Now().UTC(),
	}
}

// NewStoreClearedEvent creates a change event for a bulk clear.
func NewStoreClearedEvent() *TaskChangeEvent {
	return &TaskChangeEvent{
		ID:         uuid.New(),
		Kind:       ChangeKindCleared,
		OccurredAt: time.Now().UTC(),
	}
}

// ChangeHandler defines an interface for components that consume task
// change events, e.g. a presentation layer refreshing its view.
type ChangeHandler interface {
	// HandleChange processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleChange(ctx context.Context, event *TaskChangeEvent) error
}

// ChangeHandlerFunc adapts a plain function to the ChangeHandler interface.
type ChangeHandlerFunc func(ctx context.Context, event *TaskChangeEvent) error

// HandleChange calls f(ctx, event).
func (f ChangeHandlerFunc) HandleChange(ctx context.Context, event *TaskChangeEvent) error {
	return f(ctx, event)
}

// ChangeNotifier defines an interface for components that publish task
// change events. This allows the store to notify observers without direct
// knowledge of who is listening.
type ChangeNotifier interface {
	// NotifyChange publishes the given event to all registered handlers.
	// Returns an error if the event cannot be delivered.
	NotifyChange(ctx context.Context, event *TaskChangeEvent) error
}
