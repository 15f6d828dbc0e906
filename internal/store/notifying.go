package store

import (
	"context"
	"log/slog"

	"github.com/jobscout/companion-api/internal/domain"
	"github.com/jobscout/companion-api/internal/events"
)

// NotifyingTaskStore decorates a TaskStore so that every successful
// mutation, from any writer, publishes a change event. Notification
// failures are logged but never fail the write: observers are
// best-effort consumers of the store, not participants in it.
type NotifyingTaskStore struct {
	inner    TaskStore
	notifier events.ChangeNotifier
	logger   *slog.Logger
}

// NewNotifyingTaskStore wraps inner so mutations publish to notifier.
func NewNotifyingTaskStore(
	inner TaskStore,
	notifier events.ChangeNotifier,
	logger *slog.Logger,
) *NotifyingTaskStore {
	return &NotifyingTaskStore{
		inner:    inner,
		notifier: notifier,
		logger:   logger.With("component", "notifying_task_store"),
	}
}

// GetTask retrieves a single task by its ID.
func (s *NotifyingTaskStore) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	return s.inner.GetTask(ctx, id)
}

// ListTasks retrieves every tracked task.
func (s *NotifyingTaskStore) ListTasks(ctx context.Context) ([]*domain.Task, error) {
	return s.inner.ListTasks(ctx)
}

// SaveTask persists a task and publishes a change event on success.
func (s *NotifyingTaskStore) SaveTask(ctx context.Context, task *domain.Task) error {
	if err := s.inner.SaveTask(ctx, task); err != nil {
		return err
	}

	if err := s.notifier.NotifyChange(ctx, events.NewTaskChangeEvent(task.Clone())); err != nil {
		s.logger.Warn("change notification failed after save",
			"task_id", task.ID,
			"error", err)
	}
	return nil
}

// DeleteAllTasks clears the store and publishes a cleared event on success.
func (s *NotifyingTaskStore) DeleteAllTasks(ctx context.Context) error {
	if err := s.inner.DeleteAllTasks(ctx); err != nil {
		return err
	}

	if err := s.notifier.NotifyChange(ctx, events.NewStoreClearedEvent()); err != nil {
		s.logger.Warn("change notification failed after clear", "error", err)
	}
	return nil
}

var _ TaskStore = (*NotifyingTaskStore)(nil)
