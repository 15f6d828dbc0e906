package store

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobscout/companion-api/internal/domain"
	"github.com/jobscout/companion-api/internal/events"
)

// fakeTaskStore is a minimal in-memory TaskStore for decorator tests.
type fakeTaskStore struct {
	tasks   map[string]*domain.Task
	saveErr error
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{tasks: make(map[string]*domain.Task)}
}

func (s *fakeTaskStore) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	task, ok := s.tasks[id]
	if !ok {
		return nil, ErrTaskNotFound
	}
	return task.Clone(), nil
}

func (s *fakeTaskStore) ListTasks(ctx context.Context) ([]*domain.Task, error) {
	out := make([]*domain.Task, 0, len(s.tasks))
	for _, task := range s.tasks {
		out = append(out, task.Clone())
	}
	return out, nil
}

func (s *fakeTaskStore) SaveTask(ctx context.Context, task *domain.Task) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.tasks[task.ID] = task.Clone()
	return nil
}

func (s *fakeTaskStore) DeleteAllTasks(ctx context.Context) error {
	s.tasks = make(map[string]*domain.Task)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

func TestNotifyingTaskStorePublishesOnSave(t *testing.T) {
	logger := testLogger()
	notifier := events.NewInMemoryNotifier(logger)
	decorated := NewNotifyingTaskStore(newFakeTaskStore(), notifier, logger)

	var received []*events.TaskChangeEvent
	notifier.RegisterHandler(events.ChangeHandlerFunc(func(ctx context.Context, e *events.TaskChangeEvent) error {
		received = append(received, e)
		return nil
	}))

	task, err := domain.NewTask(domain.TaskData{JobID: "j1"})
	require.NoError(t, err)
	require.NoError(t, decorated.SaveTask(context.Background(), task))

	require.Len(t, received, 1)
	assert.Equal(t, events.ChangeKindSaved, received[0].Kind)
	assert.Equal(t, task.ID, received[0].TaskID)
	require.NotNil(t, received[0].Task)
	assert.Equal(t, "j1", received[0].Task.Data.JobID)
}

func TestNotifyingTaskStorePublishesOnClear(t *testing.T) {
	logger := testLogger()
	notifier := events.NewInMemoryNotifier(logger)
	decorated := NewNotifyingTaskStore(newFakeTaskStore(), notifier, logger)

	var received []*events.TaskChangeEvent
	notifier.RegisterHandler(events.ChangeHandlerFunc(func(ctx context.Context, e *events.TaskChangeEvent) error {
		received = append(received, e)
		return nil
	}))

	require.NoError(t, decorated.DeleteAllTasks(context.Background()))

	require.Len(t, received, 1)
	assert.Equal(t, events.ChangeKindCleared, received[0].Kind)
}

func TestNotifyingTaskStoreFailedWriteDoesNotNotify(t *testing.T) {
	logger := testLogger()
	notifier := events.NewInMemoryNotifier(logger)
	inner := newFakeTaskStore()
	inner.saveErr = errors.New("disk full")
	decorated := NewNotifyingTaskStore(inner, notifier, logger)

	var notified bool
	notifier.RegisterHandler(events.ChangeHandlerFunc(func(ctx context.Context, e *events.TaskChangeEvent) error {
		notified = true
		return nil
	}))

	task, err := domain.NewTask(domain.TaskData{JobID: "j1"})
	require.NoError(t, err)
	assert.Error(t, decorated.SaveTask(context.Background(), task))
	assert.False(t, notified)
}

func TestNotifyingTaskStoreHandlerErrorDoesNotFailWrite(t *testing.T) {
	logger := testLogger()
	notifier := events.NewInMemoryNotifier(logger)
	decorated := NewNotifyingTaskStore(newFakeTaskStore(), notifier, logger)

	notifier.RegisterHandler(events.ChangeHandlerFunc(func(ctx context.Context, e *events.TaskChangeEvent) error {
		return errors.New("observer gone")
	}))

	task, err := domain.NewTask(domain.TaskData{JobID: "j1"})
	require.NoError(t, err)
	assert.NoError(t, decorated.SaveTask(context.Background(), task))
}
