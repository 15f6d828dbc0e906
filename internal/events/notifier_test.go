package events

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobscout/companion-api/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

func newTestTask(t *testing.T) *domain.Task {
	t.Helper()
	task, err := domain.NewTask(domain.TaskData{JobID: "j1"})
	require.NoError(t, err)
	return task
}

func TestNotifyChangeDeliversToAllHandlers(t *testing.T) {
	notifier := NewInMemoryNotifier(testLogger())

	var got []ChangeKind
	for i := 0; i < 3; i++ {
		notifier.RegisterHandler(ChangeHandlerFunc(func(ctx context.Context, e *TaskChangeEvent) error {
			got = append(got, e.Kind)
			return nil
		}))
	}

	event := NewTaskChangeEvent(newTestTask(t))
	require.NoError(t, notifier.NotifyChange(context.Background(), event))

	assert.Len(t, got, 3)
	for _, kind := range got {
		assert.Equal(t, ChangeKindSaved, kind)
	}
}

func TestNotifyChangeContinuesPastFailingHandler(t *testing.T) {
	notifier := NewInMemoryNotifier(testLogger())
	handlerErr := errors.New("consumer unavailable")

	var secondCalled bool
	notifier.RegisterHandler(ChangeHandlerFunc(func(ctx context.Context, e *TaskChangeEvent) error {
		return handlerErr
	}))
	notifier.RegisterHandler(ChangeHandlerFunc(func(ctx context.Context, e *TaskChangeEvent) error {
		secondCalled = true
		return nil
	}))

	err := notifier.NotifyChange(context.Background(), NewStoreClearedEvent())

	assert.ErrorIs(t, err, handlerErr)
	assert.True(t, secondCalled, "later handlers still receive the event")
}

func TestNotifyChangeWithoutHandlers(t *testing.T) {
	notifier := NewInMemoryNotifier(testLogger())
	assert.NoError(t, notifier.NotifyChange(context.Background(), NewStoreClearedEvent()))
}

func TestChangeEventConstructors(t *testing.T) {
	task := newTestTask(t)

	saved := NewTaskChangeEvent(task)
	assert.Equal(t, ChangeKindSaved, saved.Kind)
	assert.Equal(t, task.ID, saved.TaskID)
	assert.NotNil(t, saved.Task)
	assert.False(t, saved.OccurredAt.IsZero())

	cleared := NewStoreClearedEvent()
	assert.Equal(t, ChangeKindCleared, cleared.Kind)
	assert.Empty(t, cleared.TaskID)
	assert.Nil(t, cleared.Task)
	assert.NotEqual(t, saved.ID, cleared.ID)
}
