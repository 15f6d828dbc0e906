package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTask(t *testing.T) {
	task, err := NewTask(TaskData{JobID: "j1"})
	require.NoError(t, err)

	assert.NotEmpty(t, task.ID)
	assert.Equal(t, TaskStatusPending, task.Status)
	assert.Equal(t, "j1", task.Data.JobID)
	assert.Nil(t, task.CompletedAt)
	assert.WithinDuration(t, time.Now().UTC(), task.SubmittedAt, time.Minute)
}

func TestNewTaskRequiresJobID(t *testing.T) {
	_, err := NewTask(TaskData{})
	assert.ErrorIs(t, err, ErrEmptyJobID)
}

func TestTaskValidateRejectsUnknownStatus(t *testing.T) {
	task, err := NewTask(TaskData{JobID: "j1"})
	require.NoError(t, err)

	task.Status = TaskStatus("archived")
	assert.ErrorIs(t, task.Validate(), ErrInvalidTaskStatus)
}

func TestMarkCompletedStampsOnce(t *testing.T) {
	task, err := NewTask(TaskData{JobID: "j1"})
	require.NoError(t, err)

	first := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	task.MarkCompleted(first)
	require.NotNil(t, task.CompletedAt)
	assert.Equal(t, first, *task.CompletedAt)

	// A second completion must not move the original timestamp.
	task.MarkCompleted(first.Add(time.Hour))
	assert.Equal(t, first, *task.CompletedAt)
	assert.Equal(t, TaskStatusCompleted, task.Status)
}

func TestMarkFailedForcesNonAssessed(t *testing.T) {
	task, err := NewTask(TaskData{JobID: "j1", Assessed: Bool(true)})
	require.NoError(t, err)

	task.MarkFailed("assessment failed")

	assert.Equal(t, TaskStatusError, task.Status)
	assert.Equal(t, "assessment failed", task.ErrorMessage)
	assert.True(t, task.Data.IsFailed())
	assert.False(t, task.Data.IsAssessed())
}

func TestResetForRetry(t *testing.T) {
	task, err := NewTask(TaskData{JobID: "j1"})
	require.NoError(t, err)
	task.MarkFailed("quota exceeded")
	task.Data.FailedReason = String("quota exceeded")

	task.ResetForRetry()

	assert.Equal(t, TaskStatusPending, task.Status)
	assert.Empty(t, task.ErrorMessage)
	assert.False(t, task.Data.IsFailed())
	assert.Nil(t, task.Data.FailedReason)
	assert.False(t, task.Data.IsAssessed())
}

func TestTaskCloneIsIndependent(t *testing.T) {
	task, err := NewTask(TaskData{
		JobID: "j1",
		Extra: map[string]json.RawMessage{"job_title": json.RawMessage(`"X"`)},
	})
	require.NoError(t, err)

	clone := task.Clone()
	clone.Data.JobID = "j2"
	clone.Data.Extra["job_title"] = json.RawMessage(`"Y"`)
	clone.MarkCompleted(time.Now())

	assert.Equal(t, "j1", task.Data.JobID)
	assert.Equal(t, json.RawMessage(`"X"`), task.Data.Extra["job_title"])
	assert.Equal(t, TaskStatusPending, task.Status)
	assert.Nil(t, task.CompletedAt)
}
