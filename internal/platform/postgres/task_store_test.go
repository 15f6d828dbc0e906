package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobscout/companion-api/internal/domain"
	"github.com/jobscout/companion-api/internal/store"
)

// testDB opens the database named by JOBSCOUT_TEST_DB_URL, or skips the
// test when none is configured.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	url := os.Getenv("JOBSCOUT_TEST_DB_URL")
	if url == "" {
		t.Skip("JOBSCOUT_TEST_DB_URL not set; skipping database tests")
	}

	db, err := sql.Open("pgx", url)
	require.NoError(t, err)
	require.NoError(t, db.Ping())

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			status TEXT NOT NULL,
			submitted_at TIMESTAMPTZ NOT NULL,
			completed_at TIMESTAMPTZ,
			error_message TEXT NOT NULL DEFAULT '',
			data JSONB NOT NULL DEFAULT '{}'::jsonb,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)
	`)
	require.NoError(t, err)

	t.Cleanup(func() {
		_, _ = db.Exec(`DELETE FROM tasks`)
		_ = db.Close()
	})

	return db
}

func TestPostgresTaskStoreRoundTrip(t *testing.T) {
	db := testDB(t)
	taskStore := NewPostgresTaskStore(db)
	ctx := context.Background()

	task, err := domain.NewTask(domain.TaskData{
		JobID:    "j1",
		Assessed: domain.Bool(false),
		Extra: map[string]json.RawMessage{
			"job_title": json.RawMessage(`"Platform Engineer"`),
		},
	})
	require.NoError(t, err)
	require.NoError(t, taskStore.SaveTask(ctx, task))

	got, err := taskStore.GetTask(ctx, task.ID)
	require.NoError(t, err)

	assert.Equal(t, task.ID, got.ID)
	assert.Equal(t, domain.TaskStatusPending, got.Status)
	assert.Equal(t, "j1", got.Data.JobID)
	assert.Equal(t, json.RawMessage(`"Platform Engineer"`), got.Data.Extra["job_title"])
	assert.WithinDuration(t, task.SubmittedAt, got.SubmittedAt, time.Second)
	assert.Nil(t, got.CompletedAt)
}

func TestPostgresTaskStoreGetMissing(t *testing.T) {
	db := testDB(t)
	taskStore := NewPostgresTaskStore(db)

	_, err := taskStore.GetTask(context.Background(), "no-such-task")
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestPostgresTaskStoreSaveReplacesWholeRecord(t *testing.T) {
	db := testDB(t)
	taskStore := NewPostgresTaskStore(db)
	ctx := context.Background()

	task, err := domain.NewTask(domain.TaskData{JobID: "j1"})
	require.NoError(t, err)
	require.NoError(t, taskStore.SaveTask(ctx, task))

	task.Data.Assessed = domain.Bool(true)
	task.MarkCompleted(time.Now())
	require.NoError(t, taskStore.SaveTask(ctx, task))

	got, err := taskStore.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusCompleted, got.Status)
	assert.True(t, got.Data.IsAssessed())
	require.NotNil(t, got.CompletedAt)
}

func TestPostgresTaskStoreListOrdersBySubmittedAtDesc(t *testing.T) {
	db := testDB(t)
	taskStore := NewPostgresTaskStore(db)
	ctx := context.Background()

	older, err := domain.NewTask(domain.TaskData{JobID: "j-old"})
	require.NoError(t, err)
	older.SubmittedAt = time.Now().UTC().Add(-time.Hour)
	require.NoError(t, taskStore.SaveTask(ctx, older))

	newer, err := domain.NewTask(domain.TaskData{JobID: "j-new"})
	require.NoError(t, err)
	require.NoError(t, taskStore.SaveTask(ctx, newer))

	tasks, err := taskStore.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "j-new", tasks[0].Data.JobID)
	assert.Equal(t, "j-old", tasks[1].Data.JobID)
}

func TestPostgresTaskStoreDeleteAll(t *testing.T) {
	db := testDB(t)
	taskStore := NewPostgresTaskStore(db)
	ctx := context.Background()

	for _, jobID := range []string{"j1", "j2"} {
		task, err := domain.NewTask(domain.TaskData{JobID: jobID})
		require.NoError(t, err)
		require.NoError(t, taskStore.SaveTask(ctx, task))
	}

	require.NoError(t, taskStore.DeleteAllTasks(ctx))

	tasks, err := taskStore.ListTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestPostgresTaskStoreRejectsInvalidTask(t *testing.T) {
	db := testDB(t)
	taskStore := NewPostgresTaskStore(db)

	err := taskStore.SaveTask(context.Background(), &domain.Task{ID: "t1"})
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
}
