package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jobscout/companion-api/internal/domain"
	"github.com/jobscout/companion-api/internal/platform/logger"
	"github.com/jobscout/companion-api/internal/store"
)

// PostgresTaskStore implements the store.TaskStore interface using PostgreSQL.
type PostgresTaskStore struct {
	db store.DBTX
}

// NewPostgresTaskStore creates a new PostgresTaskStore.
func NewPostgresTaskStore(db store.DBTX) *PostgresTaskStore {
	return &PostgresTaskStore{
		db: db,
	}
}

// GetTask retrieves a single task by its ID.
func (s *PostgresTaskStore) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	log := logger.FromContext(ctx)

	query := `
		SELECT id, status, submitted_at, completed_at, error_message, data
		FROM tasks
		WHERE id = $1
	`

	row := s.db.QueryRowContext(ctx, query, id)

	task, err := scanTask(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task",
			"task_id", id,
			"error", err)
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return task, nil
}

// ListTasks retrieves every tracked task, most recently submitted first.
func (s *PostgresTaskStore) ListTasks(ctx context.Context) ([]*domain.Task, error) {
	log := logger.FromContext(ctx)

	query := `
		SELECT id, status, submitted_at, completed_at, error_message, data
		FROM tasks
		ORDER BY submitted_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		log.Error("failed to query tasks", "error", err)
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*domain.Task

	for rows.Next() {
		task, err := scanTask(rows.Scan)
		if err != nil {
			log.Error("failed to scan task row", "error", err)
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		log.Error("error iterating task rows", "error", err)
		return nil, fmt.Errorf("error iterating task rows: %w", err)
	}

	return tasks, nil
}

// SaveTask persists a task, inserting or replacing the whole record.
func (s *PostgresTaskStore) SaveTask(ctx context.Context, task *domain.Task) error {
	log := logger.FromContext(ctx)

	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	data, err := json.Marshal(task.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal task data: %w", err)
	}

	query := `
		INSERT INTO tasks (id, status, submitted_at, completed_at, error_message, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			submitted_at = EXCLUDED.submitted_at,
			completed_at = EXCLUDED.completed_at,
			error_message = EXCLUDED.error_message,
			data = EXCLUDED.data,
			updated_at = EXCLUDED.updated_at
	`

	now := time.Now().UTC()

	var completedAt sql.NullTime
	if task.CompletedAt != nil {
		completedAt = sql.NullTime{Time: *task.CompletedAt, Valid: true}
	}

	_, err = s.db.ExecContext(ctx, query,
		task.ID,
		task.Status,
		task.SubmittedAt,
		completedAt,
		task.ErrorMessage,
		data,
		now,
	)

	if err != nil {
		log.Error("failed to save task",
			"task_id", task.ID,
			"job_id", task.Data.JobID,
			"error", err)
		return fmt.Errorf("failed to save task to database: %w", err)
	}

	return nil
}

// DeleteAllTasks removes every tracked task.
func (s *PostgresTaskStore) DeleteAllTasks(ctx context.Context) error {
	log := logger.FromContext(ctx)

	_, err := s.db.ExecContext(ctx, `DELETE FROM tasks`)
	if err != nil {
		log.Error("failed to delete tasks", "error", err)
		return fmt.Errorf("failed to delete tasks: %w", err)
	}

	return nil
}

// scanTask reads one task row via the given scan function, shared by
// the single-row and multi-row query paths.
func scanTask(scan func(dest ...any) error) (*domain.Task, error) {
	var (
		id           string
		status       domain.TaskStatus
		submittedAt  time.Time
		completedAt  sql.NullTime
		errorMessage sql.NullString
		data         []byte
	)

	if err := scan(&id, &status, &submittedAt, &completedAt, &errorMessage, &data); err != nil {
		return nil, err
	}

	task := &domain.Task{
		ID:           id,
		Status:       status,
		SubmittedAt:  submittedAt,
		ErrorMessage: errorMessage.String,
	}

	if completedAt.Valid {
		ts := completedAt.Time
		task.CompletedAt = &ts
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &task.Data); err != nil {
			return nil, fmt.Errorf("failed to unmarshal task data: %w", err)
		}
	}

	return task, nil
}

var _ store.TaskStore = (*PostgresTaskStore)(nil)
