package api

import (
	"time"

	"github.com/jobscout/companion-api/internal/domain"
)

// SubmitTaskRequest represents the request body for submitting a new
// task. Data carries the scraped job payload; job_id inside it is
// required.
type SubmitTaskRequest struct {
	Data domain.TaskData `json:"data" validate:"required"`
}

// SetAppliedRequest represents the request body for recording the
// user's applied decision.
type SetAppliedRequest struct {
	Applied bool `json:"applied"`
}

// TaskResponse represents the response data for a tracked task.
type TaskResponse struct {
	ID          string          `json:"id"`
	Status      string          `json:"status"`
	SubmittedAt time.Time       `json:"submittedAt"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
	Error       string          `json:"error,omitempty"`
	Data        domain.TaskData `json:"data"`
	DecentLead  bool            `json:"decent_lead"`
}

// RegenerateResponse reports the outcome of a regeneration request.
type RegenerateResponse struct {
	Outcome string `json:"outcome"`
}

// taskToResponse transforms a domain task to its API representation.
func taskToResponse(t *domain.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Status:      string(t.Status),
		SubmittedAt: t.SubmittedAt,
		CompletedAt: t.CompletedAt,
		Error:       t.ErrorMessage,
		Data:        t.Data,
		DecentLead:  t.Status == domain.TaskStatusCompleted && t.Data.IsDecentLead(),
	}
}

// tasksToResponse transforms a task list, newest submissions first
// ordering is preserved from the store.
func tasksToResponse(tasks []*domain.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, taskToResponse(t))
	}
	return out
}
