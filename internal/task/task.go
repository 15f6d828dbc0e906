package task

import (
	"context"
	"reflect"
	"time"

	"github.com/jobscout/companion-api/internal/domain"
	"github.com/jobscout/companion-api/internal/telemetry"
)

// errAssessmentFailed is the generic message attached when a snapshot
// reports permanent failure.
const errAssessmentFailed = "assessment failed"

// SnapshotFetcher retrieves the remote canonical state for a job.
// A (nil, nil) return means the remote has no usable data for the job;
// an error means the fetch itself failed. Either way the caller decides
// whether to retry.
type SnapshotFetcher interface {
	GetJobSnapshot(ctx context.Context, jobID string) (*domain.Snapshot, error)
}

// AssessmentRegenerator requests a fresh assessment for a job.
// A rejection is surfaced as an error.
type AssessmentRegenerator interface {
	RegenerateAssessment(ctx context.Context, jobID string) error
}

// RecentJobsLister returns recent job summaries, including the applied
// flag, used by the legacy-field backfill.
type RecentJobsLister interface {
	ListRecentJobs(ctx context.Context, daysBack, limit int) ([]domain.JobSummary, error)
}

// eligible reports whether a task still awaits resolution: it must have
// a job ID, must not already be failed or in the error state, and must
// be either not completed or completed without a final assessment.
func eligible(t *domain.Task) bool {
	if t == nil || t.Data.JobID == "" {
		return false
	}
	if t.Data.IsFailed() || t.Status == domain.TaskStatusError {
		return false
	}
	return t.Status != domain.TaskStatusCompleted || !t.Data.IsAssessed()
}

// applySnapshot merges a snapshot into the task and applies the
// transition rule shared by the ambient poller and the regeneration
// retry loop: a failed result quarantines the task, an assessed result
// completes it, anything else keeps it pending with the partial data.
// Returns true when the task changed and needs persisting.
func applySnapshot(t *domain.Task, snap *domain.Snapshot, now time.Time) bool {
	if snap == nil {
		return false
	}

	merged := domain.MergeData(t.Data, *snap)

	switch {
	case merged.IsFailed():
		if t.Status == domain.TaskStatusError && reflect.DeepEqual(t.Data, merged) {
			return false
		}
		t.Data = merged
		msg := merged.FailureReason()
		if msg == "" {
			msg = errAssessmentFailed
		}
		t.MarkFailed(msg)
		telemetry.TaskTransitions.WithLabelValues(string(domain.TaskStatusError)).Inc()
		return true

	case merged.IsAssessed():
		if t.Status == domain.TaskStatusCompleted && reflect.DeepEqual(t.Data, merged) {
			return false
		}
		t.Data = merged
		if t.Status != domain.TaskStatusCompleted {
			t.MarkCompleted(now)
			telemetry.TaskTransitions.WithLabelValues(string(domain.TaskStatusCompleted)).Inc()
		}
		return true

	default:
		if reflect.DeepEqual(t.Data, merged) {
			return false
		}
		t.Data = merged
		return true
	}
}
