package task

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jobscout/companion-api/internal/domain"
	"github.com/jobscout/companion-api/internal/store"
	"github.com/jobscout/companion-api/internal/telemetry"
)

// RegenOutcome is the result of an on-demand regeneration retry loop.
type RegenOutcome string

// Possible regeneration outcomes.
const (
	// RegenOutcomeAssessed means a snapshot with a final assessment
	// arrived before the timeout.
	RegenOutcomeAssessed RegenOutcome = "assessed"

	// RegenOutcomeTimeout means the timeout elapsed first; the task is
	// left in its last merged partial state and remains eligible for
	// ambient polling.
	RegenOutcomeTimeout RegenOutcome = "timeout"
)

// RegeneratorConfig holds configuration for the regeneration retry loop.
type RegeneratorConfig struct {
	// PollInterval is the fixed delay between direct snapshot polls.
	PollInterval time.Duration

	// Timeout bounds the whole wait for an assessed snapshot.
	Timeout time.Duration
}

// DefaultRegeneratorConfig returns the reference cadence: poll every 3
// seconds for up to 120 seconds.
func DefaultRegeneratorConfig() RegeneratorConfig {
	return RegeneratorConfig{
		PollInterval: 3 * time.Second,
		Timeout:      120 * time.Second,
	}
}

// Regenerator drives user-triggered assessment retries: it re-requests
// assessment from the scoring service and then waits, within a bounded
// window, for the result to land.
type Regenerator struct {
	taskStore store.TaskStore
	fetcher   SnapshotFetcher
	remote    AssessmentRegenerator
	config    RegeneratorConfig
	logger    *slog.Logger
}

// NewRegenerator creates a Regenerator over the given collaborators.
func NewRegenerator(
	taskStore store.TaskStore,
	fetcher SnapshotFetcher,
	remote AssessmentRegenerator,
	config RegeneratorConfig,
	logger *slog.Logger,
) *Regenerator {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultRegeneratorConfig().PollInterval
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultRegeneratorConfig().Timeout
	}

	return &Regenerator{
		taskStore: taskStore,
		fetcher:   fetcher,
		remote:    remote,
		config:    config,
		logger:    logger.With("component", "regenerator"),
	}
}

// RegenerateAndWait re-requests assessment for the task and polls the
// snapshot fetcher directly until an assessed snapshot arrives or the
// timeout elapses. Whatever the last snapshot obtained was, it is merged
// into the task exactly as the ambient poller would and persisted.
//
// A rejected regeneration request is surfaced immediately, with the
// task's prior state untouched. A timeout is reported via the outcome,
// not an error: the task stays eligible for ambient polling.
func (g *Regenerator) RegenerateAndWait(ctx context.Context, taskID string) (RegenOutcome, error) {
	t, err := g.taskStore.GetTask(ctx, taskID)
	if err != nil {
		return "", fmt.Errorf("failed to load task: %w", err)
	}
	if t.Data.JobID == "" {
		return "", fmt.Errorf("task %s has no job ID", taskID)
	}

	logger := g.logger.With("task_id", t.ID, "job_id", t.Data.JobID)

	if err := g.remote.RegenerateAssessment(ctx, t.Data.JobID); err != nil {
		telemetry.RegenerationOutcomes.WithLabelValues(telemetry.RegenOutcomeRejected).Inc()
		return "", fmt.Errorf("regeneration rejected: %w", err)
	}

	logger.Info("regeneration accepted, polling for assessment",
		"poll_interval", g.config.PollInterval,
		"timeout", g.config.Timeout)

	last, assessed := g.pollForAssessment(ctx, t.Data.JobID)

	if applySnapshot(t, last, time.Now()) {
		if err := g.taskStore.SaveTask(ctx, t); err != nil {
			return "", fmt.Errorf("failed to persist regenerated task: %w", err)
		}
	}

	if assessed {
		telemetry.RegenerationOutcomes.WithLabelValues(telemetry.RegenOutcomeAssessed).Inc()
		logger.Info("regeneration observed final assessment")
		return RegenOutcomeAssessed, nil
	}

	telemetry.RegenerationOutcomes.WithLabelValues(telemetry.RegenOutcomeTimeout).Inc()
	logger.Warn("regeneration timed out waiting for assessment")
	return RegenOutcomeTimeout, nil
}

// RetryAfterFailure re-requests assessment for a quarantined task and,
// once the request is accepted, resets the task to pending and clears
// its failure markers so it re-enters the standard polling pipeline.
// On rejection the task's prior state is left untouched.
func (g *Regenerator) RetryAfterFailure(ctx context.Context, taskID string) error {
	t, err := g.taskStore.GetTask(ctx, taskID)
	if err != nil {
		return fmt.Errorf("failed to load task: %w", err)
	}
	if t.Data.JobID == "" {
		return fmt.Errorf("task %s has no job ID", taskID)
	}

	if err := g.remote.RegenerateAssessment(ctx, t.Data.JobID); err != nil {
		telemetry.RegenerationOutcomes.WithLabelValues(telemetry.RegenOutcomeRejected).Inc()
		return fmt.Errorf("regeneration rejected: %w", err)
	}

	t.ResetForRetry()
	telemetry.TaskTransitions.WithLabelValues(string(domain.TaskStatusPending)).Inc()

	if err := g.taskStore.SaveTask(ctx, t); err != nil {
		return fmt.Errorf("failed to persist retried task: %w", err)
	}

	g.logger.Info("failed task reset for retry",
		"task_id", t.ID,
		"job_id", t.Data.JobID)
	return nil
}

// pollForAssessment polls the fetcher on a fixed interval until a
// snapshot arrives with a final assessment or the timeout elapses.
// It returns the last snapshot obtained, possibly nil, and whether an
// assessment was observed. In-flight fetches are never aborted; a
// timeout just stops waiting for further snapshots.
func (g *Regenerator) pollForAssessment(ctx context.Context, jobID string) (*domain.Snapshot, bool) {
	deadline := time.Now().Add(g.config.Timeout)

	var last *domain.Snapshot
	for {
		snap, err := g.fetcher.GetJobSnapshot(ctx, jobID)
		if err != nil {
			telemetry.SnapshotFetches.WithLabelValues(telemetry.FetchResultError).Inc()
		} else if snap == nil {
			telemetry.SnapshotFetches.WithLabelValues(telemetry.FetchResultNoData).Inc()
		} else {
			telemetry.SnapshotFetches.WithLabelValues(telemetry.FetchResultSnapshot).Inc()
			last = snap
			if snap.IsAssessed() {
				return last, true
			}
		}

		if time.Now().Add(g.config.PollInterval).After(deadline) {
			return last, false
		}

		select {
		case <-ctx.Done():
			return last, false
		case <-time.After(g.config.PollInterval):
		}
	}
}
