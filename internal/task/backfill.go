package task

import (
	"context"
	"log/slog"

	"github.com/jobscout/companion-api/internal/domain"
	"github.com/jobscout/companion-api/internal/store"
	"github.com/jobscout/companion-api/internal/telemetry"
)

// BackfillConfig holds configuration for the legacy applied-flag
// backfill.
type BackfillConfig struct {
	// DaysBack bounds how far back the recent-jobs listing reaches.
	DaysBack int

	// Limit caps the number of summaries fetched per run.
	Limit int
}

// DefaultBackfillConfig returns the reference window: 30 days back,
// at most 300 summaries.
func DefaultBackfillConfig() BackfillConfig {
	return BackfillConfig{
		DaysBack: 30,
		Limit:    300,
	}
}

// Backfiller repairs tasks created before the applied flag existed by
// copying the flag from the remote recent-jobs listing, defaulting to
// not-applied when the job no longer appears there.
type Backfiller struct {
	taskStore store.TaskStore
	lister    RecentJobsLister
	config    BackfillConfig
	logger    *slog.Logger
}

// NewBackfiller creates a Backfiller over the given collaborators.
func NewBackfiller(taskStore store.TaskStore, lister RecentJobsLister, config BackfillConfig, logger *slog.Logger) *Backfiller {
	if config.DaysBack <= 0 {
		config.DaysBack = DefaultBackfillConfig().DaysBack
	}
	if config.Limit <= 0 {
		config.Limit = DefaultBackfillConfig().Limit
	}

	return &Backfiller{
		taskStore: taskStore,
		lister:    lister,
		config:    config,
		logger:    logger.With("component", "backfiller"),
	}
}

// BackfillApplied finds tasks that have a job ID but no applied flag
// and fills the flag in, fetching the recent-jobs listing once per run.
// It returns the number of tasks updated. Per-task persistence errors
// are logged and skipped so a single bad row never blocks the rest.
func (b *Backfiller) BackfillApplied(ctx context.Context) (int, error) {
	tasks, err := b.taskStore.ListTasks(ctx)
	if err != nil {
		return 0, err
	}

	var missing []*domain.Task
	for _, t := range tasks {
		if t.Data.JobID != "" && t.Data.JobApplied == nil {
			missing = append(missing, t)
		}
	}
	if len(missing) == 0 {
		return 0, nil
	}

	b.logger.Info("backfilling applied flag",
		"tasks", len(missing),
		"days_back", b.config.DaysBack,
		"limit", b.config.Limit)

	// One listing covers every task in the run. If the listing cannot
	// be fetched, every missing flag defaults to not-applied, matching
	// the remote's treatment of jobs that fell out of the window.
	applied := make(map[string]int)
	summaries, err := b.lister.ListRecentJobs(ctx, b.config.DaysBack, b.config.Limit)
	if err != nil {
		b.logger.Warn("recent jobs listing unavailable, defaulting applied flags", "error", err)
	} else {
		for _, s := range summaries {
			applied[s.JobID] = s.JobApplied
		}
	}

	updated := 0
	for _, t := range missing {
		flag, ok := applied[t.Data.JobID]
		if ok {
			telemetry.BackfilledTasks.WithLabelValues(telemetry.BackfillSourceMatch).Inc()
		} else {
			telemetry.BackfilledTasks.WithLabelValues(telemetry.BackfillSourceDefault).Inc()
		}
		t.Data.JobApplied = domain.Int(flag)

		if err := b.taskStore.SaveTask(ctx, t); err != nil {
			b.logger.Error("failed to persist backfilled task",
				"task_id", t.ID,
				"error", err)
			continue
		}
		updated++
	}

	return updated, nil
}
