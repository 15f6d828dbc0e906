package task

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jobscout/companion-api/internal/domain"
	"github.com/jobscout/companion-api/internal/store"
	"github.com/jobscout/companion-api/internal/telemetry"
)

// ReconcilerConfig holds configuration for the reconciliation poller.
type ReconcilerConfig struct {
	// Interval is the fixed period between poll cycles.
	Interval time.Duration

	// Concurrency bounds how many snapshot fetches run at once within
	// a cycle.
	Concurrency int
}

// DefaultReconcilerConfig returns a ReconcilerConfig with the reference
// cadence: a 15 second period and 5 concurrent fetches.
func DefaultReconcilerConfig() ReconcilerConfig {
	return ReconcilerConfig{
		Interval:    15 * time.Second,
		Concurrency: 5,
	}
}

// Reconciler is the owned polling scheduler that resolves tasks stuck in
// a pending state. On a fixed period it scans the task store for tasks
// still awaiting resolution, fetches snapshots for them with bounded
// concurrency, and applies the merge result back to the store.
//
// Only one polling schedule is active per Reconciler: Start while
// running is a no-op, and a tick that fires while the previous cycle is
// still draining is skipped (each cycle is idempotent, so a skipped tick
// loses nothing).
type Reconciler struct {
	taskStore store.TaskStore
	fetcher   SnapshotFetcher

	interval    time.Duration
	concurrency int

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	// cycleMu serializes cycles; TryLock implements skip-if-running.
	cycleMu sync.Mutex

	logger *slog.Logger
}

// NewReconciler creates a new Reconciler over the given store and fetcher.
func NewReconciler(
	taskStore store.TaskStore,
	fetcher SnapshotFetcher,
	config ReconcilerConfig,
	logger *slog.Logger,
) *Reconciler {
	if config.Interval <= 0 {
		config.Interval = DefaultReconcilerConfig().Interval
	}
	if config.Concurrency <= 0 {
		logger.Warn("invalid poll concurrency specified, using default",
			"specified", config.Concurrency,
			"default", 1)
		config.Concurrency = 1
	}

	return &Reconciler{
		taskStore:   taskStore,
		fetcher:     fetcher,
		interval:    config.Interval,
		concurrency: config.Concurrency,
		logger:      logger.With("component", "reconciler"),
	}
}

// Start launches the polling schedule: an immediate first cycle, then one
// cycle per interval. Starting an already-running Reconciler is a no-op.
func (r *Reconciler) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		r.logger.Debug("reconciler already running, ignoring start")
		return
	}
	r.running = true

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel

	r.wg.Add(1)
	go r.loop(ctx)

	r.logger.Info("reconciler started",
		"interval", r.interval,
		"concurrency", r.concurrency)
}

// Stop cancels the polling schedule and waits for the in-flight cycle's
// workers to drain.
func (r *Reconciler) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	cancel := r.cancel
	r.mu.Unlock()

	cancel()
	r.wg.Wait()
	r.logger.Info("reconciler stopped")
}

// Running reports whether the polling schedule is active.
func (r *Reconciler) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// loop drives the schedule: one immediate cycle, then ticks.
func (r *Reconciler) loop(ctx context.Context) {
	defer r.wg.Done()

	r.RunCycle(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.RunCycle(ctx)
		}
	}
}

// RunCycle executes one reconciliation cycle. If another cycle is still
// in flight the call is skipped. Cycles are idempotent: running the same
// cycle twice against unchanged remote state produces no second store
// mutation.
func (r *Reconciler) RunCycle(ctx context.Context) {
	if !r.cycleMu.TryLock() {
		r.logger.Debug("previous cycle still draining, skipping tick")
		telemetry.PollCycles.WithLabelValues(telemetry.CycleOutcomeSkipped).Inc()
		return
	}
	defer r.cycleMu.Unlock()

	telemetry.PollCycles.WithLabelValues(telemetry.CycleOutcomeRun).Inc()
	started := time.Now()
	defer func() {
		telemetry.PollCycleDuration.Observe(time.Since(started).Seconds())
	}()

	tasks, err := r.taskStore.ListTasks(ctx)
	if err != nil {
		// Background failure: absorbed, next cycle retries.
		r.logger.Error("failed to list tasks for reconciliation", "error", err)
		return
	}

	var pending []*domain.Task
	for _, t := range tasks {
		if eligible(t) {
			pending = append(pending, t)
		}
	}

	telemetry.PendingTasks.Set(float64(len(pending)))
	if len(pending) == 0 {
		return
	}

	r.logger.Debug("reconciliation cycle dispatching",
		"eligible_count", len(pending))

	// Bounded worker pool draining a shared queue: each eligible task is
	// dispatched exactly once per cycle, and a slow fetch never blocks
	// dispatch of the others beyond the pool width.
	queue := make(chan *domain.Task)

	workers := r.concurrency
	if len(pending) < workers {
		workers = len(pending)
	}

	var cycleWG sync.WaitGroup
	for i := 0; i < workers; i++ {
		cycleWG.Add(1)
		go func(workerID int) {
			defer cycleWG.Done()
			for t := range queue {
				r.reconcileTask(ctx, t, workerID)
			}
		}(i)
	}

	for _, t := range pending {
		queue <- t
	}
	close(queue)
	cycleWG.Wait()
}

// reconcileTask fetches one task's snapshot and applies the transition
// rule. All failures degrade silently; the next cycle is the retry.
func (r *Reconciler) reconcileTask(ctx context.Context, t *domain.Task, workerID int) {
	logger := r.logger.With(
		"task_id", t.ID,
		"job_id", t.Data.JobID,
		"worker_id", workerID,
	)

	snap, err := r.fetcher.GetJobSnapshot(ctx, t.Data.JobID)
	if err != nil {
		telemetry.SnapshotFetches.WithLabelValues(telemetry.FetchResultError).Inc()
		logger.Debug("snapshot fetch failed, retrying next cycle", "error", err)
		return
	}
	if snap == nil {
		telemetry.SnapshotFetches.WithLabelValues(telemetry.FetchResultNoData).Inc()
		return
	}
	telemetry.SnapshotFetches.WithLabelValues(telemetry.FetchResultSnapshot).Inc()

	if !applySnapshot(t, snap, time.Now()) {
		return
	}

	if err := r.taskStore.SaveTask(ctx, t); err != nil {
		logger.Error("failed to persist reconciled task", "error", err)
		return
	}

	logger.Debug("task reconciled", "status", t.Status)
}
