package task

import (
	"context"
	"sync"

	"github.com/jobscout/companion-api/internal/domain"
	"github.com/jobscout/companion-api/internal/store"
)

// memStore is a thread-safe in-memory TaskStore that counts writes,
// used to observe what the pollers persist.
type memStore struct {
	mu      sync.Mutex
	tasks   map[string]*domain.Task
	saves   int
	listErr error
	saveErr error
}

func newMemStore(tasks ...*domain.Task) *memStore {
	s := &memStore{tasks: make(map[string]*domain.Task)}
	for _, t := range tasks {
		s.tasks[t.ID] = t.Clone()
	}
	return s
}

func (s *memStore) GetTask(_ context.Context, id string) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	return t.Clone(), nil
}

func (s *memStore) ListTasks(_ context.Context) ([]*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]*domain.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t.Clone())
	}
	return out, nil
}

func (s *memStore) SaveTask(_ context.Context, t *domain.Task) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.tasks[t.ID] = t.Clone()
	s.saves++
	return nil
}

func (s *memStore) DeleteAllTasks(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = make(map[string]*domain.Task)
	return nil
}

func (s *memStore) saveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

func (s *memStore) get(id string) *domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks[id].Clone()
}

// stubFetcher returns canned snapshots per job ID and records which
// jobs were fetched. A nil entry models "no usable data".
type stubFetcher struct {
	mu        sync.Mutex
	snapshots map[string]*domain.Snapshot
	errs      map[string]error
	fetched   []string

	// onFetch, when set, runs before each fetch; used to model slow
	// remotes and to mutate the canned snapshot mid-test.
	onFetch func(jobID string)
}

func newStubFetcher() *stubFetcher {
	return &stubFetcher{
		snapshots: make(map[string]*domain.Snapshot),
		errs:      make(map[string]error),
	}
}

func (f *stubFetcher) GetJobSnapshot(_ context.Context, jobID string) (*domain.Snapshot, error) {
	if f.onFetch != nil {
		f.onFetch(jobID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetched = append(f.fetched, jobID)
	if err := f.errs[jobID]; err != nil {
		return nil, err
	}
	snap := f.snapshots[jobID]
	if snap == nil {
		return nil, nil
	}
	clone := snap.Clone()
	return &clone, nil
}

func (f *stubFetcher) set(jobID string, snap *domain.Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshots[jobID] = snap
}

func (f *stubFetcher) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.fetched)
}

// stubRegenerator accepts or rejects regeneration requests.
type stubRegenerator struct {
	mu       sync.Mutex
	err      error
	requests []string
}

func (r *stubRegenerator) RegenerateAssessment(_ context.Context, jobID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, jobID)
	return r.err
}

func (r *stubRegenerator) requestCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.requests)
}

// stubLister serves a canned recent-jobs listing.
type stubLister struct {
	summaries []domain.JobSummary
	err       error

	gotDaysBack int
	gotLimit    int
	calls       int
}

func (l *stubLister) ListRecentJobs(_ context.Context, daysBack, limit int) ([]domain.JobSummary, error) {
	l.calls++
	l.gotDaysBack = daysBack
	l.gotLimit = limit
	if l.err != nil {
		return nil, l.err
	}
	return l.summaries, nil
}

// pendingTask builds a pending task tracking the given job.
func pendingTask(id, jobID string) *domain.Task {
	return &domain.Task{
		ID:     id,
		Status: domain.TaskStatusPending,
		Data:   domain.TaskData{JobID: jobID},
	}
}
