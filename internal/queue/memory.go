package queue

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"server/internal/domain"
	"server/internal/infra"
)

// MemoryQueue runs jobs on goroutines and keeps their state in process
// memory. State is lost on restart, which single-node deployments accept in
// exchange for zero infrastructure.
type MemoryQueue struct {
	run    RunFunc
	logger infra.Logger

	mu      sync.Mutex
	jobs    map[string]*JobStatus
	entropy *ulid.MonotonicEntropy
}

func NewMemoryQueue(run RunFunc, logger infra.Logger) *MemoryQueue {
	return &MemoryQueue{
		run:     run,
		logger:  logger,
		jobs:    make(map[string]*JobStatus),
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
}

func (q *MemoryQueue) newID() string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), q.entropy).String()
}

// Enqueue starts the job immediately and returns its id. The job detaches
// from the caller's context: cancelling a request must not abort a running
// generation.
func (q *MemoryQueue) Enqueue(ctx context.Context, req domain.GenerationRequest) (string, error) {
	id := q.newID()

	q.mu.Lock()
	q.jobs[id] = &JobStatus{ID: id, Status: StatusActive}
	q.mu.Unlock()

	go func() {
		result, err := q.run(context.Background(), req)

		q.mu.Lock()
		defer q.mu.Unlock()
		job := q.jobs[id]
		if err != nil {
			job.Status = StatusFailed
			job.Result = &domain.GenerationResult{Error: err.Error()}
			q.logger.Warn().Err(err).Str("job_id", id).Msg("job failed")
			return
		}
		job.Status = StatusCompleted
		job.Result = result
	}()

	return id, nil
}

// Status reports the job's current state.
func (q *MemoryQueue) Status(ctx context.Context, id string) (JobStatus, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if job, ok := q.jobs[id]; ok {
		return *job, nil
	}
	return JobStatus{ID: id, Status: StatusNotFound}, nil
}

var _ Queue = (*MemoryQueue)(nil)
