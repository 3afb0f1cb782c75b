// Package jobs runs translation jobs in the background with bounded
// concurrency. Each job owns a cancelable context; cancellation is a
// terminal state of its own, distinct from failure.
package jobs

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oukeidos/doctran/internal/llm"
	"github.com/oukeidos/doctran/internal/logger"
	"github.com/oukeidos/doctran/internal/progress"
)

// Status is the lifecycle state of a job.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Update is a progress report fanned out to subscribers of a job.
type Update struct {
	JobID       string
	Status      Status
	CurrentPage int
	TotalPages  int
	TokensUsed  int
	CostSoFar   float64
	TimeElapsed float64
	Message     string
}

// Runner is the work a job performs. It receives the job's context and a
// progress callback to report through.
type Runner func(ctx context.Context, onProgress progress.Callback) (*llm.Response, error)

// Job is one queued translation.
type Job struct {
	ID          string
	Status      Status
	CreatedAt   time.Time
	StartedAt   time.Time
	CompletedAt time.Time
	Result      *llm.Response
	Err         error
	Progress    Update

	cancel context.CancelFunc
}

// Queue manages background jobs with a concurrency cap.
type Queue struct {
	mu          sync.Mutex
	jobs        map[string]*Job
	subscribers map[string][]func(Update)
	sem         chan struct{}
	wg          sync.WaitGroup
}

// NewQueue creates a queue running at most maxConcurrent jobs at once.
func NewQueue(maxConcurrent int) *Queue {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Queue{
		jobs:        make(map[string]*Job),
		subscribers: make(map[string][]func(Update)),
		sem:         make(chan struct{}, maxConcurrent),
	}
}

// Submit registers a job and starts it once a slot frees up. It returns the
// job ID immediately.
func (q *Queue) Submit(ctx context.Context, run Runner) string {
	jobCtx, cancel := context.WithCancel(ctx)
	job := &Job{
		ID:        uuid.NewString(),
		Status:    StatusPending,
		CreatedAt: time.Now(),
		cancel:    cancel,
	}

	q.mu.Lock()
	q.jobs[job.ID] = job
	q.mu.Unlock()

	q.wg.Add(1)
	go q.execute(jobCtx, job, run)
	return job.ID
}

func (q *Queue) execute(ctx context.Context, job *Job, run Runner) {
	defer q.wg.Done()

	select {
	case q.sem <- struct{}{}:
		defer func() { <-q.sem }()
	case <-ctx.Done():
		q.finish(job, nil, ctx.Err())
		return
	}

	q.mu.Lock()
	if job.Status == StatusCancelled {
		q.mu.Unlock()
		return
	}
	job.Status = StatusRunning
	job.StartedAt = time.Now()
	q.mu.Unlock()

	onProgress := func(current, total, tokens int, cost, elapsed float64, message string) {
		q.publish(job, Update{
			JobID:       job.ID,
			Status:      StatusRunning,
			CurrentPage: current,
			TotalPages:  total,
			TokensUsed:  tokens,
			CostSoFar:   cost,
			TimeElapsed: elapsed,
			Message:     message,
		})
	}

	result, err := run(ctx, onProgress)
	q.finish(job, result, err)
}

func (q *Queue) finish(job *Job, result *llm.Response, err error) {
	q.mu.Lock()
	job.CompletedAt = time.Now()
	switch {
	case err == nil:
		job.Status = StatusCompleted
		job.Result = result
	case errors.Is(err, context.Canceled):
		job.Status = StatusCancelled
	default:
		job.Status = StatusFailed
		job.Err = err
		logger.Error("Job failed", "job_id", job.ID, "error", err)
	}
	status := job.Status
	q.mu.Unlock()

	q.publish(job, Update{JobID: job.ID, Status: status})
}

func (q *Queue) publish(job *Job, u Update) {
	q.mu.Lock()
	job.Progress = u
	subs := make([]func(Update), len(q.subscribers[job.ID]))
	copy(subs, q.subscribers[job.ID])
	q.mu.Unlock()

	for _, fn := range subs {
		fn(u)
	}
}

// Get returns a snapshot of the job, or nil when unknown.
func (q *Queue) Get(id string) *Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	job, ok := q.jobs[id]
	if !ok {
		return nil
	}
	snapshot := *job
	snapshot.cancel = nil
	return &snapshot
}

// All returns snapshots of every known job.
func (q *Queue) All() []*Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]*Job, 0, len(q.jobs))
	for _, job := range q.jobs {
		snapshot := *job
		snapshot.cancel = nil
		out = append(out, &snapshot)
	}
	return out
}

// Cancel stops a pending or running job. Finished jobs cannot be cancelled.
func (q *Queue) Cancel(id string) bool {
	q.mu.Lock()
	job, ok := q.jobs[id]
	if !ok || (job.Status != StatusPending && job.Status != StatusRunning) {
		q.mu.Unlock()
		return false
	}
	if job.Status == StatusPending {
		job.Status = StatusCancelled
	}
	cancel := job.cancel
	q.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	return true
}

// Subscribe registers a callback for a job's progress updates.
func (q *Queue) Subscribe(id string, fn func(Update)) {
	if fn == nil {
		return
	}
	q.mu.Lock()
	q.subscribers[id] = append(q.subscribers[id], fn)
	q.mu.Unlock()
}

// Unsubscribe drops all callbacks for a job.
func (q *Queue) Unsubscribe(id string) {
	q.mu.Lock()
	delete(q.subscribers, id)
	q.mu.Unlock()
}

// Wait blocks until every submitted job has finished.
func (q *Queue) Wait() {
	q.wg.Wait()
}
