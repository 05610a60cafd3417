package cloudsync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oshokin/progress-sync/internal/client/identity"
	"github.com/oshokin/progress-sync/internal/logger"
	"github.com/oshokin/progress-sync/internal/metrics"
)

// defaultQueueCapacity is used when the configured capacity is not positive.
const defaultQueueCapacity = 16

// Rejection reasons reported to the metrics recorder.
const (
	rejectedFull   = "full"
	rejectedClosed = "closed"
)

// QueueOption applies a configuration option to the Queue.
type QueueOption func(*Queue)

// WithRecorder sets the recorder notified about every run and rejection.
func WithRecorder(recorder metrics.Recorder) QueueOption {
	return func(q *Queue) {
		if recorder != nil {
			q.recorder = recorder
		}
	}
}

// Task is a sync run submitted to the queue.
type Task struct {
	// ID uniquely identifies the task.
	ID uuid.UUID
	// UserID identifies the session being synchronized.
	UserID string
	// SubmittedAt is when the task was accepted.
	SubmittedAt time.Time

	session *identity.Session
	done    chan struct{}
	result  *Result
	err     error
}

// Done returns a channel closed when the task has finished.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task finishes or ctx is done.
func (t *Task) Wait(ctx context.Context) (*Result, error) {
	select {
	case <-t.done:
		return t.result, t.err
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for sync task %s: %w", t.ID, ctx.Err())
	}
}

func (t *Task) finish(result *Result, err error) {
	t.result, t.err = result, err
	close(t.done)
}

// Queue runs sync tasks one at a time in submission order.
type Queue struct {
	syncer   Service
	recorder metrics.Recorder
	tasks    chan *Task
	done     chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewQueue creates a queue holding up to capacity pending tasks and starts its worker.
// The worker exits after Shutdown once the pending tasks have run.
// Tasks picked up after ctx is done fail with the context error.
func NewQueue(ctx context.Context, syncer Service, capacity int, opts ...QueueOption) *Queue {
	if capacity <= 0 {
		capacity = defaultQueueCapacity
	}

	q := &Queue{
		syncer:   syncer,
		recorder: metrics.NopRecorder{},
		tasks:    make(chan *Task, capacity),
		done:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(q)
	}

	go q.run(logger.WithName(ctx, "sync-queue"))

	return q
}

// Submit enqueues a sync run for the session without blocking.
func (q *Queue) Submit(ctx context.Context, session *identity.Session) (*Task, error) {
	if session == nil {
		return nil, ErrNoSession
	}

	task := &Task{
		ID:          uuid.New(),
		UserID:      session.UserID,
		SubmittedAt: time.Now(),
		session:     session,
		done:        make(chan struct{}),
	}

	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		q.recorder.RecordRejected(rejectedClosed)

		return nil, ErrQueueClosed
	}

	select {
	case q.tasks <- task:
		logger.Debugf(ctx, "Sync task %s queued for user %s", task.ID, task.UserID)

		return task, nil
	default:
		q.recorder.RecordRejected(rejectedFull)

		return nil, ErrQueueFull
	}
}

// Len returns the number of pending tasks.
func (q *Queue) Len() int {
	return len(q.tasks)
}

// Shutdown stops accepting tasks and waits until the pending ones have run.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.tasks)
	}
	q.mu.Unlock()

	select {
	case <-q.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("sync queue shutdown timed out: %w", ctx.Err())
	}
}

func (q *Queue) run(ctx context.Context) {
	defer close(q.done)

	for task := range q.tasks {
		if err := ctx.Err(); err != nil {
			task.finish(nil, fmt.Errorf("sync task %s canceled: %w", task.ID, err))

			continue
		}

		q.execute(ctx, task)
	}
}

// execute runs one task, turning a panic into a task error.
func (q *Queue) execute(ctx context.Context, task *Task) {
	ctx = logger.WithKV(ctx, "task_id", task.ID.String())

	var (
		result    *Result
		err       error
		startedAt = time.Now()
	)

	func() {
		defer func() {
			if recovered := recover(); recovered != nil {
				err = fmt.Errorf("%w: %v", ErrTaskPanicked, recovered)
			}
		}()

		result, err = q.syncer.Sync(ctx, task.session)
	}()

	outcome := metrics.OutcomeFailed
	if err == nil && result != nil {
		outcome = string(result.Action)
	}

	q.recorder.RecordSync(outcome, time.Since(startedAt))

	if err != nil {
		logger.Errorf(ctx, "Sync failed for user %s: %v", task.UserID, err)
	}

	task.finish(result, err)
}
