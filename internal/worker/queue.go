package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Queue fans job ids out to a fixed pool of workers. Enqueue blocks when the
// buffer is full, which backpressures the poller naturally.
type Queue struct {
	task    *Task
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch      chan string
	wg      sync.WaitGroup
	senders sync.WaitGroup
	once    sync.Once

	mu       sync.Mutex
	closed   bool
	inFlight map[string]struct{}
}

type Option func(*Queue)

func WithWorkers(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.ch = make(chan string, n)
		}
	}
}

func WithProcessTimeout(d time.Duration) Option {
	return func(q *Queue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewQueue(task *Task, logger *slog.Logger, opts ...Option) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &Queue{
		task:     task,
		logger:   logger,
		workers:  4,
		timeout:  10 * time.Minute,
		ch:       make(chan string, 256),
		inFlight: make(map[string]struct{}),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *Queue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Info("worker started", "worker_id", workerID)

				for jobID := range q.ch {
					ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
					q.task.ProcessJob(ctx, jobID)
					cancel()

					q.mu.Lock()
					delete(q.inFlight, jobID)
					q.mu.Unlock()
				}

				q.logger.Info("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

// Enqueue hands a job id to the pool. Ids already queued or running are
// skipped so the poller can re-list PENDING jobs without double dispatch.
// The sender registers with the closed flag still held so Shutdown cannot
// close the channel underneath a send blocked on a full buffer.
func (q *Queue) Enqueue(_ context.Context, jobID string) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		q.logger.Warn("cannot enqueue: queue is shutting down", "job_id", jobID)
		return nil
	}
	if _, ok := q.inFlight[jobID]; ok {
		q.mu.Unlock()
		return nil
	}
	q.inFlight[jobID] = struct{}{}
	q.senders.Add(1)
	q.mu.Unlock()
	defer q.senders.Done()

	select {
	case q.ch <- jobID:
		q.logger.Info("queued job for processing", "job_id", jobID)
	default:
		q.logger.Warn("queue full, applying backpressure", "job_id", jobID)
		q.ch <- jobID
	}
	return nil
}

// Shutdown stops accepting work and waits for in-flight jobs until ctx
// expires. Senders that passed the closed check are drained before the
// channel closes; workers keep receiving until then, so those sends finish.
func (q *Queue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()

	q.senders.Wait()
	close(q.ch)

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}
