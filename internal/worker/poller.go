package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/ocr-jobs/internal/repository"
)

// Poller periodically lists PENDING jobs and feeds them to the queue. It is
// the only dispatch path, so crashed workers are covered too: their jobs stay
// PENDING and get picked up on the next tick.
type Poller struct {
	jobs     repository.JobRepository
	queue    *Queue
	interval time.Duration
	batch    int
	logger   *slog.Logger
}

func NewPoller(jobs repository.JobRepository, queue *Queue, interval time.Duration, batch int, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if batch <= 0 {
		batch = 100
	}
	return &Poller{jobs: jobs, queue: queue, interval: interval, batch: batch, logger: logger}
}

// Run blocks until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info("poller started", "interval", p.interval, "batch", p.batch)
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("poller stopped")
			return
		case <-ticker.C:
			p.dispatch(ctx)
		}
	}
}

func (p *Poller) dispatch(ctx context.Context) {
	jobs, err := p.jobs.ListPending(ctx, p.batch)
	if err != nil {
		p.logger.Error("poller.list_pending_failed", "error", err)
		return
	}
	for _, job := range jobs {
		if err := p.queue.Enqueue(ctx, job.ID.String()); err != nil {
			p.logger.Error("poller.enqueue_failed", "job_id", job.ID, "error", err)
		}
	}
}
