package queue

import (
	"context"
	"log/slog"
	"time"

	"github.com/meowfish/shop-api/internal/metrics"
	"github.com/meowfish/shop-api/internal/repository"
)

// Reaper recovers tasks whose worker died mid-run: a running task with a
// stale heartbeat goes back to pending while retries remain, or to failed
// once they are exhausted.
type Reaper struct {
	tasks            repository.TaskRepository
	logger           *slog.Logger
	interval         time.Duration
	heartbeatTimeout time.Duration
}

func NewReaper(tasks repository.TaskRepository, logger *slog.Logger, interval, heartbeatTimeout time.Duration) *Reaper {
	return &Reaper{
		tasks:            tasks,
		logger:           logger.With("component", "reaper"),
		interval:         interval,
		heartbeatTimeout: heartbeatTimeout,
	}
}

func (r *Reaper) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reaper started", "interval", r.interval, "heartbeat_timeout", r.heartbeatTimeout)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reaper shut down")
			return
		case <-ticker.C:
			r.reap(ctx)
		}
	}
}

func (r *Reaper) reap(ctx context.Context) {
	start := time.Now()
	staleCutoff := start.Add(-r.heartbeatTimeout)

	rescheduled, err := r.tasks.RescheduleStale(ctx, staleCutoff, 100)
	if err != nil {
		r.logger.Error("reschedule stale", "error", err)
	} else if rescheduled > 0 {
		metrics.ReaperRescuedTotal.WithLabelValues("rescheduled").Add(float64(rescheduled))
		r.logger.Info("rescheduled stale tasks", "count", rescheduled)
	}

	failed, err := r.tasks.FailStale(ctx, staleCutoff, 100)
	if err != nil {
		r.logger.Error("fail stale", "error", err)
	} else if failed > 0 {
		metrics.ReaperRescuedTotal.WithLabelValues("failed").Add(float64(failed))
		r.logger.Warn("permanently failed stale tasks", "count", failed)
	}

	metrics.ReaperCycleDuration.Observe(time.Since(start).Seconds())
}
