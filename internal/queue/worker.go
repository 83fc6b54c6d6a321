package queue

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"time"

	"github.com/meowfish/shop-api/internal/domain"
	"github.com/meowfish/shop-api/internal/metrics"
	"github.com/meowfish/shop-api/internal/repository"
)

// Runner is the task body the worker invokes for each claimed run.
// Implemented by notify.Task.
type Runner interface {
	Run(ctx context.Context, runID string, targetID int64, kind domain.NotificationKind) error
}

type Worker struct {
	id           string
	tasks        repository.TaskRepository
	runner       Runner
	policy       RetryPolicy
	logger       *slog.Logger
	pollInterval time.Duration
	concurrency  int
	sem          chan struct{}
}

func NewWorker(
	tasks repository.TaskRepository,
	runner Runner,
	policy RetryPolicy,
	logger *slog.Logger,
	pollInterval time.Duration,
	concurrency int,
) *Worker {
	hostname, _ := os.Hostname()
	id := fmt.Sprintf("%s-%d", hostname, os.Getpid())
	return &Worker{
		id:           id,
		tasks:        tasks,
		runner:       runner,
		policy:       policy,
		logger:       logger.With("worker_id", id),
		pollInterval: pollInterval,
		concurrency:  concurrency,
		sem:          make(chan struct{}, concurrency),
	}
}

func (w *Worker) Start(ctx context.Context) {
	metrics.WorkerStartTime.SetToCurrentTime()

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker started", "concurrency", w.concurrency)

	for {
		select {
		case <-ctx.Done():
			metrics.WorkerShutdownsTotal.Inc()
			w.logger.Info("worker shut down")
			return
		case <-ticker.C:
			w.processBatch(ctx)
		}
	}
}

func (w *Worker) processBatch(ctx context.Context) {
	available := cap(w.sem) - len(w.sem)
	if available == 0 {
		return
	}

	tasks, err := w.tasks.Claim(ctx, w.id, available)
	if err != nil {
		w.logger.Error("claim tasks", "error", err)
		return
	}

	if len(tasks) == 0 {
		return
	}

	w.logger.Info("claimed tasks", "count", len(tasks), "slots_used", len(w.sem)+len(tasks), "slots_total", cap(w.sem))

	for _, task := range tasks {
		w.sem <- struct{}{}
		go func(t *domain.Task) {
			metrics.TasksInFlight.Inc()
			defer metrics.TasksInFlight.Dec()
			defer func() { <-w.sem }()
			w.runTask(ctx, t)
		}(task)
	}
}

func (w *Worker) runTask(ctx context.Context, task *domain.Task) {
	metrics.TaskPickupLatency.Observe(time.Since(task.CreatedAt).Seconds())

	heartbeatCtx, cancelHeartbeat := context.WithCancel(ctx)
	defer cancelHeartbeat()
	go w.heartbeat(heartbeatCtx, task.RunID)

	w.logger.Info("running notification task",
		"run_id", task.RunID, "target_id", task.TargetID, "kind", task.Kind,
		"attempt", task.RetryCount+1,
	)

	start := time.Now()
	err := w.runner.Run(ctx, task.RunID, task.TargetID, task.Kind)
	duration := time.Since(start)

	if err == nil {
		metrics.TaskRunDuration.WithLabelValues("success").Observe(duration.Seconds())
		metrics.TasksCompletedTotal.WithLabelValues("success").Inc()
		if err := w.tasks.Complete(ctx, task.RunID); err != nil {
			w.logger.Error("mark task done", "run_id", task.RunID, "error", err)
		}
		w.logger.Info("notification sent", "run_id", task.RunID, "duration", duration)
		return
	}

	metrics.TaskRunDuration.WithLabelValues("failure").Observe(duration.Seconds())

	if task.RetryCount < task.MaxRetries {
		retryAt := time.Now().Add(retryDelay(w.policy, task.RetryCount))
		if err := w.tasks.Reschedule(ctx, task.RunID, err.Error(), retryAt); err != nil {
			w.logger.Error("reschedule task", "run_id", task.RunID, "error", err)
		}
		metrics.TasksCompletedTotal.WithLabelValues("retry").Inc()
		w.logger.Warn("notification failed, will retry",
			"run_id", task.RunID,
			"error", err,
			"attempt", task.RetryCount+1,
			"max_retries", task.MaxRetries,
			"retry_at", retryAt,
		)
	} else {
		// Exhausted: the record stays at whatever sent value was last
		// persisted. Nothing is surfaced to the request that enqueued it.
		if err := w.tasks.Fail(ctx, task.RunID, err.Error()); err != nil {
			w.logger.Error("mark task failed", "run_id", task.RunID, "error", err)
		}
		metrics.TasksCompletedTotal.WithLabelValues("failed").Inc()
		w.logger.Warn("notification permanently failed", "run_id", task.RunID, "error", err)
	}
}

func (w *Worker) heartbeat(ctx context.Context, runID string) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.tasks.UpdateHeartbeat(ctx, runID); err != nil {
				w.logger.Warn("heartbeat failed", "run_id", runID, "error", err)
			}
		}
	}
}

// retryDelay is exponential in the retry count, capped, with +-25% jitter.
func retryDelay(policy RetryPolicy, retryCount int) time.Duration {
	delay := time.Duration(float64(policy.BackoffBase) * math.Pow(2, float64(retryCount)))
	delay = min(delay, policy.BackoffCap)
	jitter := time.Duration(rand.Int63n(int64(delay/2))) - delay/4
	return delay + jitter
}
