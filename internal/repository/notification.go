package repository

import (
	"context"
	"time"

	"github.com/meowfish/shop-api/internal/domain"
)

// NotificationRepository persists the records the notification task tracks.
type NotificationRepository interface {
	// CreateIfAbsent inserts the record keyed by run ID. A retried run with
	// the same run ID is a no-op, never a duplicate row.
	CreateIfAbsent(ctx context.Context, n *domain.Notification) error

	// MarkSent flips the record's sent flag to true.
	MarkSent(ctx context.Context, runID string) error

	GetByRunID(ctx context.Context, runID string) (*domain.Notification, error)

	// PurgeSentBefore deletes sent records older than the cutoff and returns
	// the count removed. Used by the retention sweeper only.
	PurgeSentBefore(ctx context.Context, cutoff time.Time) (int, error)
}

// TaskRepository is the postgres-backed queue the worker polls.
type TaskRepository interface {
	// Enqueue inserts a pending task scheduled to run immediately.
	Enqueue(ctx context.Context, t *domain.Task) (*domain.Task, error)

	// Claim atomically moves up to limit due pending tasks to running,
	// stamping the claiming worker. No two workers receive the same task.
	Claim(ctx context.Context, workerID string, limit int) ([]*domain.Task, error)

	UpdateHeartbeat(ctx context.Context, runID string) error
	Complete(ctx context.Context, runID string) error
	Fail(ctx context.Context, runID string, lastError string) error
	Reschedule(ctx context.Context, runID string, lastError string, retryAt time.Time) error

	// Reaper methods — recover tasks from crashed workers.
	RescheduleStale(ctx context.Context, staleCutoff time.Time, limit int) (int, error)
	FailStale(ctx context.Context, staleCutoff time.Time, limit int) (int, error)
}
