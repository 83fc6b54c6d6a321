// Package queue is the notification task queue: a postgres-backed pending
// list that the worker process polls, claims, and retries with exponential
// backoff. The request path only ever calls Enqueue.
package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/meowfish/shop-api/internal/domain"
	"github.com/meowfish/shop-api/internal/repository"
)

// RetryPolicy bounds re-invocation of a failed task. The task body itself is
// retry-agnostic; only the queue consults this.
type RetryPolicy struct {
	MaxRetries  int
	BackoffBase time.Duration
	BackoffCap  time.Duration
}

type Queue struct {
	tasks  repository.TaskRepository
	policy RetryPolicy
}

func NewQueue(tasks repository.TaskRepository, policy RetryPolicy) *Queue {
	return &Queue{tasks: tasks, policy: policy}
}

// Enqueue inserts a pending task and returns its run ID. Fire-and-forget:
// once this returns, the caller has no further involvement in the run.
// Run ID uniqueness rests on UUID collision probability being negligible;
// the record store enforces it with a primary key as a backstop.
func (q *Queue) Enqueue(ctx context.Context, targetID int64, kind domain.NotificationKind) (string, error) {
	task := &domain.Task{
		RunID:      uuid.NewString(),
		TargetID:   targetID,
		Kind:       kind,
		MaxRetries: q.policy.MaxRetries,
	}

	created, err := q.tasks.Enqueue(ctx, task)
	if err != nil {
		return "", fmt.Errorf("enqueue task: %w", err)
	}
	return created.RunID, nil
}
