package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meowfish/shop-api/internal/domain"
)

type TaskRepository struct {
	pool *pgxpool.Pool
}

func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

const taskColumns = `run_id, target_id, kind, status, retry_count, max_retries,
	scheduled_at, claimed_at, claimed_by, heartbeat_at, completed_at,
	last_error, created_at`

func (r *TaskRepository) Enqueue(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	query := `
		INSERT INTO notification_tasks (run_id, target_id, kind, status, max_retries, scheduled_at)
		VALUES ($1, $2, $3, 'pending', $4, NOW())
		RETURNING ` + taskColumns

	row := r.pool.QueryRow(ctx, query, t.RunID, t.TargetID, t.Kind, t.MaxRetries)
	return scanTask(row)
}

func (r *TaskRepository) Claim(ctx context.Context, workerID string, limit int) ([]*domain.Task, error) {
	// FOR UPDATE SKIP LOCKED prevents double-execution across workers.
	query := `
		UPDATE notification_tasks
		SET    status       = 'running',
		       claimed_at   = NOW(),
		       claimed_by   = $1,
		       heartbeat_at = NOW()
		WHERE run_id IN (
			SELECT run_id FROM notification_tasks
			WHERE  status       = 'pending'
			  AND  scheduled_at <= NOW()
			ORDER BY scheduled_at ASC
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + taskColumns

	rows, err := r.pool.Query(ctx, query, workerID, limit)
	if err != nil {
		return nil, fmt.Errorf("claim tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func (r *TaskRepository) UpdateHeartbeat(ctx context.Context, runID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE notification_tasks SET heartbeat_at = NOW()
		WHERE run_id = $1 AND status = 'running'`, runID)
	return err
}

func (r *TaskRepository) Complete(ctx context.Context, runID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE notification_tasks SET status = 'done', completed_at = NOW()
		WHERE run_id = $1`, runID)
	return err
}

func (r *TaskRepository) Fail(ctx context.Context, runID string, lastError string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE notification_tasks SET status = 'failed', last_error = $2
		WHERE run_id = $1`, runID, lastError)
	return err
}

func (r *TaskRepository) Reschedule(ctx context.Context, runID string, lastError string, retryAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE notification_tasks
		SET    status       = 'pending',
		       retry_count  = retry_count + 1,
		       last_error   = $2,
		       scheduled_at = $3,
		       claimed_at   = NULL,
		       claimed_by   = NULL,
		       heartbeat_at = NULL
		WHERE run_id = $1`, runID, lastError, retryAt)
	return err
}

func (r *TaskRepository) RescheduleStale(ctx context.Context, staleCutoff time.Time, limit int) (int, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE notification_tasks
		SET    status       = 'pending',
		       retry_count  = retry_count + 1,
		       last_error   = 'worker timeout',
		       claimed_at   = NULL,
		       claimed_by   = NULL,
		       heartbeat_at = NULL
		WHERE run_id IN (
			SELECT run_id FROM notification_tasks
			WHERE  status       = 'running'
			  AND  heartbeat_at < $1
			  AND  retry_count  < max_retries
			ORDER BY heartbeat_at ASC
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)`, staleCutoff, limit)
	return int(tag.RowsAffected()), err
}

func (r *TaskRepository) FailStale(ctx context.Context, staleCutoff time.Time, limit int) (int, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE notification_tasks
		SET    status     = 'failed',
		       last_error = 'worker timeout: max retries exceeded'
		WHERE run_id IN (
			SELECT run_id FROM notification_tasks
			WHERE  status       = 'running'
			  AND  heartbeat_at < $1
			  AND  retry_count  >= max_retries
			ORDER BY heartbeat_at ASC
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)`, staleCutoff, limit)
	return int(tag.RowsAffected()), err
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var t domain.Task
	err := row.Scan(
		&t.RunID, &t.TargetID, &t.Kind, &t.Status, &t.RetryCount, &t.MaxRetries,
		&t.ScheduledAt, &t.ClaimedAt, &t.ClaimedBy, &t.HeartbeatAt, &t.CompletedAt,
		&t.LastError, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}
	return &t, nil
}
