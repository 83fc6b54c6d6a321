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

type NotificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

func (r *NotificationRepository) CreateIfAbsent(ctx context.Context, n *domain.Notification) error {
	// Keyed by run ID: a retried run hits the conflict and changes nothing.
	_, err := r.pool.Exec(ctx, `
		INSERT INTO notifications (run_id, target_id, kind, sent)
		VALUES ($1, $2, $3, FALSE)
		ON CONFLICT (run_id) DO NOTHING`,
		n.RunID, n.TargetID, n.Kind)
	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

func (r *NotificationRepository) MarkSent(ctx context.Context, runID string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE notifications SET sent = TRUE, updated_at = NOW()
		WHERE run_id = $1`, runID)
	if err != nil {
		return fmt.Errorf("mark notification sent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *NotificationRepository) GetByRunID(ctx context.Context, runID string) (*domain.Notification, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT run_id, target_id, kind, sent, created_at, updated_at
		FROM notifications
		WHERE run_id = $1`, runID)

	var n domain.Notification
	err := row.Scan(&n.RunID, &n.TargetID, &n.Kind, &n.Sent, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("scan notification: %w", err)
	}
	return &n, nil
}

func (r *NotificationRepository) PurgeSentBefore(ctx context.Context, cutoff time.Time) (int, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM notifications
		WHERE sent = TRUE AND updated_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge notifications: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
