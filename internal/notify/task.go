// Package notify holds the body of the notification task: create the tracked
// record, attempt delivery, mark it sent. Retry policy lives in the queue —
// the task itself is retry-agnostic and safe to re-run under the same run ID.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/meowfish/shop-api/internal/domain"
	"github.com/meowfish/shop-api/internal/email"
	"github.com/meowfish/shop-api/internal/repository"
)

// productGetter is the slice of the product repository the task needs to
// build the message body.
type productGetter interface {
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
}

type Task struct {
	records  repository.NotificationRepository
	products productGetter
	sender   email.Sender
	to       string
	logger   *slog.Logger
}

func NewTask(
	records repository.NotificationRepository,
	products productGetter,
	sender email.Sender,
	to string,
	logger *slog.Logger,
) *Task {
	return &Task{
		records:  records,
		products: products,
		sender:   sender,
		to:       to,
		logger:   logger.With("component", "notify_task"),
	}
}

// Run executes one notification attempt. Each step is idempotent under the
// run ID, so the queue can re-invoke it after a failure without creating a
// second record.
func (t *Task) Run(ctx context.Context, runID string, targetID int64, kind domain.NotificationKind) error {
	record := &domain.Notification{
		RunID:    runID,
		TargetID: targetID,
		Kind:     kind,
	}
	if err := t.records.CreateIfAbsent(ctx, record); err != nil {
		return fmt.Errorf("create record: %w", err)
	}

	subject, body := t.compose(ctx, targetID, kind)
	if err := t.sender.Send(ctx, t.to, subject, body); err != nil {
		return fmt.Errorf("deliver: %w", err)
	}

	if err := t.records.MarkSent(ctx, runID); err != nil {
		return fmt.Errorf("mark sent: %w", err)
	}
	return nil
}

// compose builds the email from current product state. The target may have
// been deleted between enqueue and delivery; that is not an error — the
// notification still goes out, just without the detail line.
func (t *Task) compose(ctx context.Context, targetID int64, kind domain.NotificationKind) (subject, body string) {
	switch kind {
	case domain.NotificationProduct:
		subject = fmt.Sprintf("New product #%d", targetID)
		body = fmt.Sprintf("<p>Product #%d was created.</p>", targetID)

		product, err := t.products.GetByID(ctx, targetID)
		if err != nil {
			if !errors.Is(err, domain.ErrProductNotFound) {
				t.logger.WarnContext(ctx, "load product for notification", "target_id", targetID, "error", err)
			}
			return subject, body
		}
		subject = fmt.Sprintf("New product: %s", product.Name)
		body = fmt.Sprintf(
			"<p>Product <strong>%s</strong> (#%d) was created at %.2f per unit, %d in stock.</p>",
			product.Name, product.ID, product.UnitPrice, product.UnitsInStock,
		)
		return subject, body
	default:
		subject = fmt.Sprintf("Notification for #%d", targetID)
		body = fmt.Sprintf("<p>Event on entity #%d.</p>", targetID)
		return subject, body
	}
}
